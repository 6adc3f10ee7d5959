package raster

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/codabar"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/code93"
	"github.com/boombuler/barcode/ean"
	"github.com/boombuler/barcode/twooffive"
)

// ErrUnknownFormat 表示不支持的条码格式。
var ErrUnknownFormat = errors.New("raster: 不支持的条码格式")

// BarcodeSpec 描述一个一维条码栅格的全部像素相关参数。
type BarcodeSpec struct {
	Data        string
	Format      string
	Width       int // 最小宽度；小于自然宽度时以自然宽度为准
	Height      int
	ModuleWidth int
	Margin      int
	ShowText    bool
}

func (s BarcodeSpec) key() string {
	return fmt.Sprintf("bc|%s|%d|%d|%d|%d|%t|%s", s.Format, s.Width, s.Height, s.ModuleWidth, s.Margin, s.ShowText, s.Data)
}

// Formats 返回支持的条码格式名称。
func Formats() []string {
	return []string{"code128", "code39", "code93", "ean13", "ean8", "codabar", "itf", "2of5"}
}

func encode1D(format, data string) (barcode.Barcode, error) {
	if data == "" {
		return nil, fmt.Errorf("%w: 条码内容为空", ErrInvalidPayload)
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "code128":
		return code128.Encode(data)
	case "code39":
		return code39.Encode(data, false, true)
	case "code93":
		return code93.Encode(data, false, true)
	case "ean13":
		if n := len(data); n != 12 && n != 13 {
			return nil, fmt.Errorf("%w: ean13 需要 12 或 13 位数字", ErrInvalidPayload)
		}
		return ean.Encode(data)
	case "ean8":
		if n := len(data); n != 7 && n != 8 {
			return nil, fmt.Errorf("%w: ean8 需要 7 或 8 位数字", ErrInvalidPayload)
		}
		return ean.Encode(data)
	case "codabar":
		if !strings.ContainsAny(data[:1], "ABCDabcd") {
			data = "A" + data + "B"
		}
		return codabar.Encode(strings.ToUpper(data))
	case "itf", "interleaved2of5":
		return twooffive.Encode(data, true)
	case "2of5", "standard2of5":
		return twooffive.Encode(data, false)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// modules 读取一维条码的模块序列（true 为黑条）。
func modules(bc barcode.Barcode) []bool {
	b := bc.Bounds()
	out := make([]bool, b.Dx())
	for x := b.Min.X; x < b.Max.X; x++ {
		lum, _ := Luminance(bc.At(x, b.Min.Y))
		out[x-b.Min.X] = lum < 128
	}
	return out
}

// NaturalBarcodeWidth 返回条码在给定模块宽度与静区下的自然宽度。
func NaturalBarcodeWidth(spec BarcodeSpec) (int, error) {
	bc, err := encode1D(spec.Format, spec.Data)
	if err != nil {
		return 0, err
	}
	return 2*max(spec.Margin, 0) + bc.Bounds().Dx()*max(spec.ModuleWidth, 1), nil
}

// EncodeBarcode 生成条码栅格。宽度为 max(自然宽度, spec.Width)，条纹水平居中；
// ShowText 时在底部留出文字带并用 drawText 绘制可读文本。
func EncodeBarcode(spec BarcodeSpec, drawText TextDrawer) (*image.RGBA, error) {
	bc, err := encode1D(spec.Format, spec.Data)
	if err != nil {
		return nil, fmt.Errorf("raster: 条码编码失败: %w", err)
	}
	mods := modules(bc)
	mw := max(spec.ModuleWidth, 1)
	margin := max(spec.Margin, 0)
	natural := 2*margin + len(mods)*mw
	width := max(natural, spec.Width)
	height := max(spec.Height, 1)

	barH := height
	textH := 0
	if spec.ShowText && drawText != nil {
		textH = max(8, height/4)
		if textH >= height {
			textH = height / 2
		}
		barH = height - textH
	}

	out := image.NewRGBA(image.Rect(0, 0, width, height))
	left := margin + (width-natural)/2
	for i, on := range mods {
		if !on {
			continue
		}
		x0 := left + i*mw
		for x := x0; x < x0+mw; x++ {
			for y := 0; y < barH; y++ {
				out.SetRGBA(x, y, black)
			}
		}
	}
	if textH > 0 {
		drawText(out, image.Rect(0, barH, width, height), spec.Data)
	}
	return out, nil
}
