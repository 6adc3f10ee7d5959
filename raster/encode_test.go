package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sort"
	"testing"
)

func TestEncodeQRExactSize(t *testing.T) {
	img, err := EncodeQR(QRSpec{Data: "HELLO", Size: 60, ECC: "Q"})
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 60 || b.Dy() != 60 {
		t.Fatalf("尺寸应为 60x60: %v", b)
	}
	if !IsMonochrome(img) {
		t.Fatalf("二维码栅格应为单色")
	}
	// 无静区时左上角是定位图案的黑色外框。
	if img.RGBAAt(0, 0) != black {
		t.Fatalf("左上角应为黑色")
	}
}

func TestQRModeValidation(t *testing.T) {
	if _, err := EncodeQR(QRSpec{Data: "12ab", Size: 40, Mode: "numeric"}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("numeric 模式应拒绝字母: %v", err)
	}
	if _, err := EncodeQR(QRSpec{Data: "abc", Size: 40, Mode: "alphanumeric"}); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("alphanumeric 模式应拒绝小写字母: %v", err)
	}
	if _, err := EncodeQR(QRSpec{Data: "ABC 123", Size: 40, Mode: "alphanumeric"}); err != nil {
		t.Fatalf("合法 alphanumeric 内容被拒绝: %v", err)
	}
}

func TestInvalidQRFallsBackToPlaceholder(t *testing.T) {
	m := NewManager(nil)
	r := m.QR(QRSpec{Data: "", Size: 60})
	if !r.Placeholder || r.Err == nil {
		t.Fatalf("空内容应返回占位图: %+v", r)
	}
	if b := r.Image.Bounds(); b.Dx() != QRPlaceholderSize || b.Dy() != QRPlaceholderSize {
		t.Fatalf("二维码占位图尺寸错误: %v", b)
	}
	// 版本过小容纳不下内容。
	r = m.QR(QRSpec{Data: "this payload does not fit into a version one symbol", Size: 60, ECC: "H", Version: 1})
	if !r.Placeholder {
		t.Fatalf("强制版本过小时应返回占位图")
	}
}

func TestBarcodeWidthIsAtLeastNatural(t *testing.T) {
	spec := BarcodeSpec{Data: "12345678", Format: "code128", Height: 30, ModuleWidth: 2, Margin: 10}
	natural, err := NaturalBarcodeWidth(spec)
	if err != nil {
		t.Fatalf("计算自然宽度失败: %v", err)
	}
	img, err := EncodeBarcode(spec, nil)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	if img.Bounds().Dx() != natural || img.Bounds().Dy() != 30 {
		t.Fatalf("栅格尺寸错误: %v natural=%d", img.Bounds(), natural)
	}
	// 静区内无条纹，静区之后第一个模块为黑条。
	if img.RGBAAt(9, 0) != transparent || img.RGBAAt(10, 0) != black {
		t.Fatalf("静区或起始条纹错误")
	}

	spec.Width = natural + 100
	wide, _ := EncodeBarcode(spec, nil)
	if wide.Bounds().Dx() != natural+100 {
		t.Fatalf("配置宽度大于自然宽度时应使用配置宽度: %v", wide.Bounds())
	}
}

func TestBarcodeShowTextReservesBand(t *testing.T) {
	var got image.Rectangle
	var text string
	draw := func(dst *image.RGBA, rect image.Rectangle, s string) { got, text = rect, s }
	img, err := EncodeBarcode(BarcodeSpec{Data: "4006381333931", Format: "ean13", Height: 40, ModuleWidth: 1, ShowText: true}, draw)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	if text != "4006381333931" || got.Min.Y != 30 || got.Max.Y != 40 || got.Dx() != img.Bounds().Dx() {
		t.Fatalf("文字带位置错误: rect=%v text=%q", got, text)
	}
	if img.RGBAAt(0, 35).A != 0 {
		t.Fatalf("文字带内不应绘制条纹")
	}
}

func TestBarcodeErrors(t *testing.T) {
	if _, err := EncodeBarcode(BarcodeSpec{Data: "1", Format: "pdf417", Height: 10}, nil); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("未知格式应返回 ErrUnknownFormat: %v", err)
	}
	m := NewManager(nil)
	r := m.Barcode(BarcodeSpec{Data: "abc", Format: "ean13", Height: 10, ModuleWidth: 1})
	if !r.Placeholder {
		t.Fatalf("非法 ean13 内容应返回占位图")
	}
	if b := r.Image.Bounds(); b.Dx() != BarcodePlaceholderWidth || b.Dy() != BarcodePlaceholderH {
		t.Fatalf("条码占位图尺寸错误: %v", b)
	}
	for _, f := range Formats() {
		data := "12345670"
		if f == "ean13" {
			data = "400638133393"
		}
		if _, err := EncodeBarcode(BarcodeSpec{Data: data, Format: f, Height: 10, ModuleWidth: 1}, nil); err != nil {
			t.Fatalf("%s 编码失败: %v", f, err)
		}
	}
}

func pngDataURI(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("编码 PNG 失败: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestManagerImageDecodesOnceAndScales(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 2; x++ {
			src.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
		}
		for x := 2; x < 4; x++ {
			src.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	uri := pngDataURI(t, src)
	m := NewManager(nil)
	r := m.Image(ImageSpec{Source: uri, Width: 8, Height: 8, Dither: DitherThreshold, Threshold: 160})
	if r.Placeholder || r.Err != nil {
		t.Fatalf("解码失败: %+v", r)
	}
	if r.Image.Bounds().Dx() != 8 || r.Image.RGBAAt(1, 1) != black || r.Image.RGBAAt(6, 1) != transparent {
		t.Fatalf("缩放或单色结果错误")
	}
	// 不同目标尺寸共享同一源图片解码结果。
	m.Image(ImageSpec{Source: uri, Width: 16, Height: 16, Dither: DitherThreshold, Threshold: 160})
	m.Image(ImageSpec{Source: uri, Width: 16, Height: 16, Dither: DitherThreshold, Threshold: 160})
	if st := m.Stats(); st.Decodes != 1 || st.Dithers != 2 {
		t.Fatalf("统计错误: %+v", st)
	}
}

func TestMissingImageIsPreviewOnly(t *testing.T) {
	m := NewManager(nil)
	r := m.Image(ImageSpec{Source: "/nonexistent/logo.png", Width: 30, Height: 20})
	if !r.PreviewOnly || !errors.Is(r.Err, ErrMissingSource) {
		t.Fatalf("缺失图片应返回预览占位图: %+v", r)
	}
	if b := r.Image.Bounds(); b.Dx() != 30 || b.Dy() != 20 {
		t.Fatalf("缺失图片占位图应使用条目尺寸: %v", b)
	}
	if len(m.Keys()) != 0 {
		t.Fatalf("缺失图片不应写入缓存")
	}
}

func TestIconRasterizesBuiltin(t *testing.T) {
	m := NewManager(nil)
	r := m.Icon(IconSpec{Name: "action-home", Width: 24, Height: 24, Threshold: 160})
	if r.Placeholder {
		t.Fatalf("内置图标绘制失败: %v", r.Err)
	}
	if !IsMonochrome(r.Image) {
		t.Fatalf("图标应为单色")
	}
	n := 0
	for i := 3; i < len(r.Image.Pix); i += 4 {
		if r.Image.Pix[i] != 0 {
			n++
		}
	}
	if n == 0 {
		t.Fatalf("图标应包含黑色像素")
	}
	if _, ok := LookupIcon("ICON:Action_Home"); !ok {
		t.Fatalf("图标名称应不区分大小写")
	}
}

func TestIconNamesAreSortedAndResolvable(t *testing.T) {
	names := IconNames()
	if len(names) == 0 {
		t.Fatalf("应至少有一个内置图标")
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("图标名称应已排序: %v", names)
	}
	for _, n := range names {
		if _, ok := LookupIcon(n); !ok {
			t.Fatalf("列出的图标 %q 无法查找", n)
		}
	}
}
