package layout

// 该文件定义标签条目、渲染块与布局结果，供布局计算、渲染、交互与调试 JSON 共用。

import (
	"image"
	"math"
	"strings"

	"github.com/ByLCY/labelcanvas/geom"
)

// ItemType 是条目内容类型。
type ItemType string

const (
	ItemText    ItemType = "text"
	ItemQR      ItemType = "qr"
	ItemBarcode ItemType = "barcode"
	ItemImage   ItemType = "image"
	ItemIcon    ItemType = "icon"
	ItemShape   ItemType = "shape"
)

// PositionMode 区分顺序排版与绝对定位。
type PositionMode string

const (
	PositionFlow     PositionMode = "flow"
	PositionAbsolute PositionMode = "absolute"
)

// Orientation 决定走纸方向：horizontal 时走纸沿 X，vertical 时走纸沿 Y。
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// 默认值与下限（单位：设备点）。
const (
	DefaultFontSize     = 16
	DefaultQRSize       = 60
	DefaultBarcodeH     = 40
	DefaultModuleWidth  = 2
	DefaultBarcodeQuiet = 10
	DefaultImageSize    = 64
	DefaultShapeWidth   = 40
	DefaultShapeHeight  = 20
	DefaultStrokeWidth  = 2
	DefaultThreshold    = 160
	DefaultPolygonSides = 6
	MinQRSize           = 8
)

// Item 描述一个标签条目。条目由外部持有，本模块只原地修改偏移、尺寸与旋转字段。
type Item struct {
	ID           string       `json:"id"`
	Type         ItemType     `json:"type"`
	PositionMode PositionMode `json:"positionMode"`
	XOffset      int          `json:"xOffset"`
	YOffset      int          `json:"yOffset"`
	Rotation     float64      `json:"rotation"`

	// text
	Text          string `json:"text,omitempty"`
	FontFamily    string `json:"fontFamily,omitempty"`
	FontSize      int    `json:"fontSize,omitempty"`
	Bold          bool   `json:"bold,omitempty"`
	Italic        bool   `json:"italic,omitempty"`
	Underline     bool   `json:"underline,omitempty"`
	Strikethrough bool   `json:"strikethrough,omitempty"`

	// qr / barcode
	Data            string `json:"data,omitempty"`
	Size            int    `json:"size,omitempty"`
	ErrorCorrection string `json:"errorCorrectionLevel,omitempty"`
	Version         int    `json:"version,omitempty"`
	EncodingMode    string `json:"encodingMode,omitempty"`
	Format          string `json:"format,omitempty"`
	ModuleWidth     int    `json:"moduleWidth,omitempty"`
	Margin          int    `json:"margin,omitempty"`
	ShowText        bool   `json:"showText,omitempty"`

	// 尺寸：barcode/image/icon/shape 共用，qr 的 Height 镜像 Size。
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`

	// image / icon
	Source    string `json:"source,omitempty"`
	Dither    string `json:"dither,omitempty"`
	Threshold int    `json:"threshold,omitempty"`
	Smoothing bool   `json:"smoothing,omitempty"`
	Invert    bool   `json:"invert,omitempty"`

	// shape
	ShapeType    string `json:"shapeType,omitempty"`
	StrokeWidth  int    `json:"strokeWidth,omitempty"`
	CornerRadius int    `json:"cornerRadius,omitempty"`
	Sides        int    `json:"sides,omitempty"`
	Fill         bool   `json:"fill,omitempty"`
}

// IsAbsolute 判断条目是否绝对定位。
func (it *Item) IsAbsolute() bool { return it.PositionMode == PositionAbsolute }

// Normalize 在绘制之前把所有数值字段收敛到合法范围：尺寸为正整数，旋转归一化到 [0,360)，
// qr 的 Height 与 Size 保持一致。
func (it *Item) Normalize() {
	if it.PositionMode != PositionAbsolute {
		it.PositionMode = PositionFlow
	}
	it.Rotation = geom.NormalizeAngle(it.Rotation)
	switch it.Type {
	case ItemText:
		it.FontSize = positiveOr(it.FontSize, DefaultFontSize)
	case ItemQR:
		it.Size = positiveOr(it.Size, DefaultQRSize)
		if it.Size < MinQRSize {
			it.Size = MinQRSize
		}
		it.Height = it.Size
		it.ErrorCorrection = strings.ToUpper(strings.TrimSpace(it.ErrorCorrection))
		switch it.ErrorCorrection {
		case "L", "M", "Q", "H":
		default:
			it.ErrorCorrection = "M"
		}
		if it.Version < 0 || it.Version > 40 {
			it.Version = 0
		}
		if it.EncodingMode == "" {
			it.EncodingMode = "auto"
		}
	case ItemBarcode:
		if it.Format == "" {
			it.Format = "code128"
		}
		it.Height = positiveOr(it.Height, DefaultBarcodeH)
		it.ModuleWidth = positiveOr(it.ModuleWidth, DefaultModuleWidth)
		if it.Margin < 0 {
			it.Margin = DefaultBarcodeQuiet
		}
		if it.Width < 0 {
			it.Width = 0
		}
	case ItemImage, ItemIcon:
		it.Width = positiveOr(it.Width, DefaultImageSize)
		it.Height = positiveOr(it.Height, DefaultImageSize)
		if it.Threshold <= 0 || it.Threshold > 255 {
			it.Threshold = DefaultThreshold
		}
		if it.Dither == "" {
			it.Dither = "threshold"
		}
	case ItemShape:
		if it.ShapeType == "" {
			it.ShapeType = "rect"
		}
		it.Width = positiveOr(it.Width, DefaultShapeWidth)
		it.Height = positiveOr(it.Height, DefaultShapeHeight)
		if it.StrokeWidth < 0 {
			it.StrokeWidth = DefaultStrokeWidth
		}
		if it.StrokeWidth == 0 && !it.Fill {
			it.StrokeWidth = 1
		}
		if it.CornerRadius < 0 {
			it.CornerRadius = 0
		}
		if it.Sides < 3 {
			it.Sides = DefaultPolygonSides
		}
		if it.Sides > 24 {
			it.Sides = 24
		}
	}
}

func positiveOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// Block 是一次渲染中由条目派生的几何与栅格，渲染结束后丢弃。
type Block struct {
	Item *Item `json:"-"`
	// Width/Height 为未旋转的局部盒尺寸（点）。
	Width  int `json:"width"`
	Height int `json:"height"`
	// Span 为走纸方向占用长度，Cross 为打印头方向尺寸，由布局阶段填写。
	Span  int `json:"span"`
	Cross int `json:"cross"`
	// Raster 为单色局部栅格，可为空（例如空文本）。
	Raster *image.RGBA `json:"-"`
	// PreviewOnly 表示该块只在预览画布中出现（缺失图片的占位框），不影响打印画布。
	PreviewOnly bool `json:"previewOnly,omitempty"`
}

// LayoutItem 是交互与高亮代码唯一依赖的输出：内容画布坐标中的旋转后包围盒。
type LayoutItem struct {
	ID     string    `json:"id"`
	Type   ItemType  `json:"type"`
	Item   *Item     `json:"-"`
	Bounds geom.Rect `json:"bounds"`
}

// Placement 记录单个块的落位：Box 为未旋转的局部盒，Bounds 为旋转后的包围盒。
type Placement struct {
	Block  Block     `json:"block"`
	Box    geom.Rect `json:"box"`
	Bounds geom.Rect `json:"bounds"`
}

// Plan 是一次布局计算的结果。
type Plan struct {
	Orientation Orientation `json:"orientation"`
	// Width/Height 为内容画布尺寸（点）。
	Width  int `json:"width"`
	Height int `json:"height"`
	// Length 为走纸方向总长度，CrossWidth 为可打印宽度。
	Length     int         `json:"length"`
	CrossWidth int         `json:"crossWidth"`
	FlowSpan   int         `json:"flowSpan"`
	Placements []Placement `json:"placements"`
}

// LayoutItems 返回按绘制顺序排列的 LayoutItem。
func (p *Plan) LayoutItems() []LayoutItem {
	if p == nil {
		return nil
	}
	out := make([]LayoutItem, 0, len(p.Placements))
	for _, pl := range p.Placements {
		it := pl.Block.Item
		if it == nil {
			continue
		}
		out = append(out, LayoutItem{ID: it.ID, Type: it.Type, Item: it, Bounds: pl.Bounds})
	}
	return out
}

// Bounds 返回整个内容画布的矩形。
func (p *Plan) Bounds() geom.Rect {
	return geom.Rect{Width: float64(p.Width), Height: float64(p.Height)}
}

// roundInt 将浮点值四舍五入为整数，NaN 视为 0。
func roundInt(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}
