package layout

// 默认走纸留白（点）。
const (
	DefaultFeedPadStart = 2
	DefaultFeedPadEnd   = 8
)

// BuildOptions 配置布局阶段所需的参数与依赖，例如栅格化后端。
type BuildOptions struct {
	Orientation Orientation
	// PrintableWidth 为打印头方向的可打印点数。
	PrintableWidth int
	// MinLength 为分辨率规定的最小长度；ManualLength 为手动指定的长度（只能加长）。
	MinLength    int
	ManualLength int
	// FeedPadStart/FeedPadEnd 为 0 时使用默认值 2/8。
	FeedPadStart int
	FeedPadEnd   int
	// VerticalScale 为介质纵向补偿系数，0 视为 1。
	VerticalScale float64

	Values          map[string]any
	ResolveTemplate func(template string, values map[string]any) string

	Rasterizer BlockRasterizer
}

// BlockRequest 是单个条目栅格化所需的上下文。
type BlockRequest struct {
	Item *Item
	// Text 为模板替换后的内容：text 条目的文本，qr/barcode 条目的数据。
	Text          string
	Orientation   Orientation
	MaxCross      int
	VerticalScale float64
}

// BlockRasterizer 负责把条目转换为局部单色栅格并给出未旋转的盒尺寸。
// 栅格化失败应降级为占位图而不是返回错误；返回错误会中断整个渲染。
type BlockRasterizer interface {
	RasterizeBlock(req BlockRequest) (Block, error)
}

func (o BuildOptions) padStart() int {
	if o.FeedPadStart <= 0 {
		return DefaultFeedPadStart
	}
	return o.FeedPadStart
}

func (o BuildOptions) padEnd() int {
	if o.FeedPadEnd <= 0 {
		return DefaultFeedPadEnd
	}
	return o.FeedPadEnd
}

func (o BuildOptions) verticalScale() float64 {
	if o.VerticalScale <= 0 {
		return 1
	}
	return o.VerticalScale
}

func (o BuildOptions) orientation() Orientation {
	if o.Orientation == Vertical {
		return Vertical
	}
	return Horizontal
}
