package layout

import (
	"errors"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/ByLCY/labelcanvas/binding"
	"github.com/ByLCY/labelcanvas/geom"
)

// ErrNoRasterizer 表示 BuildOptions 未提供栅格化后端。
var ErrNoRasterizer = errors.New("layout: 缺少栅格化后端 Rasterizer")

// vertTextPad 为纵向排版时文本块额外占用的走纸长度。
const vertTextPad = 4

// Build 沿走纸方向依次排布条目，返回各条目的落位与标签总长度。
// 顺序条目推进游标；绝对条目只参与长度统计，不影响任何顺序条目的位置。
func Build(items []*Item, opts BuildOptions) (*Plan, error) {
	if opts.Rasterizer == nil {
		return nil, ErrNoRasterizer
	}
	if opts.PrintableWidth <= 0 {
		return nil, fmt.Errorf("layout: 可打印宽度无效: %d", opts.PrintableWidth)
	}
	resolve := opts.ResolveTemplate
	if resolve == nil {
		resolve = binding.Resolve
	}

	ctx := &flowContext{
		orientation: opts.orientation(),
		cross:       opts.PrintableWidth,
		cursor:      opts.padStart(),
	}
	plan := &Plan{
		Orientation: ctx.orientation,
		CrossWidth:  ctx.cross,
		Placements:  make([]Placement, 0, len(items)),
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.Normalize()
		req := BlockRequest{
			Item:          it,
			Orientation:   ctx.orientation,
			MaxCross:      ctx.cross,
			VerticalScale: opts.verticalScale(),
		}
		switch it.Type {
		case ItemText:
			req.Text = resolve(it.Text, opts.Values)
		case ItemQR, ItemBarcode:
			req.Text = resolve(it.Data, opts.Values)
		}
		block, err := opts.Rasterizer.RasterizeBlock(req)
		if err != nil {
			return nil, fmt.Errorf("layout: 条目 %q 栅格化失败: %w", it.ID, err)
		}
		block.Item = it
		fitCross(&block, ctx.cross, ctx.orientation)
		plan.Placements = append(plan.Placements, ctx.place(block))
	}

	length := opts.MinLength
	if flow := opts.padStart() + ctx.flowSpan + opts.padEnd(); flow > length {
		length = flow
	}
	if ctx.hasAbsolute {
		if abs := ctx.absExtent + opts.padEnd(); abs > length {
			length = abs
		}
	}
	// 手动长度只能加长，不能把内容截断。
	if opts.ManualLength > length {
		length = opts.ManualLength
	}
	if length < 1 {
		length = 1
	}

	plan.Length = length
	plan.FlowSpan = ctx.flowSpan
	if ctx.orientation == Vertical {
		plan.Width, plan.Height = ctx.cross, length
	} else {
		plan.Width, plan.Height = length, ctx.cross
	}
	return plan, nil
}

// flowContext 记录走纸方向上的排版游标。
type flowContext struct {
	orientation Orientation
	cross       int
	cursor      int
	flowSpan    int
	absExtent   int
	hasAbsolute bool
}

// place 计算块的局部盒与旋转后包围盒；顺序条目随后推进游标。
func (c *flowContext) place(b Block) Placement {
	it := b.Item
	b.Span = span(b, c.orientation)
	if c.orientation == Vertical {
		b.Cross = b.Width
	} else {
		b.Cross = b.Height
	}

	feedOffset, crossOffset := it.XOffset, it.YOffset
	if c.orientation == Vertical {
		feedOffset, crossOffset = it.YOffset, it.XOffset
	}
	feed := feedOffset
	if !it.IsAbsolute() {
		feed += c.cursor
	}
	crossPos := (c.cross-b.Cross)/2 + crossOffset

	var box geom.Rect
	if c.orientation == Vertical {
		box = geom.Rect{X: float64(crossPos), Y: float64(feed), Width: float64(b.Width), Height: float64(b.Height)}
	} else {
		box = geom.Rect{X: float64(feed), Y: float64(crossPos), Width: float64(b.Width), Height: float64(b.Height)}
	}
	bounds := geom.RotatedBounds(box, it.Rotation)

	if it.IsAbsolute() {
		far := feed + b.Span
		edge := bounds.Right()
		if c.orientation == Vertical {
			edge = bounds.Bottom()
		}
		if e := int(math.Ceil(edge)); e > far {
			far = e
		}
		if !c.hasAbsolute || far > c.absExtent {
			c.absExtent = far
		}
		c.hasAbsolute = true
	} else {
		c.cursor += b.Span
		c.flowSpan += b.Span
	}
	return Placement{Block: b, Box: box, Bounds: bounds}
}

// span 返回块在走纸方向占用的长度。
func span(b Block, o Orientation) int {
	switch b.Item.Type {
	case ItemText:
		if o == Vertical {
			return b.Height + vertTextPad
		}
		return max(b.Width, b.Height)
	case ItemQR:
		return max(b.Width, b.Height)
	default:
		if o == Vertical {
			return b.Height
		}
		return b.Width
	}
}

// fitCross 把打印头方向超出可打印宽度的块等比缩小到可打印宽度。
func fitCross(b *Block, maxCross int, o Orientation) {
	w, h := ConstrainToPrintable(b.Width, b.Height, maxCross, o)
	if w == b.Width && h == b.Height {
		return
	}
	b.Width, b.Height = w, h
	if b.Raster == nil {
		return
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), b.Raster, b.Raster.Bounds(), xdraw.Src, nil)
	b.Raster = dst
}
