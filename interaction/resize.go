package interaction

import (
	"math"

	"github.com/ByLCY/labelcanvas/geom"
	"github.com/ByLCY/labelcanvas/layout"
)

// 缩放下限（点）。
const (
	minShapeWidth    = 4
	minShapeHeight   = 2
	minTextFontSize  = 8
	minBarcodeHeight = 8
)

// applyResize 根据缩放后的矩形更新条目尺寸，并把左/上边的位移加到偏移上，使对边保持不动。
// start 为按下时的条目快照。
func (c *Controller) applyResize(it *layout.Item, start layout.Item, from, to geom.Rect) {
	switch it.Type {
	case layout.ItemShape:
		it.Width = max(minShapeWidth, round(to.Width))
		it.Height = max(minShapeHeight, round(to.Height))
	case layout.ItemImage, layout.ItemIcon:
		w, h := max(1, round(to.Width)), max(1, round(to.Height))
		it.Width, it.Height = layout.ConstrainToPrintable(w, h, c.opts.MaxCross, c.opts.Orientation)
	case layout.ItemQR:
		size := max(round(to.Width), round(to.Height))
		size = min(max(size, layout.MinQRSize), c.maxQR())
		it.Size, it.Height = size, size
	case layout.ItemText:
		// 无论拖哪个手柄都按主导轴的增长等比缩放字号。
		scale := growth(from, to)
		it.FontSize = max(minTextFontSize, round(float64(start.FontSize)*scale))
	case layout.ItemBarcode:
		it.Height = max(minBarcodeHeight, round(to.Height))
		wg := 1.0
		if from.Width > 0 {
			wg = to.Width / from.Width
		}
		it.ModuleWidth = max(1, round(float64(start.ModuleWidth)*wg))
		if start.Width > 0 {
			it.Width = max(1, round(float64(start.Width)*wg))
		}
	}
	it.XOffset = start.XOffset + round(to.X-from.X)
	it.YOffset = start.YOffset + round(to.Y-from.Y)
}

// growth 返回宽高两个方向中相对变化较大的那一个比例。
func growth(from, to geom.Rect) float64 {
	sx, sy := 1.0, 1.0
	if from.Width > 0 {
		sx = to.Width / from.Width
	}
	if from.Height > 0 {
		sy = to.Height / from.Height
	}
	if math.Abs(sx-1) >= math.Abs(sy-1) {
		return sx
	}
	return sy
}

func (c *Controller) maxQR() int {
	if c.opts.MaxQRSize > 0 {
		return c.opts.MaxQRSize
	}
	if c.opts.MaxCross <= 0 {
		return math.MaxInt32
	}
	return layout.MaxQRSize(c.opts.MaxCross)
}

func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
