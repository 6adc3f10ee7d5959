package interaction

import (
	"math"

	"github.com/ByLCY/labelcanvas/geom"
)

// Handle 标识八个缩放手柄之一。
type Handle string

const (
	HandleNone Handle = ""
	HandleNW   Handle = "nw"
	HandleN    Handle = "n"
	HandleNE   Handle = "ne"
	HandleE    Handle = "e"
	HandleSE   Handle = "se"
	HandleS    Handle = "s"
	HandleSW   Handle = "sw"
	HandleW    Handle = "w"
)

// Handles 按绘制顺序列出全部手柄。
var Handles = [8]Handle{HandleNW, HandleN, HandleNE, HandleE, HandleSE, HandleS, HandleSW, HandleW}

// Cursor 返回手柄对应的 CSS 光标名。
func (h Handle) Cursor() string {
	if h == HandleNone {
		return CursorDefault
	}
	return string(h) + "-resize"
}

func (h Handle) west() bool  { return h == HandleNW || h == HandleW || h == HandleSW }
func (h Handle) east() bool  { return h == HandleNE || h == HandleE || h == HandleSE }
func (h Handle) north() bool { return h == HandleNW || h == HandleN || h == HandleNE }
func (h Handle) south() bool { return h == HandleSW || h == HandleS || h == HandleSE }

// HandlePoint 返回手柄在矩形上的位置：四角与四边中点。
func HandlePoint(r geom.Rect, h Handle) (float64, float64) {
	cx, cy := r.Center()
	x, y := cx, cy
	if h.west() {
		x = r.X
	}
	if h.east() {
		x = r.Right()
	}
	if h.north() {
		y = r.Y
	}
	if h.south() {
		y = r.Bottom()
	}
	return x, y
}

// HandleAt 返回距离 (x,y) 不超过 radius 的手柄；多个命中时取最近的一个。
func HandleAt(r geom.Rect, x, y, radius float64) Handle {
	best, bestDist := HandleNone, math.Inf(1)
	for _, h := range Handles {
		hx, hy := HandlePoint(r, h)
		d := math.Hypot(x-hx, y-hy)
		if d <= radius && d < bestDist {
			best, bestDist = h, d
		}
	}
	return best
}

// resizeRect 按手柄拖动 (dx,dy) 后的新矩形；对边保持不动，宽高至少为 1。
func resizeRect(start geom.Rect, h Handle, dx, dy float64) geom.Rect {
	left, top, right, bottom := start.X, start.Y, start.Right(), start.Bottom()
	if h.west() {
		left = math.Min(left+dx, right-1)
	}
	if h.east() {
		right = math.Max(right+dx, left+1)
	}
	if h.north() {
		top = math.Min(top+dy, bottom-1)
	}
	if h.south() {
		bottom = math.Max(bottom+dy, top+1)
	}
	return geom.Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
}
