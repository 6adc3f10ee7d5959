// Package geom 提供标签画布使用的矩形与旋转几何运算。
package geom

import "math"

// Rect 是画布坐标（设备点，左上角为原点，y 向下）中的轴对齐矩形。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right 返回右边界。
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom 返回下边界。
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center 返回中心点。
func (r Rect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Area 返回面积，宽或高为负时按 0 处理。
func (r Rect) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Width * r.Height
}

// IsEmpty 判断矩形是否没有面积。
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains 判断点是否落在矩形内（含边界）。
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Union 返回同时包含两个矩形的最小矩形；空矩形不参与合并。
func (r Rect) Union(other Rect) Rect {
	if r.IsEmpty() {
		return other
	}
	if other.IsEmpty() {
		return r
	}
	minX := math.Min(r.X, other.X)
	minY := math.Min(r.Y, other.Y)
	maxX := math.Max(r.Right(), other.Right())
	maxY := math.Max(r.Bottom(), other.Bottom())
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Translate 返回平移后的矩形。
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// UnionAll 合并一组矩形，全部为空时返回零值。
func UnionAll(rects []Rect) Rect {
	var out Rect
	for _, r := range rects {
		out = out.Union(r)
	}
	return out
}
