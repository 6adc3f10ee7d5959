package geom

import (
	"image"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"gonum.org/v1/gonum/spatial/r2"
)

// NormalizeAngle 将任意角度（度）归一化到 [0, 360)，NaN 与 Inf 视为 0。
func NormalizeAngle(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	a := math.Mod(deg, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// RotatedBounds 返回 box 绕自身中心旋转 deg 度后的最小轴对齐包围盒。
// 0 度时原样返回。
func RotatedBounds(box Rect, deg float64) Rect {
	a := NormalizeAngle(deg)
	if a == 0 {
		return box
	}
	rad := a * math.Pi / 180
	c := math.Abs(math.Cos(rad))
	s := math.Abs(math.Sin(rad))
	w := box.Width*c + box.Height*s
	h := box.Width*s + box.Height*c
	cx, cy := box.Center()
	return Rect{X: cx - w/2, Y: cy - h/2, Width: w, Height: h}
}

// Corners 返回旋转后的四个角点（顺序：左上、右上、右下、左下）。
func Corners(box Rect, deg float64) [4]r2.Vec {
	cx, cy := box.Center()
	rot := r2.NewRotation(NormalizeAngle(deg)*math.Pi/180, r2.Vec{X: cx, Y: cy})
	return [4]r2.Vec{
		rot.Rotate(r2.Vec{X: box.X, Y: box.Y}),
		rot.Rotate(r2.Vec{X: box.Right(), Y: box.Y}),
		rot.Rotate(r2.Vec{X: box.Right(), Y: box.Bottom()}),
		rot.Rotate(r2.Vec{X: box.X, Y: box.Bottom()}),
	}
}

// DrawWithRotation 先在未旋转的局部坐标中执行 drawFn（局部画布大小等于 box），
// 再以 box 中心为轴旋转 deg 度合成到 dst。返回值是旋转后的包围盒，交互层必须使用它而不是 box。
func DrawWithRotation(dst draw.Image, box Rect, deg float64, drawFn func(local *image.RGBA)) Rect {
	w := int(math.Ceil(box.Width))
	h := int(math.Ceil(box.Height))
	if w <= 0 || h <= 0 || drawFn == nil {
		return RotatedBounds(box, deg)
	}
	local := image.NewRGBA(image.Rect(0, 0, w, h))
	drawFn(local)
	return Composite(dst, local, box, deg)
}

// Composite 将已经栅格化的 src 按 box 的位置与 deg 旋转合成到 dst。
func Composite(dst draw.Image, src image.Image, box Rect, deg float64) Rect {
	a := NormalizeAngle(deg)
	if src == nil {
		return RotatedBounds(box, a)
	}
	sb := src.Bounds()
	if a == 0 {
		at := image.Pt(int(math.Round(box.X)), int(math.Round(box.Y)))
		draw.Draw(dst, sb.Sub(sb.Min).Add(at), src, sb.Min, draw.Over)
		return box
	}

	// 局部原点 (box.X, box.Y) 绕中心旋转后的位置即仿射矩阵的平移分量。
	cx, cy := box.Center()
	rad := a * math.Pi / 180
	rot := r2.NewRotation(rad, r2.Vec{X: cx, Y: cy})
	origin := rot.Rotate(r2.Vec{X: box.X, Y: box.Y})
	cos, sin := math.Cos(rad), math.Sin(rad)
	s2d := f64.Aff3{
		cos, -sin, origin.X,
		sin, cos, origin.Y,
	}

	var interp xdraw.Interpolator = xdraw.ApproxBiLinear
	if math.Mod(a, 90) == 0 {
		interp = xdraw.NearestNeighbor
	}
	interp.Transform(dst, s2d, src, sb, xdraw.Over, nil)
	return RotatedBounds(box, a)
}

// Rotate90 将图像顺时针旋转 90 度，宽高互换。
func Rotate90(src *image.RGBA) *image.RGBA {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			sx, sy := x-b.Min.X, y-b.Min.Y
			out.SetRGBA(b.Dy()-1-sy, sx, src.RGBAAt(x, y))
		}
	}
	return out
}
