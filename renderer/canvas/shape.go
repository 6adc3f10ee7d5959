package canvasrenderer

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/labelcanvas/layout"
	"github.com/ByLCY/labelcanvas/raster"
)

// 曲线近似使用的分段数。
const curveSegments = 64

// ShapeTypes 返回支持的形状类型。
func ShapeTypes() []string {
	return []string{"rect", "roundRect", "ellipse", "line", "triangle", "polygon", "star"}
}

// RenderShape 在 w×h 的局部画布中绘制形状；描边内缩半个线宽，保证不越出盒子。
func RenderShape(it *layout.Item) *image.RGBA {
	w, h := max(it.Width, 1), max(it.Height, 1)
	sw := float64(it.StrokeWidth)
	return raster.Paint(w, h, func(ctx *canvas.Context) {
		if it.Fill {
			ctx.SetFillColor(canvas.Black)
		} else {
			ctx.SetFillColor(color.RGBA{})
		}
		if sw > 0 {
			ctx.SetStrokeColor(canvas.Black)
			ctx.SetStrokeWidth(sw)
		} else {
			ctx.SetStrokeColor(color.RGBA{})
		}
		if p := shapePath(it, float64(w), float64(h), sw); p != nil {
			ctx.DrawPath(0, 0, p)
		}
	})
}

func shapePath(it *layout.Item, w, h, sw float64) *canvas.Path {
	in := sw / 2
	x0, y0, x1, y1 := in, in, w-in, h-in
	if x1 <= x0 {
		x0, x1 = w/2, w/2
	}
	if y1 <= y0 {
		y0, y1 = h/2, h/2
	}
	switch strings.ToLower(it.ShapeType) {
	case "line":
		p := &canvas.Path{}
		p.MoveTo(0, h/2)
		p.LineTo(w, h/2)
		return p
	case "roundrect", "round-rect", "rounded":
		return roundRect(x0, y0, x1, y1, float64(it.CornerRadius))
	case "ellipse", "circle":
		cx, cy := (x0+x1)/2, (y0+y1)/2
		return polygon(cx, cy, (x1-x0)/2, (y1-y0)/2, curveSegments, 0)
	case "triangle":
		return closed([][2]float64{{(x0 + x1) / 2, y0}, {x1, y1}, {x0, y1}})
	case "polygon":
		cx, cy := (x0+x1)/2, (y0+y1)/2
		return polygon(cx, cy, (x1-x0)/2, (y1-y0)/2, it.Sides, -math.Pi/2)
	case "star":
		return star(x0, y0, x1, y1, it.Sides)
	default:
		return closed([][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}})
	}
}

func closed(pts [][2]float64) *canvas.Path {
	p := &canvas.Path{}
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt[0], pt[1])
		} else {
			p.LineTo(pt[0], pt[1])
		}
	}
	p.Close()
	return p
}

// polygon 返回内接于椭圆的正 n 边形，start 为第一个顶点的角度。
func polygon(cx, cy, rx, ry float64, n int, start float64) *canvas.Path {
	n = max(n, 3)
	pts := make([][2]float64, n)
	for i := range pts {
		a := start + 2*math.Pi*float64(i)/float64(n)
		pts[i] = [2]float64{cx + rx*math.Cos(a), cy + ry*math.Sin(a)}
	}
	return closed(pts)
}

// star 返回 n 角星，内径为外径的一半。
func star(x0, y0, x1, y1 float64, n int) *canvas.Path {
	n = max(n, 3)
	cx, cy := (x0+x1)/2, (y0+y1)/2
	rx, ry := (x1-x0)/2, (y1-y0)/2
	pts := make([][2]float64, 2*n)
	for i := range pts {
		a := -math.Pi/2 + math.Pi*float64(i)/float64(n)
		k := 1.0
		if i%2 == 1 {
			k = 0.5
		}
		pts[i] = [2]float64{cx + k*rx*math.Cos(a), cy + k*ry*math.Sin(a)}
	}
	return closed(pts)
}

// roundRect 返回圆角矩形，圆角半径不超过短边的一半。
func roundRect(x0, y0, x1, y1, r float64) *canvas.Path {
	r = math.Min(r, math.Min(x1-x0, y1-y0)/2)
	if r <= 0 {
		return closed([][2]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}})
	}
	const seg = curveSegments / 4
	var pts [][2]float64
	corner := func(cx, cy, from float64) {
		for i := 0; i <= seg; i++ {
			a := from + math.Pi/2*float64(i)/seg
			pts = append(pts, [2]float64{cx + r*math.Cos(a), cy + r*math.Sin(a)})
		}
	}
	corner(x1-r, y0+r, -math.Pi/2)
	corner(x1-r, y1-r, 0)
	corner(x0+r, y1-r, math.Pi/2)
	corner(x0+r, y0+r, math.Pi)
	return closed(pts)
}
