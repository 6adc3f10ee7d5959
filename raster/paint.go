package raster

import (
	"image"
	"image/color"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/labelcanvas/layout"
)

// Paint 在 w×h 的局部画布上以一点一单位执行 paint，栅格化后按 alpha 过半收敛为单色。
// 坐标系为左上角原点、y 向下。
func Paint(w, h int, paint func(ctx *canvas.Context)) *image.RGBA {
	if w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0)))
	}
	c := canvas.New(float64(w), float64(h))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)
	paint(ctx)
	img := rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	b := img.Bounds()
	for y := 0; y < h && y < b.Dy(); y++ {
		for x := 0; x < w && x < b.Dx(); x++ {
			if img.RGBAAt(b.Min.X+x, b.Min.Y+y).A >= 128 {
				out.SetRGBA(x, y, black)
			}
		}
	}
	return out
}

// TextDrawer 在 dst 的 rect 区域内居中绘制单行文本。
type TextDrawer func(dst *image.RGBA, rect image.Rectangle, text string)

// minLabelSize 为占位与条码文字的最小字号（点）。
const minLabelSize = 4

// CenteredText 返回使用 family 常规字形绘制的 TextDrawer；文字过宽时逐级缩小字号。
func CenteredText(family *canvas.FontFamily) TextDrawer {
	return func(dst *image.RGBA, rect image.Rectangle, text string) {
		w, h := rect.Dx(), rect.Dy()
		if family == nil || w <= 0 || h <= 0 || text == "" {
			return
		}
		size := max(float64(h)*0.8, minLabelSize)
		face := family.Face(layout.ToPt(size), canvas.Black, canvas.FontRegular, canvas.FontNormal)
		for size > minLabelSize && face.TextWidth(text) > float64(w) {
			size--
			face = family.Face(layout.ToPt(size), canvas.Black, canvas.FontRegular, canvas.FontNormal)
		}
		m := face.Metrics()
		img := Paint(w, h, func(ctx *canvas.Context) {
			baseline := (float64(h) + m.Ascent - m.Descent) / 2
			ctx.DrawText(float64(w)/2, baseline, canvas.NewTextLine(face, text, canvas.Center))
		})
		blit(dst, img, rect.Min)
	}
}

// blit 把单色 src 的黑色像素叠加到 dst 的 at 位置。
func blit(dst, src *image.RGBA, at image.Point) {
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if src.RGBAAt(x, y).A == 0 {
				continue
			}
			p := image.Pt(at.X+x-b.Min.X, at.Y+y-b.Min.Y)
			if p.In(dst.Bounds()) {
				dst.SetRGBA(p.X, p.Y, black)
			}
		}
	}
}

// 固定尺寸占位图。
const (
	QRPlaceholderSize       = 48
	BarcodePlaceholderWidth = 120
	BarcodePlaceholderH     = 40
)

// Placeholder 绘制 w×h 的虚线框并在中间写上 label。
func Placeholder(w, h int, label string, text TextDrawer) *image.RGBA {
	w, h = max(w, 1), max(h, 1)
	img := Paint(w, h, func(ctx *canvas.Context) {
		ctx.SetFillColor(color.RGBA{})
		ctx.SetStrokeColor(canvas.Black)
		ctx.SetStrokeWidth(1)
		ctx.SetDashes(0, 4, 3)
		ctx.DrawPath(0.5, 0.5, canvas.Rectangle(float64(w)-1, float64(h)-1))
	})
	if text != nil && w > 6 && h > 6 {
		inner := image.Rect(3, h/4, w-3, h-h/4)
		text(img, inner, label)
	}
	return img
}
