package canvasrenderer

import (
	"image"
	"math"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/labelcanvas/layout"
	"github.com/ByLCY/labelcanvas/raster"
)

// TextStyle 为文本装饰开关。
type TextStyle struct {
	Underline     bool
	Strikethrough bool
}

// RenderText 度量并栅格化多行文本。各行在块内水平居中；返回的度量已包含着墨包围盒（不含装饰线）。
func (r *Renderer) RenderText(req TextRequest, style TextStyle) (TextMetrics, *image.RGBA, error) {
	m, face, err := r.ResolveText(req)
	if err != nil {
		return TextMetrics{}, nil, err
	}
	w := max(1, int(math.Ceil(m.Width)))
	h := max(1, int(math.Ceil(m.Height)))
	img := raster.Paint(w, h, func(ctx *canvas.Context) {
		for _, ln := range m.Lines {
			if ln.Text == "" {
				continue
			}
			ctx.DrawText(float64(w)/2, ln.Baseline, canvas.NewTextLine(face, ln.Text, canvas.Center))
		}
	})
	measureInk(&m, img)

	for _, ln := range m.Lines {
		if ln.Advance <= 0 {
			continue
		}
		left := (float64(w) - ln.Advance) / 2
		if style.Underline {
			fillBand(img, left, ln.Advance, ln.Baseline+m.Underline.Offset, m.Underline.Thickness)
		}
		if style.Strikethrough {
			fillBand(img, left, ln.Advance, ln.Baseline-m.Strike.Offset, m.Strike.Thickness)
		}
	}
	return m, img, nil
}

// fillBand 在 img 上填充一条水平实心带，粗细至少 1 点。
func fillBand(img *image.RGBA, x, width, y, thickness float64) {
	b := img.Bounds()
	x0 := max(b.Min.X, int(math.Round(x)))
	x1 := min(b.Max.X, int(math.Round(x+width)))
	y0 := int(math.Round(y))
	y1 := y0 + max(1, int(math.Round(thickness)))
	for yy := max(b.Min.Y, y0); yy < min(b.Max.Y, y1); yy++ {
		for xx := x0; xx < x1; xx++ {
			img.Pix[img.PixOffset(xx, yy)+3] = 255
		}
	}
}

func (r *Renderer) rasterizeText(req layout.BlockRequest) (layout.Block, error) {
	it := req.Item
	treq := TextRequest{
		Text:          req.Text,
		Family:        it.FontFamily,
		Size:          it.FontSize,
		Bold:          it.Bold,
		Italic:        it.Italic,
		VerticalScale: req.VerticalScale,
	}
	// 横向时打印头方向为高度，纵向时为宽度。
	if req.Orientation == layout.Vertical {
		treq.MaxWidth = req.MaxCross
	} else {
		treq.MaxHeight = req.MaxCross
	}
	_, img, err := r.RenderText(treq, TextStyle{Underline: it.Underline, Strikethrough: it.Strikethrough})
	if err != nil {
		return layout.Block{}, err
	}
	b := img.Bounds()
	return layout.Block{Width: b.Dx(), Height: b.Dy(), Raster: img}, nil
}
