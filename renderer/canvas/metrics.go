package canvasrenderer

import (
	"image"
	"math"
	"strings"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/labelcanvas/geom"
)

// MinFontSize 为自动缩小字号的下限（点）。
const MinFontSize = 4

// TextRequest 是文本度量的输入。字号与尺寸均为设备点。
type TextRequest struct {
	Text   string
	Family string
	Size   int
	Bold   bool
	Italic bool
	// MaxHeight>0 时按总高度缩小字号；MaxWidth>0 时按最宽行缩小字号。
	MaxHeight int
	MaxWidth  int
	// VerticalScale 为介质纵向补偿系数，只作用于装饰线。
	VerticalScale float64
}

// LineMetrics 描述单行文本。坐标相对文本块左上角。
type LineMetrics struct {
	Text     string
	Advance  float64
	Ascent   float64
	Descent  float64
	Top      float64
	Baseline float64
	// Ink 为该行实际着墨像素的包围盒，空行为零值。
	Ink geom.Rect
}

// Decoration 为下划线或删除线相对基线的偏移与粗细。
type Decoration struct {
	Offset    float64
	Thickness float64
}

// TextMetrics 是 ResolveText 的结果。
type TextMetrics struct {
	Size       int
	LineHeight float64
	Gap        int
	Width      float64
	Height     float64
	Lines      []LineMetrics
	Ink        geom.Rect
	Underline  Decoration
	Strike     Decoration
}

// SplitLines 按换行拆分文本，保留空行。
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// LineGap 返回多行文本的行距。
func LineGap(size int) int {
	return max(1, int(math.Round(float64(size)*0.22)))
}

// Decorations 返回字号 size 下的下划线与删除线几何，vscale 为纵向补偿系数。
func Decorations(size int, vscale float64) (underline, strike Decoration) {
	if vscale <= 0 {
		vscale = 1
	}
	s := float64(size)
	floor1 := func(v float64) float64 { return math.Max(1, v) * vscale }
	underline = Decoration{Offset: floor1(s * 0.08), Thickness: floor1(s * 0.06)}
	strike = Decoration{Offset: floor1(s * 0.32), Thickness: floor1(s * 0.055)}
	return underline, strike
}

// ResolveText 确定最终字号并计算每行度量，Ink 在栅格化后由 measureInk 填写。
// 起始字号为 min(请求字号, 3×上限)，逐级减小直到放得下或到达下限；到达下限仍超出时不裁剪。
func (r *Renderer) ResolveText(req TextRequest) (TextMetrics, *canvas.FontFace, error) {
	lines := SplitLines(req.Text)
	size := max(req.Size, MinFontSize)
	if req.MaxHeight > 0 {
		size = min(size, 3*req.MaxHeight)
	}
	if req.MaxWidth > 0 {
		size = min(size, 3*req.MaxWidth)
	}
	size = max(size, MinFontSize)

	for {
		face, err := r.face(req.Family, float64(size), req.Bold, req.Italic)
		if err != nil {
			return TextMetrics{}, nil, err
		}
		m := measure(face, lines, size)
		fits := (req.MaxHeight <= 0 || m.Height <= float64(req.MaxHeight)) &&
			(req.MaxWidth <= 0 || m.Width <= float64(req.MaxWidth))
		if fits || size <= MinFontSize {
			m.Underline, m.Strike = Decorations(size, req.VerticalScale)
			return m, face, nil
		}
		size--
	}
}

func measure(face *canvas.FontFace, lines []string, size int) TextMetrics {
	fm := face.Metrics()
	ascent, descent := fm.Ascent, math.Abs(fm.Descent)
	lineHeight := ascent + descent
	gap := 0
	if len(lines) > 1 {
		gap = LineGap(size)
	}
	m := TextMetrics{Size: size, LineHeight: lineHeight, Gap: gap, Lines: make([]LineMetrics, len(lines))}
	y := 0.0
	for i, s := range lines {
		adv := 0.0
		if s != "" {
			adv = face.TextWidth(s)
		}
		m.Lines[i] = LineMetrics{Text: s, Advance: adv, Ascent: ascent, Descent: descent, Top: y, Baseline: y + ascent}
		m.Width = math.Max(m.Width, adv)
		y += lineHeight
		if i < len(lines)-1 {
			y += float64(gap)
		}
	}
	m.Height = y
	return m
}

// measureInk 扫描已栅格化文本块中每行所占的行区间，填写每行与整体的着墨包围盒。
func measureInk(m *TextMetrics, img *image.RGBA) {
	b := img.Bounds()
	m.Ink = geom.Rect{}
	for i := range m.Lines {
		ln := &m.Lines[i]
		y0 := max(b.Min.Y, int(math.Floor(ln.Top)))
		y1 := min(b.Max.Y, int(math.Ceil(ln.Top+m.LineHeight)))
		minX, minY, maxX, maxY := b.Max.X, b.Max.Y, -1, -1
		for y := y0; y < y1; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if img.RGBAAt(x, y).A == 0 {
					continue
				}
				minX, maxX = min(minX, x), max(maxX, x)
				minY, maxY = min(minY, y), max(maxY, y)
			}
		}
		if maxX < 0 {
			ln.Ink = geom.Rect{}
			continue
		}
		ln.Ink = geom.Rect{X: float64(minX), Y: float64(minY), Width: float64(maxX - minX + 1), Height: float64(maxY - minY + 1)}
		m.Ink = m.Ink.Union(ln.Ink)
	}
}
