// Package ruler 生成毫米刻度尺：刻度模型与 tdewolff/canvas 栅格化。
package ruler

import (
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"

	"github.com/ByLCY/labelcanvas/layout"
)

// TickKind 区分主刻度（10mm，带数字）、中刻度（5mm）与小刻度（1mm）。
type TickKind int

const (
	Minor TickKind = iota
	Mid
	Major
)

// Tick 是一个刻度。Pos 为像素坐标（已加上 Origin）。
type Tick struct {
	MM    int
	Pos   float64
	Kind  TickKind
	Label string
}

// 默认参数。
const (
	DefaultThickness   = 24
	DefaultLabelInset  = 2
	DefaultMinTickStep = 2.0
)

// Options 描述刻度尺的缩放与高亮区间。
type Options struct {
	// LengthMM 为整条轨道对应的物理长度；Span 为可用像素长度；Origin 为轨道起点的像素偏移。
	LengthMM float64
	Span     float64
	Origin   float64
	// HighlightFromMM/HighlightToMM 为需要高亮的子区间（例如实际标签范围），相等时不高亮。
	HighlightFromMM float64
	HighlightToMM   float64
	Thickness       int
	LabelInset      float64
	// MinTickStep 为小刻度的最小像素间距，更密时省略小刻度。
	MinTickStep float64
}

func (o Options) normalized() Options {
	if o.Thickness <= 0 {
		o.Thickness = DefaultThickness
	}
	if o.LabelInset <= 0 {
		o.LabelInset = DefaultLabelInset
	}
	if o.MinTickStep <= 0 {
		o.MinTickStep = DefaultMinTickStep
	}
	return o
}

// Scale 返回每毫米对应的像素数。
func (o Options) Scale() float64 {
	if o.LengthMM <= 0 || o.Span <= 0 {
		return 0
	}
	return o.Span / o.LengthMM
}

// Position 把毫米换算为像素坐标。
func (o Options) Position(mm float64) float64 { return o.Origin + mm*o.Scale() }

// Ticks 返回 [0, LengthMM] 内的全部刻度。
func Ticks(o Options) []Tick {
	o = o.normalized()
	scale := o.Scale()
	if scale == 0 {
		return nil
	}
	showMinor := scale >= o.MinTickStep
	n := int(math.Floor(o.LengthMM + 1e-9))
	ticks := make([]Tick, 0, n+1)
	for mm := 0; mm <= n; mm++ {
		t := Tick{MM: mm, Pos: o.Position(float64(mm))}
		switch {
		case mm%10 == 0:
			t.Kind = Major
			t.Label = strconv.Itoa(mm)
		case mm%5 == 0:
			t.Kind = Mid
		default:
			if !showMinor {
				continue
			}
			t.Kind = Minor
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// Highlight 返回高亮区间的像素范围。
func Highlight(o Options) (from, to float64, ok bool) {
	if o.Scale() == 0 || o.HighlightToMM <= o.HighlightFromMM {
		return 0, 0, false
	}
	lo := math.Max(0, o.HighlightFromMM)
	hi := math.Min(o.LengthMM, o.HighlightToMM)
	if hi <= lo {
		return 0, 0, false
	}
	return o.Position(lo), o.Position(hi), true
}

// LabelPosition 返回宽度为 width 的数字标签左边界：默认以刻度居中，靠近轨道两端时向内收，避免被裁切。
func LabelPosition(o Options, pos, width float64) float64 {
	o = o.normalized()
	x := pos - width/2
	lo := o.Origin + o.LabelInset
	hi := o.Origin + o.Span - o.LabelInset - width
	if x > hi {
		x = hi
	}
	if x < lo {
		x = lo
	}
	return x
}

var (
	background = color.RGBA{0xf4, 0xf4, 0xf4, 0xff}
	shade      = color.RGBA{0xcc, 0xdd, 0xf5, 0xff}
	ink        = color.RGBA{0x33, 0x33, 0x33, 0xff}
)

// Render 绘制水平刻度尺，宽度为 Origin+Span，高度为 Thickness。family 为空时不绘制数字。
func Render(o Options, family *canvas.FontFamily) *image.RGBA {
	o = o.normalized()
	w := max(1, int(math.Ceil(o.Origin+o.Span)))
	h := o.Thickness
	c := canvas.New(float64(w), float64(h))
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV)

	ctx.SetFillColor(background)
	ctx.DrawPath(0, 0, canvas.Rectangle(float64(w), float64(h)))
	if from, to, ok := Highlight(o); ok {
		ctx.SetFillColor(shade)
		ctx.DrawPath(from, 0, canvas.Rectangle(to-from, float64(h)))
	}

	ctx.SetFillColor(color.RGBA{})
	ctx.SetStrokeColor(ink)
	ctx.SetStrokeWidth(1)
	var face *canvas.FontFace
	labelSize := float64(h) * 0.4
	if family != nil {
		face = family.Face(layout.ToPt(labelSize), ink, canvas.FontRegular, canvas.FontNormal)
	}
	for _, t := range Ticks(o) {
		length := float64(h) * 0.2
		switch t.Kind {
		case Major:
			length = float64(h) * 0.6
		case Mid:
			length = float64(h) * 0.4
		}
		x := math.Floor(t.Pos) + 0.5
		p := &canvas.Path{}
		p.MoveTo(0, 0)
		p.LineTo(0, length)
		ctx.DrawPath(x, float64(h)-length, p)
		if t.Label != "" && face != nil {
			lx := LabelPosition(o, t.Pos, face.TextWidth(t.Label))
			ctx.DrawText(lx, face.Metrics().Ascent+1, canvas.NewTextLine(face, t.Label, canvas.Left))
		}
	}
	return rasterizer.Draw(c, canvas.DPMM(1), canvas.DefaultColorSpace)
}
