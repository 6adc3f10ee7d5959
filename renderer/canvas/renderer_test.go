package canvasrenderer

import (
	"image"
	"math"
	"testing"

	"github.com/ByLCY/labelcanvas/layout"
	"github.com/ByLCY/labelcanvas/raster"
)

func TestResolveTextShrinksToFitHeight(t *testing.T) {
	r := NewRenderer(".")
	m, _, err := r.ResolveText(TextRequest{Text: "Hello", Size: 100, MaxHeight: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Height > 20 {
		t.Fatalf("缩小后总高度应不超过上限: %g", m.Height)
	}
	if m.Size >= 60 {
		t.Fatalf("起始字号应为 min(100, 3*20) 再逐级减小: %d", m.Size)
	}
}

func TestResolveTextStopsAtFloorWithoutClipping(t *testing.T) {
	r := NewRenderer(".")
	m, _, err := r.ResolveText(TextRequest{Text: "one\ntwo\nthree", Size: 16, MaxHeight: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Size != MinFontSize {
		t.Fatalf("应停在下限字号: %d", m.Size)
	}
	if m.Height <= 2 {
		t.Fatalf("到达下限后应按实际高度继续，不裁剪: %g", m.Height)
	}
}

func TestMultilineKeepsBlankLines(t *testing.T) {
	r := NewRenderer(".")
	m, _, err := r.ResolveText(TextRequest{Text: "foo\n\nbar", Size: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.Lines) != 3 || m.Lines[1].Text != "" || m.Lines[1].Advance != 0 {
		t.Fatalf("空行应保留: %+v", m.Lines)
	}
	if m.Gap != LineGap(20) || m.Gap != 4 {
		t.Fatalf("行距应为 round(20*0.22)=4: %d", m.Gap)
	}
	want := 3*m.LineHeight + 2*float64(m.Gap)
	if math.Abs(m.Height-want) > 1e-9 {
		t.Fatalf("总高度错误: got=%g want=%g", m.Height, want)
	}
	if m.Lines[2].Top != 2*(m.LineHeight+float64(m.Gap)) {
		t.Fatalf("第三行起点错误: %g", m.Lines[2].Top)
	}
}

func TestSingleLineHasNoGap(t *testing.T) {
	r := NewRenderer(".")
	m, _, _ := r.ResolveText(TextRequest{Text: "x", Size: 30})
	if m.Gap != 0 || m.Height != m.LineHeight {
		t.Fatalf("单行不应有行距: %+v", m)
	}
}

func TestDecorationMetrics(t *testing.T) {
	u, s := Decorations(50, 1)
	if math.Abs(u.Offset-4) > 1e-9 || math.Abs(u.Thickness-3) > 1e-9 {
		t.Fatalf("下划线几何错误: %+v", u)
	}
	if math.Abs(s.Offset-16) > 1e-9 || math.Abs(s.Thickness-2.75) > 1e-9 {
		t.Fatalf("删除线几何错误: %+v", s)
	}
	u, _ = Decorations(8, 2)
	if u.Thickness != 2 || u.Offset != 2 {
		t.Fatalf("小字号应取下限 1 再乘纵向补偿: %+v", u)
	}
}

func inked(img *image.RGBA, rect image.Rectangle) int {
	n := 0
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if img.RGBAAt(x, y).A != 0 {
				n++
			}
		}
	}
	return n
}

func TestRenderTextInkBounds(t *testing.T) {
	r := NewRenderer(".")
	m, img, err := r.RenderText(TextRequest{Text: "Hello\n\nWorld", Size: 24}, TextStyle{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !raster.IsMonochrome(img) {
		t.Fatalf("文本栅格应为单色")
	}
	if m.Ink.IsEmpty() || m.Lines[0].Ink.IsEmpty() || !m.Lines[1].Ink.IsEmpty() {
		t.Fatalf("着墨包围盒错误: %+v", m.Ink)
	}
	b := img.Bounds()
	if m.Ink.X < 0 || m.Ink.Y < 0 || m.Ink.Right() > float64(b.Dx()) || m.Ink.Bottom() > float64(b.Dy()) {
		t.Fatalf("着墨包围盒超出块: %+v %v", m.Ink, b)
	}
	if m.Ink.Width >= m.Width+1 {
		t.Fatalf("着墨宽度不应超过步进宽度: ink=%g adv=%g", m.Ink.Width, m.Width)
	}
}

func TestUnderlineDrawsBelowBaseline(t *testing.T) {
	r := NewRenderer(".")
	req := TextRequest{Text: "ab", Size: 40}
	m, plain, _ := r.RenderText(req, TextStyle{})
	_, under, _ := r.RenderText(req, TextStyle{Underline: true})
	y := int(math.Round(m.Lines[0].Baseline + m.Underline.Offset))
	row := image.Rect(0, y, plain.Bounds().Dx(), y+1)
	if inked(under, row) <= inked(plain, row) {
		t.Fatalf("下划线应在基线下方增加像素")
	}
}

func TestRenderShapeFillAndStroke(t *testing.T) {
	filled := RenderShape(&layout.Item{Type: layout.ItemShape, ShapeType: "rect", Width: 20, Height: 10, Fill: true})
	if inked(filled, filled.Bounds()) != 200 {
		t.Fatalf("填充矩形应全部着墨: %d", inked(filled, filled.Bounds()))
	}
	outline := RenderShape(&layout.Item{Type: layout.ItemShape, ShapeType: "rect", Width: 20, Height: 10, StrokeWidth: 2})
	if outline.RGBAAt(10, 5).A != 0 || outline.RGBAAt(0, 5).A == 0 {
		t.Fatalf("描边矩形应只有边框")
	}
	for _, st := range ShapeTypes() {
		img := RenderShape(&layout.Item{Type: layout.ItemShape, ShapeType: st, Width: 30, Height: 30, StrokeWidth: 2, Sides: 5, CornerRadius: 6})
		if inked(img, img.Bounds()) == 0 {
			t.Fatalf("%s 未绘制任何像素", st)
		}
	}
}

func build(t *testing.T, r *Renderer, items []*layout.Item, o layout.Orientation) *layout.Plan {
	t.Helper()
	plan, err := layout.Build(items, layout.BuildOptions{Orientation: o, PrintableWidth: 64, Rasterizer: r})
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	return plan
}

func TestRenderVerticalRotatesPrintCanvas(t *testing.T) {
	r := NewRenderer(".")
	plan := build(t, r, []*layout.Item{{ID: "s", Type: layout.ItemShape, Width: 20, Height: 30, Fill: true}}, layout.Vertical)
	out, err := r.Render(plan)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if out.Preview.Bounds().Dx() != 64 || out.Print.Bounds().Dx() != out.Preview.Bounds().Dy() || out.Print.Bounds().Dy() != 64 {
		t.Fatalf("纵向打印画布应旋转 90°: preview=%v print=%v", out.Preview.Bounds(), out.Print.Bounds())
	}
	if !raster.IsMonochrome(out.Preview) || !raster.IsMonochrome(out.Print) {
		t.Fatalf("输出应为严格单色")
	}
}

func TestMissingImageOnlyInPreview(t *testing.T) {
	r := NewRenderer(".")
	plan := build(t, r, []*layout.Item{{ID: "img", Type: layout.ItemImage, Source: "does-not-exist.png", Width: 30, Height: 20}}, layout.Horizontal)
	out, err := r.Render(plan)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	if inked(out.Print, out.Print.Bounds()) != 0 {
		t.Fatalf("缺失图片的占位框不应进入打印画布")
	}
	if inked(out.Preview, out.Preview.Bounds()) == 0 {
		t.Fatalf("预览画布应显示占位框")
	}
	if plan.Placements[0].Block.Width != 30 {
		t.Fatalf("占位框应使用条目尺寸: %+v", plan.Placements[0].Block)
	}
}

func TestTextAndQRScenario(t *testing.T) {
	r := NewRenderer(".")
	text := &layout.Item{ID: "t", Type: layout.ItemText, Text: "Hello", FontSize: 16}
	qr := &layout.Item{ID: "q", Type: layout.ItemQR, Data: "https://example.com", Size: 60}
	plan, err := layout.Build([]*layout.Item{text, qr}, layout.BuildOptions{PrintableWidth: 128, Rasterizer: r})
	if err != nil {
		t.Fatalf("布局失败: %v", err)
	}
	tb := plan.Placements[0].Block
	span := max(tb.Width, tb.Height)
	if plan.Length != 2+span+60+8 {
		t.Fatalf("长度应为 2+span+60+8: len=%d span=%d", plan.Length, span)
	}
	if plan.Placements[1].Box.X != float64(2+span) {
		t.Fatalf("qr 应紧跟文本: %+v", plan.Placements[1].Box)
	}
}

func TestRenderRotatedItemFillsRotatedBounds(t *testing.T) {
	r := NewRenderer(".")
	plan := build(t, r, []*layout.Item{{
		ID: "s", Type: layout.ItemShape, ShapeType: "rect", Width: 20, Height: 10, Fill: true,
		Rotation: 90, PositionMode: layout.PositionAbsolute, XOffset: 20,
	}}, layout.Horizontal)
	out, err := r.Render(plan)
	if err != nil {
		t.Fatalf("渲染失败: %v", err)
	}
	b := plan.Placements[0].Bounds
	if math.Abs(b.Width-10) > 1e-9 || math.Abs(b.Height-20) > 1e-9 {
		t.Fatalf("旋转 90° 后包围盒应为 10x20: %+v", b)
	}
	// 最近邻采样在边缘可能偏移一个像素。
	want := image.Rect(int(math.Round(b.X)), int(math.Round(b.Y)), int(math.Round(b.X+b.Width)), int(math.Round(b.Y+b.Height))).Inset(-1)
	if got := inked(out.Preview, out.Preview.Bounds()); got != inked(out.Preview, want) {
		t.Fatalf("旋转条目的像素应全部落在包围盒 %v 内", want)
	}
	if got := inked(out.Preview, want); got < 180 {
		t.Fatalf("旋转后的填充矩形像素过少: %d", got)
	}
}
