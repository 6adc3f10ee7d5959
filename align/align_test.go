package align

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/labelcanvas/geom"
	"github.com/ByLCY/labelcanvas/layout"
)

func sel(rects ...geom.Rect) []layout.LayoutItem {
	out := make([]layout.LayoutItem, len(rects))
	for i, r := range rects {
		id := string(rune('a' + i))
		out[i] = layout.LayoutItem{ID: id, Item: &layout.Item{ID: id}, Bounds: r}
	}
	return out
}

// relayout 模拟重新布局：包围盒随偏移移动。
func relayout(items []layout.LayoutItem, base []geom.Rect) {
	for i := range items {
		items[i].Bounds = base[i].Translate(float64(items[i].Item.XOffset), float64(items[i].Item.YOffset))
	}
}

func TestAlignLeftIsIdempotent(t *testing.T) {
	base := []geom.Rect{
		{X: 10, Y: 0, Width: 20, Height: 10},
		{X: 35.4, Y: 20, Width: 10, Height: 10},
		{X: 60, Y: 40, Width: 30, Height: 10},
	}
	items := sel(base...)
	label := geom.Rect{Width: 200, Height: 100}
	first, err := Apply(items, RefSelection, Left, label)
	if err != nil {
		t.Fatalf("对齐失败: %v", err)
	}
	want := []Move{{ID: "a"}, {ID: "b", DX: -25}, {ID: "c", DX: -50}}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("首次位移错误 (-want +got):\n%s", diff)
	}
	relayout(items, base)
	second, err := Apply(items, RefSelection, Left, label)
	if err != nil {
		t.Fatalf("对齐失败: %v", err)
	}
	for _, m := range second {
		if m.DX != 0 || m.DY != 0 {
			t.Fatalf("第二次对齐应为零位移: %+v", second)
		}
	}
}

func TestReferenceModes(t *testing.T) {
	items := sel(geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}, geom.Rect{X: 50, Y: 5, Width: 40, Height: 20})
	label := geom.Rect{Width: 120, Height: 64}
	cases := map[Reference]geom.Rect{
		RefSelection: {X: 0, Y: 0, Width: 90, Height: 25},
		RefLargest:   {X: 50, Y: 5, Width: 40, Height: 20},
		RefSmallest:  {X: 0, Y: 0, Width: 10, Height: 10},
		RefLabel:     label,
	}
	for ref, want := range cases {
		got, err := ReferenceRect(items, ref, label)
		if err != nil || got != want {
			t.Fatalf("%s: got=%+v err=%v want=%+v", ref, got, err, want)
		}
	}
}

func TestSingleItemNeedsLabelMode(t *testing.T) {
	items := sel(geom.Rect{X: 10, Y: 10, Width: 20, Height: 10})
	if _, err := Apply(items, RefSelection, Left, geom.Rect{}); !errors.Is(err, ErrNeedMultiple) {
		t.Fatalf("单个条目应返回 ErrNeedMultiple: %v", err)
	}
	moves, err := Apply(items, RefLabel, Middle, geom.Rect{Width: 100, Height: 64})
	if err != nil {
		t.Fatalf("label 模式应支持单个条目: %v", err)
	}
	if moves[0].DY != 17 || items[0].Item.YOffset != 17 {
		t.Fatalf("垂直居中位移错误: %+v", moves)
	}
	if _, err := Apply(nil, RefLabel, Left, geom.Rect{}); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("空选择应返回 ErrEmptySelection: %v", err)
	}
}

func TestDeltaEdges(t *testing.T) {
	item := geom.Rect{X: 10, Y: 10, Width: 10, Height: 10}
	ref := geom.Rect{X: 0, Y: 0, Width: 100, Height: 50}
	cases := map[Edge][2]float64{
		Left: {-10, 0}, Center: {35, 0}, Right: {80, 0},
		Top: {0, -10}, Middle: {0, 10}, Bottom: {0, 30},
	}
	for edge, want := range cases {
		dx, dy := Delta(item, ref, edge)
		if dx != want[0] || dy != want[1] {
			t.Fatalf("%s: got=(%g,%g) want=%v", edge, dx, dy, want)
		}
	}
}

func TestDistributeHorizontal(t *testing.T) {
	items := sel(
		geom.Rect{X: 0, Width: 10, Height: 5},
		geom.Rect{X: 80, Width: 20, Height: 5},
		geom.Rect{X: 15, Width: 10, Height: 5},
	)
	moves, err := Distribute(items, Horizontal)
	if err != nil {
		t.Fatalf("分布失败: %v", err)
	}
	// 总跨度 100，条目宽度和 40，间距 30：中间条目应位于 40。
	if moves[2].DX != 25 || moves[0].DX != 0 || moves[1].DX != 0 {
		t.Fatalf("分布位移错误: %+v", moves)
	}
	if _, err := Distribute(items[:2], Horizontal); !errors.Is(err, ErrNeedMultiple) {
		t.Fatalf("少于三个条目应返回 ErrNeedMultiple")
	}
}
