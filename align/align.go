// Package align 计算选中条目相对参考矩形的对齐位移。
package align

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ByLCY/labelcanvas/geom"
	"github.com/ByLCY/labelcanvas/layout"
)

var (
	// ErrNeedMultiple 表示非 label 参考模式下选中条目少于两个。
	ErrNeedMultiple = errors.New("align: 至少需要选中两个条目")
	// ErrEmptySelection 表示没有选中条目。
	ErrEmptySelection = errors.New("align: 没有选中条目")
)

// Reference 是参考矩形的来源。
type Reference string

const (
	RefSelection Reference = "selection"
	RefLargest   Reference = "largest"
	RefSmallest  Reference = "smallest"
	RefLabel     Reference = "label"
)

// Edge 是对齐方式。
type Edge string

const (
	Left   Edge = "left"
	Center Edge = "center"
	Right  Edge = "right"
	Top    Edge = "top"
	Middle Edge = "middle"
	Bottom Edge = "bottom"
)

// Move 是单个条目的整数位移。
type Move struct {
	ID string
	DX int
	DY int
}

// ReferenceRect 解析参考矩形：selection 为选中包围盒的并集，largest/smallest 为面积最大/最小条目的包围盒，
// label 为整个画布。非 label 模式至少需要两个条目。
func ReferenceRect(selected []layout.LayoutItem, ref Reference, label geom.Rect) (geom.Rect, error) {
	if len(selected) == 0 {
		return geom.Rect{}, ErrEmptySelection
	}
	if ref == RefLabel {
		return label, nil
	}
	if len(selected) < 2 {
		return geom.Rect{}, ErrNeedMultiple
	}
	switch ref {
	case RefSelection, "":
		rects := make([]geom.Rect, len(selected))
		for i, li := range selected {
			rects[i] = li.Bounds
		}
		return geom.UnionAll(rects), nil
	case RefLargest, RefSmallest:
		best := selected[0].Bounds
		for _, li := range selected[1:] {
			a := li.Bounds.Area()
			if (ref == RefLargest && a > best.Area()) || (ref == RefSmallest && a < best.Area()) {
				best = li.Bounds
			}
		}
		return best, nil
	default:
		return geom.Rect{}, fmt.Errorf("align: 未知参考模式 %q", ref)
	}
}

// Delta 返回把 item 按 edge 对齐到 reference 所需的位移。纯函数。
func Delta(item, reference geom.Rect, edge Edge) (dx, dy float64) {
	switch edge {
	case Left:
		dx = reference.X - item.X
	case Center:
		rcx, _ := reference.Center()
		icx, _ := item.Center()
		dx = rcx - icx
	case Right:
		dx = reference.Right() - item.Right()
	case Top:
		dy = reference.Y - item.Y
	case Middle:
		_, rcy := reference.Center()
		_, icy := item.Center()
		dy = rcy - icy
	case Bottom:
		dy = reference.Bottom() - item.Bottom()
	}
	return dx, dy
}

// Plan 计算每个选中条目的取整位移，不修改条目。
func Plan(selected []layout.LayoutItem, ref Reference, edge Edge, label geom.Rect) ([]Move, error) {
	r, err := ReferenceRect(selected, ref, label)
	if err != nil {
		return nil, err
	}
	moves := make([]Move, 0, len(selected))
	for _, li := range selected {
		dx, dy := Delta(li.Bounds, r, edge)
		moves = append(moves, Move{ID: li.ID, DX: int(math.Round(dx)), DY: int(math.Round(dy))})
	}
	return moves, nil
}

// Apply 计算位移并加到条目偏移上。选择不变时重复调用，第一次之后位移为零。
func Apply(selected []layout.LayoutItem, ref Reference, edge Edge, label geom.Rect) ([]Move, error) {
	moves, err := Plan(selected, ref, edge, label)
	if err != nil {
		return nil, err
	}
	apply(selected, moves)
	return moves, nil
}

func apply(selected []layout.LayoutItem, moves []Move) {
	for i, m := range moves {
		it := selected[i].Item
		if it == nil {
			continue
		}
		it.XOffset += m.DX
		it.YOffset += m.DY
	}
}

// Axis 是等距分布的方向。
type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// Distribute 在首尾条目之间等距分布中间条目（按包围盒起点排序），至少需要三个条目。
func Distribute(selected []layout.LayoutItem, axis Axis) ([]Move, error) {
	if len(selected) == 0 {
		return nil, ErrEmptySelection
	}
	if len(selected) < 3 {
		return nil, ErrNeedMultiple
	}
	start := func(r geom.Rect) float64 {
		if axis == Vertical {
			return r.Y
		}
		return r.X
	}
	extent := func(r geom.Rect) float64 {
		if axis == Vertical {
			return r.Height
		}
		return r.Width
	}
	order := make([]int, len(selected))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return start(selected[order[a]].Bounds) < start(selected[order[b]].Bounds)
	})

	first := selected[order[0]].Bounds
	last := selected[order[len(order)-1]].Bounds
	total := 0.0
	for _, li := range selected {
		total += extent(li.Bounds)
	}
	gap := (start(last) + extent(last) - start(first) - total) / float64(len(selected)-1)

	moves := make([]Move, len(selected))
	for i, li := range selected {
		moves[i] = Move{ID: li.ID}
	}
	cursor := start(first) + extent(first) + gap
	for _, idx := range order[1 : len(order)-1] {
		b := selected[idx].Bounds
		d := int(math.Round(cursor - start(b)))
		if axis == Vertical {
			moves[idx].DY = d
		} else {
			moves[idx].DX = d
		}
		cursor += extent(b) + gap
	}
	apply(selected, moves)
	return moves, nil
}
