package engine

import (
	"github.com/ByLCY/labelcanvas/align"
	"github.com/ByLCY/labelcanvas/interaction"
	"github.com/ByLCY/labelcanvas/layout"
)

// Controller 返回交互控制器，供宿主读取悬停、手柄等状态。
func (e *Engine) Controller() *interaction.Controller { return e.ctrl }

// PointerMove 转发指针移动（内容坐标）。
func (e *Engine) PointerMove(x, y float64) interaction.Change {
	return e.changed(e.ctrl.PointerMove(x, y))
}

// PointerDown 转发按下；additive 为切换选中的修饰键。
func (e *Engine) PointerDown(x, y float64, additive bool) interaction.Change {
	return e.changed(e.ctrl.PointerDown(x, y, additive))
}

// PointerUp 结束拖动或缩放。
func (e *Engine) PointerUp() interaction.Change { return e.changed(e.ctrl.PointerUp()) }

// PointerLeave 在指针离开画布时调用。
func (e *Engine) PointerLeave() interaction.Change { return e.changed(e.ctrl.PointerLeave()) }

// Cursor 返回当前光标名称。
func (e *Engine) Cursor() string { return e.ctrl.Cursor() }

// SetSelectedItemIDs 同步外部选择。
func (e *Engine) SetSelectedItemIDs(ids []string) interaction.Change {
	return e.changed(e.ctrl.SetSelectedIDs(ids))
}

// SelectedItemIDs 返回选中条目 ID。
func (e *Engine) SelectedItemIDs() []string { return e.ctrl.SelectedIDs() }

// LayoutItems 返回最近一次渲染的命中数据。
func (e *Engine) LayoutItems() []layout.LayoutItem { return e.ctrl.LayoutItems() }

// Nudge 平移选中条目。
func (e *Engine) Nudge(dx, dy int) interaction.Change { return e.changed(e.ctrl.Nudge(dx, dy)) }

// RotateSelected 旋转选中条目。
func (e *Engine) RotateSelected(deg float64) interaction.Change {
	return e.changed(e.ctrl.RotateSelected(deg))
}

// AlignSelected 按参考模式对齐选中条目；label 模式以内容画布为参考。
// 计算前先完成待处理的渲染，移动后立即重新渲染，因此连续调用总是基于最新的包围盒。
func (e *Engine) AlignSelected(ref align.Reference, edge align.Edge) ([]align.Move, error) {
	e.Frame()
	label, err := e.LabelBounds()
	if err != nil && ref == align.RefLabel {
		return nil, err
	}
	moves, err := align.Apply(e.ctrl.SelectedItems(), ref, edge, label)
	if err != nil {
		return nil, err
	}
	e.afterMoves(moves)
	return moves, nil
}

// DistributeSelected 在指定方向上等距分布选中条目。
func (e *Engine) DistributeSelected(axis align.Axis) ([]align.Move, error) {
	e.Frame()
	moves, err := align.Distribute(e.ctrl.SelectedItems(), axis)
	if err != nil {
		return nil, err
	}
	e.afterMoves(moves)
	return moves, nil
}

func (e *Engine) afterMoves(moves []align.Move) {
	for _, m := range moves {
		if m.DX != 0 || m.DY != 0 {
			e.changed(interaction.ChangeGeometry)
			e.Frame()
			return
		}
	}
}
