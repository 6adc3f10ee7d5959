// Package interaction 实现标签画布上的悬停、选择、拖动与缩放状态机。
// 坐标均为内容画布坐标（设备点）；屏幕坐标的换算由宿主完成。
package interaction

import (
	"math"
	"slices"

	"github.com/ByLCY/labelcanvas/geom"
	"github.com/ByLCY/labelcanvas/layout"
)

// State 是状态机的当前状态。
type State int

const (
	StateIdle State = iota
	StateHovering
	StateDragging
	StateResizing
)

func (s State) String() string {
	switch s {
	case StateHovering:
		return "hovering"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	default:
		return "idle"
	}
}

// Change 描述一次操作引起的变化，调用方据此决定是否重新布局或通知观察者。
type Change uint8

const (
	ChangeSelection Change = 1 << iota
	ChangeGeometry
	ChangeHover
)

// Has 判断是否包含指定变化。
func (c Change) Has(flag Change) bool { return c&flag != 0 }

// 光标名称。
const (
	CursorDefault  = "default"
	CursorMove     = "move"
	CursorGrabbing = "grabbing"
)

// DefaultHandleRadius 为手柄命中半径（内容坐标）。
const DefaultHandleRadius = 6

// Options 配置交互约束。
type Options struct {
	HandleRadius float64
	// MaxCross 为可打印宽度，image/icon 缩放与二维码尺寸上限都以此为准。
	MaxCross    int
	Orientation layout.Orientation
	// MaxQRSize>0 时覆盖由 MaxCross 推导的二维码上限。
	MaxQRSize int
}

// session 只存在于按下与抬起之间。
type session struct {
	kind      State
	ids       []string
	handle    Handle
	startX    float64
	startY    float64
	startRect geom.Rect
	start     map[string]layout.Item
	targets   map[string]*layout.Item
}

// Controller 持有交互状态。同一时刻最多一个拖动或缩放会话。不可并发使用。
type Controller struct {
	opts     Options
	items    []layout.LayoutItem
	selected []string
	hovered  string
	handle   Handle
	active   string
	session  *session
}

// New 创建控制器。
func New(opts Options) *Controller {
	c := &Controller{}
	c.SetOptions(opts)
	return c
}

// SetOptions 更新约束参数。
func (c *Controller) SetOptions(opts Options) {
	if opts.HandleRadius <= 0 {
		opts.HandleRadius = DefaultHandleRadius
	}
	c.opts = opts
}

// Options 返回当前约束参数。
func (c *Controller) Options() Options { return c.opts }

// State 返回当前状态。
func (c *Controller) State() State {
	if c.session != nil {
		return c.session.kind
	}
	if c.hovered != "" {
		return StateHovering
	}
	return StateIdle
}

// SetLayout 在每次重新布局后调用：替换命中数据，并剔除已不存在的选中、激活与悬停条目。
func (c *Controller) SetLayout(items []layout.LayoutItem) Change {
	c.items = items
	var ch Change
	kept := c.selected[:0:0]
	for _, id := range c.selected {
		if c.find(id) != nil {
			kept = append(kept, id)
		}
	}
	if len(kept) != len(c.selected) {
		ch |= ChangeSelection
	}
	c.selected = kept
	if c.active != "" && c.find(c.active) == nil {
		c.active = ""
		ch |= ChangeSelection
	}
	if c.hovered != "" && c.find(c.hovered) == nil {
		c.hovered, c.handle = "", HandleNone
		ch |= ChangeHover | ChangeSelection
	}
	return ch
}

// LayoutItems 返回当前命中数据。
func (c *Controller) LayoutItems() []layout.LayoutItem { return c.items }

func (c *Controller) find(id string) *layout.LayoutItem {
	for i := range c.items {
		if c.items[i].ID == id {
			return &c.items[i]
		}
	}
	return nil
}

// HitTest 返回包含 (x,y) 的最上层条目（后绘制者在上）。
func (c *Controller) HitTest(x, y float64) (layout.LayoutItem, bool) {
	for i := len(c.items) - 1; i >= 0; i-- {
		if c.items[i].Bounds.Contains(x, y) {
			return c.items[i], true
		}
	}
	return layout.LayoutItem{}, false
}

// SelectedIDs 返回选中条目 ID（按选中顺序）。
func (c *Controller) SelectedIDs() []string { return slices.Clone(c.selected) }

// IsSelected 判断条目是否选中。
func (c *Controller) IsSelected(id string) bool { return slices.Contains(c.selected, id) }

// SetSelectedIDs 与外部条目列表同步选择；不存在于当前布局的 ID 被忽略。
func (c *Controller) SetSelectedIDs(ids []string) Change {
	next := make([]string, 0, len(ids))
	for _, id := range ids {
		if c.find(id) == nil || slices.Contains(next, id) {
			continue
		}
		next = append(next, id)
	}
	if slices.Equal(next, c.selected) {
		return 0
	}
	c.selected = next
	c.active = ""
	if len(next) > 0 {
		c.active = next[len(next)-1]
	}
	return ChangeSelection
}

// SelectedItems 返回选中条目的布局信息。
func (c *Controller) SelectedItems() []layout.LayoutItem {
	out := make([]layout.LayoutItem, 0, len(c.selected))
	for _, id := range c.selected {
		if li := c.find(id); li != nil {
			out = append(out, *li)
		}
	}
	return out
}

// Hovered 返回悬停条目 ID。
func (c *Controller) Hovered() string { return c.hovered }

// Active 返回最近一次点选的条目 ID。
func (c *Controller) Active() string { return c.active }

// effectiveTargets 为有选择时的选中集，否则为悬停条目。
func (c *Controller) effectiveTargets() []string {
	if len(c.selected) > 0 {
		return c.selected
	}
	if c.hovered != "" {
		return []string{c.hovered}
	}
	return nil
}

// HandleTarget 返回显示缩放手柄的条目：仅当有效目标恰好一个时存在。
func (c *Controller) HandleTarget() (layout.LayoutItem, bool) {
	t := c.effectiveTargets()
	if len(t) != 1 {
		return layout.LayoutItem{}, false
	}
	li := c.find(t[0])
	if li == nil {
		return layout.LayoutItem{}, false
	}
	return *li, true
}

func (c *Controller) handleAt(x, y float64) (layout.LayoutItem, Handle) {
	li, ok := c.HandleTarget()
	if !ok {
		return li, HandleNone
	}
	return li, HandleAt(li.Bounds, x, y, c.opts.HandleRadius)
}

// PointerMove 处理指针移动：会话中更新拖动或缩放，否则更新悬停。
func (c *Controller) PointerMove(x, y float64) Change {
	if s := c.session; s != nil {
		switch s.kind {
		case StateDragging:
			return c.drag(x, y)
		case StateResizing:
			return c.resize(x, y)
		}
	}
	// 手柄按移动前的有效目标检测：未选中时即上一次悬停的条目。
	prevHover, prevHandle := c.hovered, c.handle
	hovered, handle := "", HandleNone
	if li, h := c.handleAt(x, y); h != HandleNone {
		hovered, handle = li.ID, h
	} else if li, ok := c.HitTest(x, y); ok {
		hovered = li.ID
		// 直接移入未选中条目的角点时，该条目即成为唯一有效目标。
		if len(c.selected) == 0 {
			handle = HandleAt(li.Bounds, x, y, c.opts.HandleRadius)
		}
	}
	c.hovered, c.handle = hovered, handle
	if c.hovered != prevHover || c.handle != prevHandle {
		return ChangeHover
	}
	return 0
}

// PointerDown 处理按下。先检查手柄（进入缩放），再检查条目（更新选择并进入拖动）；
// additive 为切换选中的修饰键。点在空白处且没有修饰键时清空选择。
func (c *Controller) PointerDown(x, y float64, additive bool) Change {
	c.session = nil
	if li, h := c.handleAt(x, y); h != HandleNone && !additive {
		var ch Change
		if !c.IsSelected(li.ID) {
			c.selected = []string{li.ID}
			ch |= ChangeSelection
		}
		c.active = li.ID
		c.begin(StateResizing, []string{li.ID}, h, x, y, li.Bounds)
		return ch
	}

	li, ok := c.HitTest(x, y)
	if !ok {
		if additive || len(c.selected) == 0 {
			return 0
		}
		c.selected, c.active = nil, ""
		return ChangeSelection
	}

	var ch Change
	switch {
	case additive && c.IsSelected(li.ID):
		c.selected = slices.DeleteFunc(slices.Clone(c.selected), func(id string) bool { return id == li.ID })
		if c.active == li.ID {
			c.active = ""
		}
		return ChangeSelection
	case additive:
		c.selected = append(c.selected, li.ID)
		ch |= ChangeSelection
	case !c.IsSelected(li.ID):
		c.selected = []string{li.ID}
		ch |= ChangeSelection
	}
	// 已在多选集中的条目保持整组选中。
	c.active = li.ID
	c.begin(StateDragging, slices.Clone(c.selected), HandleNone, x, y, li.Bounds)
	return ch
}

func (c *Controller) begin(kind State, ids []string, h Handle, x, y float64, rect geom.Rect) {
	s := &session{
		kind:      kind,
		ids:       ids,
		handle:    h,
		startX:    x,
		startY:    y,
		startRect: rect,
		start:     make(map[string]layout.Item, len(ids)),
		targets:   make(map[string]*layout.Item, len(ids)),
	}
	for _, id := range ids {
		li := c.find(id)
		if li == nil || li.Item == nil {
			continue
		}
		s.start[id] = *li.Item
		s.targets[id] = li.Item
	}
	c.session = s
}

// PointerUp 结束会话。修改已在移动过程中逐次生效，这里不再提交。
func (c *Controller) PointerUp() Change {
	if c.session == nil {
		return 0
	}
	c.session = nil
	return ChangeHover
}

// PointerLeave 在指针离开画布时丢弃会话与悬停状态，已生效的修改不回滚。
func (c *Controller) PointerLeave() Change {
	var ch Change
	if c.session != nil {
		c.session = nil
		ch |= ChangeHover
	}
	if c.hovered != "" {
		c.hovered, c.handle = "", HandleNone
		ch |= ChangeHover
	}
	return ch
}

func (c *Controller) drag(x, y float64) Change {
	s := c.session
	dx, dy := round(x-s.startX), round(y-s.startY)
	var ch Change
	for _, id := range s.ids {
		it, ok := s.targets[id]
		if !ok {
			continue
		}
		st := s.start[id]
		nx, ny := st.XOffset+dx, st.YOffset+dy
		if it.XOffset != nx || it.YOffset != ny {
			it.XOffset, it.YOffset = nx, ny
			ch |= ChangeGeometry
		}
	}
	return ch
}

func (c *Controller) resize(x, y float64) Change {
	s := c.session
	to := resizeRect(s.startRect, s.handle, x-s.startX, y-s.startY)
	var ch Change
	for _, id := range s.ids {
		it, ok := s.targets[id]
		if !ok {
			continue
		}
		before := *it
		c.applyResize(it, s.start[id], s.startRect, to)
		if *it != before {
			ch |= ChangeGeometry
		}
	}
	return ch
}

// Cursor 返回当前应显示的光标。
func (c *Controller) Cursor() string {
	if s := c.session; s != nil {
		if s.kind == StateResizing {
			return s.handle.Cursor()
		}
		return CursorGrabbing
	}
	if c.handle != HandleNone {
		return c.handle.Cursor()
	}
	if c.hovered != "" {
		return CursorMove
	}
	return CursorDefault
}

// Nudge 把选中条目整体平移 (dx,dy)。
func (c *Controller) Nudge(dx, dy int) Change {
	var ch Change
	for _, li := range c.SelectedItems() {
		if li.Item == nil || (dx == 0 && dy == 0) {
			continue
		}
		li.Item.XOffset += dx
		li.Item.YOffset += dy
		ch |= ChangeGeometry
	}
	return ch
}

// RotateSelected 给选中条目的旋转角加上 deg 度并归一化。
func (c *Controller) RotateSelected(deg float64) Change {
	if deg == 0 || math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	var ch Change
	for _, li := range c.SelectedItems() {
		if li.Item == nil {
			continue
		}
		li.Item.Rotation = geom.NormalizeAngle(li.Item.Rotation + deg)
		ch |= ChangeGeometry
	}
	return ch
}
