// Package engine 是标签画布的组合根：每个文档持有一个 Engine，负责布局、渲染、
// 渲染调度与交互状态之间的协调。Engine 不可并发使用。
package engine

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ByLCY/labelcanvas/binding"
	"github.com/ByLCY/labelcanvas/geom"
	"github.com/ByLCY/labelcanvas/interaction"
	"github.com/ByLCY/labelcanvas/layout"
	"github.com/ByLCY/labelcanvas/media"
	"github.com/ByLCY/labelcanvas/raster"
	canvasrenderer "github.com/ByLCY/labelcanvas/renderer/canvas"
	"github.com/ByLCY/labelcanvas/ruler"
)

// ErrNoResult 表示尚未成功渲染过。
var ErrNoResult = errors.New("engine: 尚无渲染结果")

// Options 描述一个标签文档的介质与渲染参数。
type Options struct {
	Media       media.Media
	Resolution  media.Resolution
	Orientation layout.Orientation
	// ManualLengthMM 为手动标签长度（毫米），只能加长自动计算的长度。
	ManualLengthMM float64

	Values          map[string]any
	ResolveTemplate func(template string, values map[string]any) string

	// BaseDir 用于解析相对图片路径。
	BaseDir string
	// HandleRadius 为手柄命中半径（内容坐标），由宿主按缩放比例换算。
	HandleRadius float64
	Logger       *slog.Logger
}

// Result 是一次成功渲染的输出。
type Result struct {
	PreviewCanvas *image.RGBA
	PrintCanvas   *image.RGBA
	Width         int
	Height        int
	LayoutItems   []layout.LayoutItem
	Plan          *layout.Plan
}

// Status 记录渲染调度的状态；Err 为最近一次渲染的错误，成功后清空。
type Status struct {
	Renders  int
	Failures int
	Err      error
	Duration time.Duration
}

// Event 发送给观察者。Rendered 为真时 Result 为新的渲染结果。
type Event struct {
	Change   interaction.Change
	Rendered bool
	Result   *Result
}

// Observer 接收状态变化通知。
type Observer func(Event)

// Engine 协调条目、渲染器与交互控制器。
type Engine struct {
	opts     Options
	log      *slog.Logger
	items    []*layout.Item
	renderer *canvasrenderer.Renderer
	ctrl     *interaction.Controller

	last   *Result
	status Status

	pending   bool
	rendering bool
	queued    bool

	observers []Observer
}

// New 创建引擎。items 由调用方持有，引擎只原地修改偏移、尺寸与旋转。
func New(items []*layout.Item, opts Options) *Engine {
	e := &Engine{
		items:    items,
		renderer: canvasrenderer.NewRenderer(opts.BaseDir),
		ctrl:     interaction.New(interaction.Options{}),
	}
	e.applyOptions(opts)
	return e
}

func (e *Engine) applyOptions(opts Options) {
	if opts.Orientation != layout.Vertical {
		opts.Orientation = layout.Horizontal
	}
	e.log = opts.Logger
	if e.log == nil {
		e.log = slog.Default()
	}
	e.opts = opts
	e.ctrl.SetOptions(interaction.Options{
		HandleRadius: opts.HandleRadius,
		MaxCross:     e.printableWidth(),
		Orientation:  opts.Orientation,
	})
}

// SetOptions 替换文档参数并请求重新渲染。BaseDir 变化时重建渲染器（连同缓存）。
func (e *Engine) SetOptions(opts Options) {
	if opts.BaseDir != e.opts.BaseDir {
		e.renderer = canvasrenderer.NewRenderer(opts.BaseDir)
	}
	e.applyOptions(opts)
	e.RequestRender()
}

// Options 返回当前文档参数。
func (e *Engine) Options() Options { return e.opts }

// SetItems 替换条目列表并请求重新渲染。
func (e *Engine) SetItems(items []*layout.Item) {
	e.items = items
	e.RequestRender()
}

// Items 返回条目列表。
func (e *Engine) Items() []*layout.Item { return e.items }

// Subscribe 注册观察者。
func (e *Engine) Subscribe(o Observer) {
	if o != nil {
		e.observers = append(e.observers, o)
	}
}

func (e *Engine) notify(ev Event) {
	if ev.Change == 0 && !ev.Rendered {
		return
	}
	for _, o := range e.observers {
		o(ev)
	}
}

func (e *Engine) printableWidth() int {
	return e.opts.Media.PrintableDots(e.opts.Resolution)
}

// RasterStats 返回栅格缓存计数。
func (e *Engine) RasterStats() raster.Stats { return e.renderer.Raster().Stats() }

// BuildCanvasFromState 同步完成布局与合成，并把新的命中数据交给交互控制器。
// 它不经过渲染调度，也不更新 Status。
func (e *Engine) BuildCanvasFromState() (*Result, error) {
	plan, err := layout.Build(e.items, layout.BuildOptions{
		Orientation:     e.opts.Orientation,
		PrintableWidth:  e.printableWidth(),
		MinLength:       e.opts.Resolution.MinLengthDots(),
		ManualLength:    e.opts.Resolution.FeedDots(e.opts.ManualLengthMM),
		VerticalScale:   e.opts.Resolution.VerticalScale(),
		Values:          e.opts.Values,
		ResolveTemplate: e.opts.ResolveTemplate,
		Rasterizer:      e.renderer,
	})
	if err != nil {
		return nil, fmt.Errorf("布局失败: %w", err)
	}
	out, err := e.renderer.Render(plan)
	if err != nil {
		return nil, fmt.Errorf("渲染失败: %w", err)
	}
	return &Result{
		PreviewCanvas: out.Preview,
		PrintCanvas:   out.Print,
		Width:         out.Width,
		Height:        out.Height,
		LayoutItems:   plan.LayoutItems(),
		Plan:          plan,
	}, nil
}

// UnboundVariables 列出文本与码内容中引用但 Values 未提供的模板变量（去重）。
// 使用自定义 ResolveTemplate 时无法判断，返回 nil。
func (e *Engine) UnboundVariables() []string {
	if e.opts.ResolveTemplate != nil {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	for _, it := range e.items {
		if it == nil {
			continue
		}
		var tmpl string
		switch it.Type {
		case layout.ItemText:
			tmpl = it.Text
		case layout.ItemQR, layout.ItemBarcode:
			tmpl = it.Data
		default:
			continue
		}
		for _, name := range binding.Missing(tmpl, e.opts.Values) {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

// RequestRender 标记需要重新渲染；多次请求在下一次 Frame 中合并为一次。
func (e *Engine) RequestRender() { e.pending = true }

// Pending 判断是否有待处理的渲染请求。
func (e *Engine) Pending() bool { return e.pending }

// Frame 由宿主每帧调用一次，有待处理请求时渲染一次并返回 true。
func (e *Engine) Frame() bool {
	if !e.pending {
		return false
	}
	e.pending = false
	e.Render()
	return true
}

// Render 立即渲染。渲染进行中再次调用（例如观察者回调中）只记录一次排队，
// 当前渲染结束后恰好补做一次。失败或 panic 时保留上一次结果并记录到 Status。
func (e *Engine) Render() error {
	if e.rendering {
		e.queued = true
		return nil
	}
	var err error
	for {
		e.rendering = true
		err = e.renderOnce()
		e.rendering = false
		if !e.queued {
			return err
		}
		e.queued = false
	}
}

func (e *Engine) renderOnce() (err error) {
	start := time.Now()
	var res *Result
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("engine: 渲染 panic: %v", r)
			}
		}()
		res, err = e.BuildCanvasFromState()
	}()
	e.status.Duration = time.Since(start)
	if err != nil {
		e.status.Failures++
		e.status.Err = err
		e.log.Error("render failed", slog.Any("err", err), slog.Int("items", len(e.items)))
		return err
	}
	e.status.Renders++
	e.status.Err = nil
	e.last = res
	ch := e.ctrl.SetLayout(res.LayoutItems)
	e.log.Debug("rendered",
		slog.Int("width", res.Width),
		slog.Int("height", res.Height),
		slog.Duration("took", e.status.Duration))
	e.notify(Event{Change: ch, Rendered: true, Result: res})
	return nil
}

// Result 返回最近一次成功渲染的结果，可能为空。
func (e *Engine) Result() *Result { return e.last }

// Status 返回渲染状态。
func (e *Engine) Status() Status { return e.status }

// LabelBounds 返回最近一次渲染的内容画布矩形。
func (e *Engine) LabelBounds() (geom.Rect, error) {
	if e.last == nil {
		return geom.Rect{}, ErrNoResult
	}
	return e.last.Plan.Bounds(), nil
}

// changed 通知观察者，几何变化时请求重新渲染。
func (e *Engine) changed(ch interaction.Change) interaction.Change {
	if ch.Has(interaction.ChangeGeometry) {
		e.RequestRender()
	}
	e.notify(Event{Change: ch})
	return ch
}

// RulerOptions 返回沿走纸方向的刻度尺参数：span 为宿主可用像素长度，origin 为轨道起点偏移。
// 有选中条目时高亮它们在走纸方向上的范围。
func (e *Engine) RulerOptions(span, origin float64) (ruler.Options, error) {
	if e.last == nil {
		return ruler.Options{}, ErrNoResult
	}
	dpm := e.opts.Resolution.FeedDotsPerMM()
	if dpm <= 0 {
		return ruler.Options{}, fmt.Errorf("engine: 分辨率无效: %q", e.opts.Resolution.Name)
	}
	o := ruler.Options{
		LengthMM: float64(e.last.Plan.Length) / dpm,
		Span:     span,
		Origin:   origin,
	}
	rects := make([]geom.Rect, 0, len(e.ctrl.SelectedIDs()))
	for _, li := range e.ctrl.SelectedItems() {
		rects = append(rects, li.Bounds)
	}
	if sel := geom.UnionAll(rects); !sel.IsEmpty() {
		from, to := sel.X, sel.Right()
		if e.opts.Orientation == layout.Vertical {
			from, to = sel.Y, sel.Bottom()
		}
		o.HighlightFromMM, o.HighlightToMM = from/dpm, to/dpm
	}
	return o, nil
}
