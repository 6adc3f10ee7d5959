package dsl

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/labelcanvas/layout"
)

// ErrNeedResolution 表示带物理单位的长度缺少分辨率换算。
var ErrNeedResolution = errors.New("dsl: 带单位的长度需要分辨率")

// Label 是从文档中提取的标签设置与条目。
type Label struct {
	Name        string
	Media       string
	Resolution  string
	Orientation layout.Orientation
	// LengthMM 为手动长度，0 表示自动。
	LengthMM float64
	Values   map[string]any
	Items    []*layout.Item
}

// Header 只解析 label 头部参数（介质、分辨率、方向、长度），不转换条目。
func Header(doc *Document) (*Label, error) {
	if doc == nil {
		return nil, fmt.Errorf("dsl: 文档为空")
	}
	lbl := &Label{Name: string(doc.Name), Orientation: layout.Horizontal}
	a := &args{name: "label", list: doc.Params}
	for {
		key, ok := a.next()
		if !ok {
			break
		}
		switch strings.ToLower(key.Value) {
		case "horizontal":
			lbl.Orientation = layout.Horizontal
		case "vertical":
			lbl.Orientation = layout.Vertical
		case "media":
			v, err := a.value(key)
			if err != nil {
				return nil, err
			}
			lbl.Media = v.Value
		case "resolution":
			v, err := a.value(key)
			if err != nil {
				return nil, err
			}
			lbl.Resolution = v.Value
		case "length":
			v, err := a.value(key)
			if err != nil {
				return nil, err
			}
			l := layout.ParseLength(v.Value)
			if l.Value <= 0 {
				return nil, fmt.Errorf("%s: 无效长度 %q", v.Pos, v.Value)
			}
			// 裸数字按毫米处理。
			lbl.LengthMM = l.ToMM()
		default:
			return nil, fmt.Errorf("%s: label 不支持参数 %q", key.Pos, key.Value)
		}
	}
	return lbl, nil
}

// Resolution 为换算带单位长度（如 10mm、12pt）所需的每毫米点数，走纸方向与打印头方向分开给出。
type Resolution struct {
	FeedDotsPerMM  float64
	CrossDotsPerMM float64
}

// axis 是长度所在的画布轴；cross 表示始终沿打印头方向（字号、二维码边长、线宽）。
type axis int

const (
	axisX axis = iota
	axisY
	axisCross
)

// dotsPerMM 返回某个轴的换算系数：横向排版时 X 为走纸方向，纵向排版时 Y 为走纸方向。
func (r Resolution) dotsPerMM(a axis, o layout.Orientation) float64 {
	feed := (a == axisX && o != layout.Vertical) || (a == axisY && o == layout.Vertical)
	if feed {
		return r.FeedDotsPerMM
	}
	return r.CrossDotsPerMM
}

// Items 转换整个文档。res 中对应轴的系数为 0 时，带单位的长度报错。
// 未指定 id 的条目按类型自动编号（text-1、qr-1 ...）。
func Items(doc *Document, res Resolution) (*Label, error) {
	lbl, err := Header(doc)
	if err != nil {
		return nil, err
	}
	c := &converter{res: res, orientation: lbl.Orientation, counters: map[layout.ItemType]int{}, ids: map[string]bool{}}
	if doc.Block != nil {
		for _, st := range doc.Block.Statements {
			switch {
			case st.Data != nil:
				if lbl.Values == nil {
					lbl.Values = map[string]any{}
				}
				for k, v := range objectValue(st.Data.Object) {
					lbl.Values[k] = v
				}
			case st.Command != nil:
				items, err := c.command(st.Command, nil)
				if err != nil {
					return nil, err
				}
				lbl.Items = append(lbl.Items, items...)
			case st.Text != nil:
				return nil, fmt.Errorf("dsl: 顶层不允许裸字符串 %q，请使用 text 命令", st.Text.Value)
			}
		}
	}
	return lbl, nil
}

// absoluteFrame 是 absolute 块给子条目的偏移与旋转。
type absoluteFrame struct {
	x, y     int
	rotation float64
}

type converter struct {
	res         Resolution
	orientation layout.Orientation
	counters    map[layout.ItemType]int
	ids         map[string]bool
}

func (c *converter) args(name string, list []*Lexeme) *args {
	return &args{name: name, list: list, res: c.res, orientation: c.orientation}
}

func (c *converter) command(cmd *Command, frame *absoluteFrame) ([]*layout.Item, error) {
	name := strings.ToLower(cmd.Name)
	if name == "absolute" {
		if frame != nil {
			return nil, fmt.Errorf("%s: absolute 不能嵌套", cmd.Pos)
		}
		return c.absolute(cmd)
	}
	typ, ok := itemTypes[name]
	if !ok {
		return nil, fmt.Errorf("%s: 未知命令 %q", cmd.Pos, cmd.Name)
	}
	it, err := c.item(typ, cmd)
	if err != nil {
		return nil, err
	}
	if frame != nil {
		it.PositionMode = layout.PositionAbsolute
		it.XOffset += frame.x
		it.YOffset += frame.y
		it.Rotation += frame.rotation
	}
	return []*layout.Item{it}, nil
}

func (c *converter) absolute(cmd *Command) ([]*layout.Item, error) {
	if cmd.Block == nil {
		return nil, fmt.Errorf("%s: absolute 需要 { ... } 块", cmd.Pos)
	}
	frame := &absoluteFrame{}
	a := c.args("absolute", cmd.Args)
	for {
		key, ok := a.next()
		if !ok {
			break
		}
		var err error
		switch strings.ToLower(key.Value) {
		case "x":
			frame.x, err = a.dots(key, axisX)
		case "y":
			frame.y, err = a.dots(key, axisY)
		case "rotate":
			frame.rotation, err = a.number(key)
		default:
			err = fmt.Errorf("%s: absolute 不支持参数 %q", key.Pos, key.Value)
		}
		if err != nil {
			return nil, err
		}
	}
	var out []*layout.Item
	for _, st := range cmd.Block.Statements {
		if st.Command == nil {
			return nil, fmt.Errorf("%s: absolute 块内只允许条目命令", cmd.Pos)
		}
		items, err := c.command(st.Command, frame)
		if err != nil {
			return nil, err
		}
		out = append(out, items...)
	}
	return out, nil
}

var itemTypes = map[string]layout.ItemType{
	"text":    layout.ItemText,
	"qr":      layout.ItemQR,
	"barcode": layout.ItemBarcode,
	"image":   layout.ItemImage,
	"icon":    layout.ItemIcon,
	"shape":   layout.ItemShape,
}

func (c *converter) item(typ layout.ItemType, cmd *Command) (*layout.Item, error) {
	it := &layout.Item{Type: typ, PositionMode: layout.PositionFlow}
	a := c.args(cmd.Name, cmd.Args)

	// 第一个参数是内容：文本、数据、来源、图标名或形状类型。
	if first, ok := a.peek(); ok && (first.IsString() || (typ == layout.ItemShape && first.Type == "Ident")) {
		a.i++
		switch typ {
		case layout.ItemText:
			it.Text = first.Value
		case layout.ItemQR, layout.ItemBarcode:
			it.Data = first.Value
		case layout.ItemImage, layout.ItemIcon:
			it.Source = first.Value
		case layout.ItemShape:
			it.ShapeType = first.Value
		}
	}
	if typ == layout.ItemText && cmd.Block != nil {
		lines := make([]string, 0, len(cmd.Block.Statements))
		for _, st := range cmd.Block.Statements {
			if st.Text == nil {
				return nil, fmt.Errorf("%s: text 块内只允许字符串", cmd.Pos)
			}
			lines = append(lines, string(st.Text.Value))
		}
		if it.Text != "" {
			lines = append([]string{it.Text}, lines...)
		}
		it.Text = strings.Join(lines, "\n")
	} else if cmd.Block != nil {
		return nil, fmt.Errorf("%s: %s 不接受块", cmd.Pos, cmd.Name)
	}

	for {
		key, ok := a.next()
		if !ok {
			break
		}
		if err := c.option(it, a, key); err != nil {
			return nil, err
		}
	}

	if it.ID == "" {
		c.counters[typ]++
		it.ID = fmt.Sprintf("%s-%d", typ, c.counters[typ])
		for c.ids[it.ID] {
			c.counters[typ]++
			it.ID = fmt.Sprintf("%s-%d", typ, c.counters[typ])
		}
	} else if c.ids[it.ID] {
		return nil, fmt.Errorf("%s: 重复的 id %q", cmd.Pos, it.ID)
	}
	c.ids[it.ID] = true
	return it, nil
}

// option 处理单个选项；开关类选项不带值。
func (c *converter) option(it *layout.Item, a *args, key *Lexeme) error {
	var err error
	switch k := strings.ToLower(key.Value); k {
	case "absolute":
		it.PositionMode = layout.PositionAbsolute
	case "bold":
		it.Bold = true
	case "italic":
		it.Italic = true
	case "underline":
		it.Underline = true
	case "strike", "strikethrough":
		it.Strikethrough = true
	case "text":
		it.ShowText = true
	case "fill":
		it.Fill = true
	case "smooth":
		it.Smoothing = true
	case "invert":
		it.Invert = true
	case "id":
		var v *Lexeme
		if v, err = a.value(key); err == nil {
			it.ID = v.Value
		}
	case "x":
		it.XOffset, err = a.dots(key, axisX)
	case "y":
		it.YOffset, err = a.dots(key, axisY)
	case "rotate":
		it.Rotation, err = a.number(key)
	case "size":
		if it.Type == layout.ItemText {
			it.FontSize, err = a.dots(key, axisCross)
		} else {
			it.Size, err = a.dots(key, axisCross)
		}
	case "font":
		var v *Lexeme
		if v, err = a.value(key); err == nil {
			it.FontFamily = v.Value
		}
	case "ecc":
		var v *Lexeme
		if v, err = a.value(key); err == nil {
			it.ErrorCorrection = strings.ToUpper(v.Value)
		}
	case "version":
		it.Version, err = a.integer(key)
	case "mode":
		var v *Lexeme
		if v, err = a.value(key); err == nil {
			it.EncodingMode = strings.ToLower(v.Value)
		}
	case "format":
		var v *Lexeme
		if v, err = a.value(key); err == nil {
			it.Format = strings.ToLower(v.Value)
		}
	case "width":
		it.Width, err = a.dots(key, axisX)
	case "height":
		it.Height, err = a.dots(key, axisY)
	case "module":
		it.ModuleWidth, err = a.dots(key, axisX)
	case "margin":
		it.Margin, err = a.dots(key, axisX)
	case "dither":
		var v *Lexeme
		if v, err = a.value(key); err == nil {
			it.Dither = strings.ToLower(v.Value)
		}
	case "threshold":
		it.Threshold, err = a.integer(key)
	case "stroke":
		it.StrokeWidth, err = a.dots(key, axisCross)
	case "radius":
		it.CornerRadius, err = a.dots(key, axisCross)
	case "sides":
		it.Sides, err = a.integer(key)
	default:
		err = fmt.Errorf("%s: %s 不支持参数 %q", key.Pos, a.name, key.Value)
	}
	return err
}

// args 顺序读取命令参数。
type args struct {
	name        string
	list        []*Lexeme
	i           int
	res         Resolution
	orientation layout.Orientation
}

func (a *args) peek() (*Lexeme, bool) {
	if a.i >= len(a.list) {
		return nil, false
	}
	return a.list[a.i], true
}

func (a *args) next() (*Lexeme, bool) {
	l, ok := a.peek()
	if ok {
		a.i++
	}
	return l, ok
}

func (a *args) value(key *Lexeme) (*Lexeme, error) {
	v, ok := a.next()
	if !ok {
		return nil, fmt.Errorf("%s: %s 的 %s 缺少取值", key.Pos, a.name, key.Value)
	}
	return v, nil
}

func (a *args) number(key *Lexeme) (float64, error) {
	v, err := a.value(key)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(v.Value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: %s 需要数值，得到 %q", v.Pos, key.Value, v.Value)
	}
	return f, nil
}

func (a *args) integer(key *Lexeme) (int, error) {
	f, err := a.number(key)
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}

// dots 读取长度：裸数字为设备点，带单位时按所在轴的分辨率换算。
func (a *args) dots(key *Lexeme, ax axis) (int, error) {
	v, err := a.value(key)
	if err != nil {
		return 0, err
	}
	if v.Type != "Number" {
		return 0, fmt.Errorf("%s: %s 需要长度，得到 %q", v.Pos, key.Value, v.Value)
	}
	l := layout.ParseLength(v.Value)
	dpm := a.res.dotsPerMM(ax, a.orientation)
	if l.Unit != layout.UnitDot && dpm <= 0 {
		return 0, fmt.Errorf("%s: %s %s: %w", v.Pos, key.Value, l, ErrNeedResolution)
	}
	return l.ToDots(dpm), nil
}

// objectValue 把数据段转换为模板变量。
func objectValue(o *ObjectValue) map[string]any {
	out := map[string]any{}
	if o == nil {
		return out
	}
	for _, e := range o.Entries {
		out[e.Key] = value(e.Value)
	}
	return out
}

func value(v *Value) any {
	switch {
	case v == nil:
		return nil
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		if n, err := strconv.Atoi(*v.Number); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(*v.Number, 64); err == nil {
			return f
		}
		return *v.Number
	case v.Ident != nil:
		switch *v.Ident {
		case "true":
			return true
		case "false":
			return false
		case "null":
			return nil
		}
		return *v.Ident
	case v.Array != nil:
		out := make([]any, 0, len(v.Array.Values))
		for _, e := range v.Array.Values {
			out = append(out, value(e))
		}
		return out
	case v.Object != nil:
		return objectValue(v.Object)
	}
	return nil
}
