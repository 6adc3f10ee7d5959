package canvasrenderer

import (
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/labelcanvas/fonts"
	"github.com/ByLCY/labelcanvas/layout"
)

// family 返回（并缓存）名称对应的字体族；未知名称回退为 sans。
func (r *Renderer) family(name string) (*canvas.FontFamily, error) {
	key := fonts.Canonical(name)
	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if f, ok := r.fontFamilies[key]; ok {
		return f, nil
	}
	f, err := fonts.NewFamily(key)
	if err != nil {
		return nil, err
	}
	r.fontFamilies[key] = f
	return f, nil
}

// face 以设备点为单位的字号创建字体面。
func (r *Renderer) face(family string, sizeDots float64, bold, italic bool) (*canvas.FontFace, error) {
	f, err := r.family(family)
	if err != nil {
		return nil, err
	}
	return f.Face(layout.ToPt(sizeDots), canvas.Black, fonts.Style(bold, italic), canvas.FontNormal), nil
}
