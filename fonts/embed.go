// Package fonts 提供内置字体数据（Go 字体家族），并构建 tdewolff/canvas 字体族。
package fonts

import (
	"fmt"
	"strings"

	"github.com/tdewolff/canvas"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// 内置字体族名称。
const (
	Sans = "sans"
	Mono = "mono"
)

var builtin = map[string]map[canvas.FontStyle][]byte{
	Sans: {
		canvas.FontRegular:                  goregular.TTF,
		canvas.FontBold:                     gobold.TTF,
		canvas.FontItalic:                   goitalic.TTF,
		canvas.FontBold | canvas.FontItalic: gobolditalic.TTF,
	},
	Mono: {
		canvas.FontRegular:                  gomono.TTF,
		canvas.FontBold:                     gomonobold.TTF,
		canvas.FontItalic:                   gomonoitalic.TTF,
		canvas.FontBold | canvas.FontItalic: gomonobolditalic.TTF,
	},
}

// Canonical 将字体族名称归一化为内置字体族；未知名称回退为 sans。
func Canonical(family string) string {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "mono", "monospace", "go mono", "gomono", "courier", "courier new":
		return Mono
	default:
		return Sans
	}
}

// Load 返回内置字体的字节数据，path 形如 "embed:sans-bold" 或 "mono"。
func Load(path string) ([]byte, error) {
	path = strings.TrimPrefix(path, "embed:")
	name, styleName, _ := strings.Cut(path, "-")
	styles, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字体族", path)
	}
	style := canvas.FontRegular
	switch strings.ToLower(styleName) {
	case "", "regular":
	case "bold":
		style = canvas.FontBold
	case "italic":
		style = canvas.FontItalic
	case "bolditalic", "bold-italic":
		style = canvas.FontBold | canvas.FontItalic
	default:
		return nil, fmt.Errorf("读取内置字体 %s 失败: 未知字形 %s", path, styleName)
	}
	return styles[style], nil
}

// NewFamily 构建包含常规、粗体、斜体与粗斜体四种字形的字体族。
func NewFamily(family string) (*canvas.FontFamily, error) {
	name := Canonical(family)
	f := canvas.NewFontFamily("labelcanvas-" + name)
	for style, data := range builtin[name] {
		if err := f.LoadFont(data, 0, style); err != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
		}
	}
	return f, nil
}

// Style 根据粗体/斜体标记返回 canvas 字形。
func Style(bold, italic bool) canvas.FontStyle {
	style := canvas.FontRegular
	if bold {
		style = canvas.FontBold
	}
	if italic {
		style |= canvas.FontItalic
	}
	return style
}
