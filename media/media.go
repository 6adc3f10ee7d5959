// Package media 描述胶带介质与打印分辨率，并把物理尺寸换算为设备点。
package media

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var builtinCatalog []byte

// MMPerInch 为英寸与毫米的换算系数。
const MMPerInch = 25.4

// ErrUnknown 表示目录中不存在请求的介质或分辨率。
var ErrUnknown = errors.New("media: unknown entry")

// Media 描述一种胶带。
type Media struct {
	Name        string  `yaml:"name" json:"name"`
	WidthMM     float64 `yaml:"width_mm" json:"widthMm"`
	PrintableMM float64 `yaml:"printable_mm" json:"printableMm"`
}

// Resolution 描述打印头分辨率；feed 为走纸方向，cross 为打印头方向。
type Resolution struct {
	Name        string  `yaml:"name" json:"name"`
	DPIFeed     int     `yaml:"dpi_feed" json:"dpiFeed"`
	DPICross    int     `yaml:"dpi_cross" json:"dpiCross"`
	MinLengthMM float64 `yaml:"min_length_mm" json:"minLengthMm"`
}

// Catalog 是介质与分辨率的集合。
type Catalog struct {
	Media       []Media      `yaml:"media"`
	Resolutions []Resolution `yaml:"resolutions"`
	Defaults    struct {
		Media      string `yaml:"media"`
		Resolution string `yaml:"resolution"`
	} `yaml:"defaults"`
}

// Default 解析内置目录。
func Default() (*Catalog, error) {
	return Parse(builtinCatalog)
}

// Parse 解析 YAML 目录并校验条目。
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("解析介质目录失败: %w", err)
	}
	for _, m := range c.Media {
		if m.Name == "" || m.PrintableMM <= 0 || m.WidthMM < m.PrintableMM {
			return nil, fmt.Errorf("介质 %q 的尺寸无效", m.Name)
		}
	}
	for _, r := range c.Resolutions {
		if r.Name == "" || r.DPIFeed <= 0 || r.DPICross <= 0 {
			return nil, fmt.Errorf("分辨率 %q 无效", r.Name)
		}
	}
	return &c, nil
}

// Lookup 按名称查找介质，名称大小写不敏感；空名称返回默认介质。
func (c *Catalog) Lookup(name string) (Media, error) {
	if name == "" {
		name = c.Defaults.Media
	}
	for _, m := range c.Media {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return Media{}, fmt.Errorf("%w: media %q", ErrUnknown, name)
}

// LookupResolution 按名称查找分辨率；空名称返回默认分辨率。
func (c *Catalog) LookupResolution(name string) (Resolution, error) {
	if name == "" {
		name = c.Defaults.Resolution
	}
	for _, r := range c.Resolutions {
		if strings.EqualFold(r.Name, name) {
			return r, nil
		}
	}
	return Resolution{}, fmt.Errorf("%w: resolution %q", ErrUnknown, name)
}

// FeedDotsPerMM 返回走纸方向每毫米点数。
func (r Resolution) FeedDotsPerMM() float64 { return float64(r.DPIFeed) / MMPerInch }

// CrossDotsPerMM 返回打印头方向每毫米点数。
func (r Resolution) CrossDotsPerMM() float64 { return float64(r.DPICross) / MMPerInch }

// FeedDots 将走纸方向的毫米数换算为点数（四舍五入）。
func (r Resolution) FeedDots(mm float64) int {
	if mm <= 0 || math.IsNaN(mm) {
		return 0
	}
	return int(math.Round(mm * r.FeedDotsPerMM()))
}

// MinLengthDots 返回最小标签长度（点）。
func (r Resolution) MinLengthDots() int { return r.FeedDots(r.MinLengthMM) }

// VerticalScale 是走纸与打印头分辨率不一致时的纵向补偿系数，正方像素为 1。
func (r Resolution) VerticalScale() float64 {
	if r.DPIFeed <= 0 || r.DPICross <= 0 {
		return 1
	}
	return float64(r.DPIFeed) / float64(r.DPICross)
}

// PrintableDots 返回介质在该分辨率下打印头方向的可打印点数。
func (m Media) PrintableDots(r Resolution) int {
	return int(math.Round(m.PrintableMM * r.CrossDotsPerMM()))
}
