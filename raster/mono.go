package raster

import (
	"image"
	"image/color"
	"strings"
)

// DitherMode 是单色转换前的预处理方式。
type DitherMode string

const (
	DitherNone           DitherMode = "none"
	DitherThreshold      DitherMode = "threshold"
	DitherFloydSteinberg DitherMode = "floyd-steinberg"
	DitherOrdered        DitherMode = "ordered"
)

// alphaCutoff 以下的像素一律视为透明。
const alphaCutoff = 10

// DefaultThreshold 为默认亮度阈值。
const DefaultThreshold = 160

var (
	black       = color.RGBA{A: 255}
	transparent = color.RGBA{}
)

// ParseDither 解析抖动模式名称，未知名称回退为 threshold。
func ParseDither(s string) DitherMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return DitherNone
	case "floyd-steinberg", "floydsteinberg", "fs", "diffusion":
		return DitherFloydSteinberg
	case "ordered", "bayer":
		return DitherOrdered
	default:
		return DitherThreshold
	}
}

// MonoOptions 控制单色转换。
type MonoOptions struct {
	Threshold int
	Invert    bool
	Dither    DitherMode
}

func (o MonoOptions) threshold() float64 {
	if o.Threshold <= 0 || o.Threshold > 255 {
		return DefaultThreshold
	}
	return float64(o.Threshold)
}

// Luminance 返回非预乘颜色的 Rec.709 亮度（0..255）与 8 位 alpha。
func Luminance(c color.Color) (float64, uint8) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return 0.2126*float64(n.R) + 0.7152*float64(n.G) + 0.0722*float64(n.B), n.A
}

// MonoPixel 对单个像素做硬阈值判断：alpha<10 透明；亮度低于阈值为黑色，invert 时取反。
func MonoPixel(c color.Color, threshold int, invert bool) color.RGBA {
	lum, a := Luminance(c)
	if a < alphaCutoff {
		return transparent
	}
	return decide(lum, MonoOptions{Threshold: threshold}.threshold(), invert)
}

func decide(lum, threshold float64, invert bool) color.RGBA {
	dark := lum < threshold
	if dark != invert {
		return black
	}
	return transparent
}

// ToMonochrome 将任意图片转换为只含 (0,0,0,255) 与 (0,0,0,0) 的 RGBA 图像。
func ToMonochrome(src image.Image, opts MonoOptions) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}
	lum := make([]float64, w*h)
	opaque := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			l, a := Luminance(src.At(b.Min.X+x, b.Min.Y+y))
			lum[y*w+x] = l
			opaque[y*w+x] = a >= alphaCutoff
		}
	}

	th := opts.threshold()
	switch opts.Dither {
	case DitherFloydSteinberg:
		floydSteinberg(lum, opaque, w, h, th)
	case DitherOrdered:
		ordered(lum, w, h)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !opaque[i] {
				continue
			}
			out.SetRGBA(x, y, decide(lum[i], th, opts.Invert))
		}
	}
	return out
}

// floydSteinberg 在亮度平面上做误差扩散；透明像素既不产生也不接收误差。
func floydSteinberg(lum []float64, opaque []bool, w, h int, th float64) {
	spread := func(x, y int, e float64) {
		if x < 0 || x >= w || y >= h {
			return
		}
		i := y*w + x
		if opaque[i] {
			lum[i] += e
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if !opaque[i] {
				continue
			}
			old := lum[i]
			quant := 255.0
			if old < th {
				quant = 0
			}
			e := old - quant
			spread(x+1, y, e*7/16)
			spread(x-1, y+1, e*3/16)
			spread(x, y+1, e*5/16)
			spread(x+1, y+1, e*1/16)
		}
	}
}

var bayer4 = [4][4]float64{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// ordered 用 4×4 Bayer 矩阵给亮度加上位置相关的偏移。
func ordered(lum []float64, w, h int) {
	const strength = 128.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			lum[y*w+x] += ((bayer4[y%4][x%4]+0.5)/16 - 0.5) * strength
		}
	}
}

// Binarize 原地把合成后的画布收敛为纯单色：alpha 过半的像素变为不透明黑色，其余透明。
func Binarize(img *image.RGBA) {
	if img == nil {
		return
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y).A >= 128 {
				img.SetRGBA(x, y, black)
			} else {
				img.SetRGBA(x, y, transparent)
			}
		}
	}
}

// IsMonochrome 判断图像是否只含 (0,0,0,255) 与 (0,0,0,0) 两种像素。
func IsMonochrome(img *image.RGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if c != black && c != transparent {
				return false
			}
		}
	}
	return true
}
