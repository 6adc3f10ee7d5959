package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrMissingSource 表示图片来源为空或无法读取。
var ErrMissingSource = errors.New("raster: 图片来源缺失")

// ImageSpec 描述一个图片栅格的全部像素相关参数。
type ImageSpec struct {
	Source    string
	Width     int
	Height    int
	Dither    DitherMode
	Threshold int
	Smoothing bool
	Invert    bool
}

func (s ImageSpec) key() string {
	return fmt.Sprintf("img|%d|%d|%s|%d|%t|%t|%s", s.Width, s.Height, s.Dither, s.Threshold, s.Smoothing, s.Invert, s.Source)
}

// DecodeSource 读取图片来源：data URI、文件路径或裸 base64 字符串。
func DecodeSource(src string) (image.Image, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrMissingSource
	}
	data, err := readSource(src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("raster: 解码图片失败: %w", err)
	}
	return img, nil
}

func readSource(src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		meta, payload, ok := strings.Cut(src[len("data:"):], ",")
		if !ok {
			return nil, fmt.Errorf("raster: data URI 格式错误")
		}
		if strings.HasSuffix(meta, ";base64") {
			return base64.StdEncoding.DecodeString(payload)
		}
		s, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("raster: data URI 格式错误: %w", err)
		}
		return []byte(s), nil
	}
	data, err := os.ReadFile(src)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("raster: 读取图片 %s 失败: %w", src, err)
	}
	if raw, decErr := base64.StdEncoding.DecodeString(src); decErr == nil && len(raw) > 0 {
		return raw, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrMissingSource, src)
}

// ScaleImage 把图片缩放到 w×h；smoothing 时使用 CatmullRom，否则使用最近邻。
func ScaleImage(src image.Image, w, h int, smoothing bool) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	var interp xdraw.Interpolator = xdraw.NearestNeighbor
	if smoothing {
		interp = xdraw.CatmullRom
	}
	interp.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
