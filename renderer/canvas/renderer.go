package canvasrenderer

import (
	"fmt"
	"image"
	"image/draw"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/labelcanvas/fonts"
	"github.com/ByLCY/labelcanvas/geom"
	"github.com/ByLCY/labelcanvas/layout"
	"github.com/ByLCY/labelcanvas/raster"
	"github.com/ByLCY/labelcanvas/renderer"
)

// Renderer 使用 github.com/tdewolff/canvas 栅格化条目，并把布局结果合成为单色画布。
// 它同时是布局阶段的栅格化后端。字体族缓存可并发访问，栅格缓存不可。
type Renderer struct {
	baseDir string
	raster  *raster.Manager

	fontMu       sync.Mutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer      = (*Renderer)(nil)
	_ layout.BlockRasterizer = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// BaseDir 用于解析相对路径的图片来源。
	BaseDir string
	// Raster 可注入共享的栅格管理器；为空时新建一个。
	Raster *raster.Manager
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with an optional shared raster manager.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	r.raster = opts.Raster
	if r.raster == nil {
		var text raster.TextDrawer
		if f, err := r.family(fonts.Sans); err == nil {
			text = raster.CenteredText(f)
		}
		r.raster = raster.NewManager(text)
	}
	return r
}

// Raster 返回渲染器持有的栅格管理器。
func (r *Renderer) Raster() *raster.Manager { return r.raster }

// RasterizeBlock 实现 layout.BlockRasterizer。编码失败以占位图返回，不产生错误。
func (r *Renderer) RasterizeBlock(req layout.BlockRequest) (layout.Block, error) {
	it := req.Item
	if it == nil {
		return layout.Block{}, fmt.Errorf("canvasrenderer: 条目为空")
	}
	switch it.Type {
	case layout.ItemText:
		return r.rasterizeText(req)
	case layout.ItemQR:
		size := min(it.Size, layout.MaxQRSize(req.MaxCross))
		res := r.raster.QR(raster.QRSpec{
			Data:    req.Text,
			Size:    size,
			ECC:     it.ErrorCorrection,
			Version: it.Version,
			Mode:    it.EncodingMode,
		})
		return fromRaster(res), nil
	case layout.ItemBarcode:
		res := r.raster.Barcode(raster.BarcodeSpec{
			Data:        req.Text,
			Format:      it.Format,
			Width:       it.Width,
			Height:      it.Height,
			ModuleWidth: it.ModuleWidth,
			Margin:      it.Margin,
			ShowText:    it.ShowText,
		})
		return fromRaster(res), nil
	case layout.ItemImage:
		w, h := layout.ConstrainToPrintable(it.Width, it.Height, req.MaxCross, req.Orientation)
		res := r.raster.Image(raster.ImageSpec{
			Source:    r.resolvePath(it.Source),
			Width:     w,
			Height:    h,
			Dither:    raster.ParseDither(it.Dither),
			Threshold: it.Threshold,
			Smoothing: it.Smoothing,
			Invert:    it.Invert,
		})
		return fromRaster(res), nil
	case layout.ItemIcon:
		w, h := layout.ConstrainToPrintable(it.Width, it.Height, req.MaxCross, req.Orientation)
		name := it.Source
		if _, ok := raster.LookupIcon(name); !ok {
			name = r.resolvePath(name)
		}
		res := r.raster.Icon(raster.IconSpec{Name: name, Width: w, Height: h, Threshold: it.Threshold, Invert: it.Invert})
		return fromRaster(res), nil
	case layout.ItemShape:
		img := RenderShape(it)
		return layout.Block{Width: img.Bounds().Dx(), Height: img.Bounds().Dy(), Raster: img}, nil
	default:
		return layout.Block{}, fmt.Errorf("canvasrenderer: 未知条目类型 %q", it.Type)
	}
}

func fromRaster(res raster.Raster) layout.Block {
	b := res.Image.Bounds()
	return layout.Block{Width: b.Dx(), Height: b.Dy(), Raster: res.Image, PreviewOnly: res.PreviewOnly}
}

// resolvePath 把相对文件路径解析到 baseDir；data URI 与绝对路径原样返回。
func (r *Renderer) resolvePath(src string) string {
	if src == "" || r.baseDir == "" || strings.HasPrefix(src, "data:") || filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(r.baseDir, src)
}

// Render 按落位把各块合成到内容画布。仅预览的块只进入预览画布，打印画布在其之前复制。
func (r *Renderer) Render(plan *layout.Plan) (*renderer.Output, error) {
	if plan == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if plan.Width <= 0 || plan.Height <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %dx%d", plan.Width, plan.Height)
	}
	content := image.NewRGBA(image.Rect(0, 0, plan.Width, plan.Height))
	var previewOnly []layout.Placement
	for _, pl := range plan.Placements {
		if pl.Block.PreviewOnly {
			previewOnly = append(previewOnly, pl)
			continue
		}
		composite(content, pl)
	}
	raster.Binarize(content)

	printCanvas := clone(content)
	for _, pl := range previewOnly {
		composite(content, pl)
	}
	raster.Binarize(content)

	if plan.Orientation == layout.Vertical {
		printCanvas = geom.Rotate90(printCanvas)
	}
	return &renderer.Output{
		Preview: content,
		Print:   printCanvas,
		Width:   plan.Width,
		Height:  plan.Height,
	}, nil
}

func composite(dst *image.RGBA, pl layout.Placement) {
	if pl.Block.Raster == nil || pl.Box.IsEmpty() {
		return
	}
	it := pl.Block.Item
	deg := 0.0
	if it != nil {
		deg = it.Rotation
	}
	src := pl.Block.Raster
	geom.DrawWithRotation(dst, pl.Box, deg, func(local *image.RGBA) {
		draw.Draw(local, local.Bounds(), src, src.Bounds().Min, draw.Src)
	})
}

func clone(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	return out
}
