package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
)

// PDFOptions 描述打印画布的物理分辨率与文档信息。
type PDFOptions struct {
	// FeedDotsPerMM/CrossDotsPerMM 为走纸方向（画布 X）与打印头方向（画布 Y）每毫米点数。
	FeedDotsPerMM  float64
	CrossDotsPerMM float64
	Title          string
	Creator        string
}

// WritePDF 把打印画布按物理尺寸写成单页 PDF，便于在不接打印机时核对版面。
func WritePDF(w io.Writer, img *image.RGBA, opts PDFOptions) error {
	if img == nil {
		return fmt.Errorf("打印画布为空")
	}
	if opts.FeedDotsPerMM <= 0 || opts.CrossDotsPerMM <= 0 {
		return fmt.Errorf("分辨率无效: %g x %g", opts.FeedDotsPerMM, opts.CrossDotsPerMM)
	}
	b := img.Bounds()
	width := float64(b.Dx()) / opts.FeedDotsPerMM
	height := float64(b.Dy()) / opts.CrossDotsPerMM

	var buf bytes.Buffer
	writer := pdf.New(&buf, width, height, nil)
	writer.SetInfo(opts.Title, "", "", "", opts.Creator)

	c := canvas.New(width, height)
	ctx := canvas.NewContext(c)
	if opts.FeedDotsPerMM != opts.CrossDotsPerMM {
		// 走纸与打印头分辨率不同时，图像按打印头分辨率放置后沿 X 方向补偿。
		ctx.ComposeView(canvas.Identity.Scale(opts.CrossDotsPerMM/opts.FeedDotsPerMM, 1))
	}
	ctx.DrawImage(0, 0, img, canvas.DPMM(opts.CrossDotsPerMM))
	c.RenderTo(writer)

	if err := writer.Close(); err != nil {
		return fmt.Errorf("写入 PDF 失败: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
