package canvasrenderer

import (
	"bytes"
	"image"
	"testing"
)

func TestWritePDF(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 71, 128))
	var buf bytes.Buffer
	err := WritePDF(&buf, img, PDFOptions{FeedDotsPerMM: 180 / 25.4, CrossDotsPerMM: 180 / 25.4, Title: "t"})
	if err != nil {
		t.Fatalf("写入 PDF 失败: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("输出应为 PDF")
	}
}

func TestWritePDFRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, nil, PDFOptions{FeedDotsPerMM: 1, CrossDotsPerMM: 1}); err == nil {
		t.Fatalf("空画布应报错")
	}
	if err := WritePDF(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1)), PDFOptions{}); err == nil {
		t.Fatalf("无效分辨率应报错")
	}
	if buf.Len() != 0 {
		t.Fatalf("失败时不应写出内容")
	}
}
