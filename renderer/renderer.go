package renderer

import (
	"image"

	"github.com/ByLCY/labelcanvas/layout"
)

// Output 是一次渲染得到的画布。Preview 为内容画布（含仅预览的占位框），
// Print 为打印画布：纵向排版时是去掉占位框后顺时针旋转 90° 的结果，与走纸方向一致。
// 两者像素均严格为 (0,0,0,255) 或 (0,0,0,0)。
type Output struct {
	Preview *image.RGBA
	Print   *image.RGBA
	Width   int
	Height  int
}

// Renderer 将布局结果合成为单色画布。
type Renderer interface {
	Render(plan *layout.Plan) (*Output, error)
}
