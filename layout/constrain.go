package layout

import "math"

// ConstrainToPrintable 等比缩小 w×h，使其在打印头方向的尺寸不超过 maxCross。
// 创建与缩放 image/icon 条目时共用此约束。maxCross<=0 表示不限制。
func ConstrainToPrintable(w, h, maxCross int, o Orientation) (int, int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if maxCross <= 0 {
		return w, h
	}
	cross := h
	if o == Vertical {
		cross = w
	}
	if cross <= maxCross {
		return w, h
	}
	scale := float64(maxCross) / float64(cross)
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))
	if o == Vertical {
		nw = maxCross
	} else {
		nh = maxCross
	}
	return nw, nh
}

// MaxQRSize 返回二维码在给定可打印宽度下允许的最大边长。
func MaxQRSize(printableWidth int) int {
	if printableWidth < MinQRSize {
		return MinQRSize
	}
	return printableWidth
}
