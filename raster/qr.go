package raster

import (
	"errors"
	"fmt"
	"image"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// ErrInvalidPayload 表示内容不符合编码要求（空数据、字符集不匹配等）。
var ErrInvalidPayload = errors.New("raster: 内容无效")

// QRSpec 描述一个二维码栅格的全部像素相关参数。
type QRSpec struct {
	Data    string
	Size    int
	ECC     string // L/M/Q/H
	Version int    // 0 自动
	Mode    string // auto/numeric/alphanumeric/byte
}

func (s QRSpec) key() string {
	return fmt.Sprintf("qr|%d|%s|%d|%s|%s", s.Size, s.ECC, s.Version, s.Mode, s.Data)
}

func recoveryLevel(ecc string) qrcode.RecoveryLevel {
	switch strings.ToUpper(ecc) {
	case "L":
		return qrcode.Low
	case "Q":
		return qrcode.High
	case "H":
		return qrcode.Highest
	default:
		return qrcode.Medium
	}
}

const qrAlphanumeric = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ $%*+-./:"

// validateQRMode 检查数据是否落在指定编码模式的字符集中。编码器本身会自动选择最紧凑的模式。
func validateQRMode(data, mode string) error {
	switch strings.ToLower(mode) {
	case "numeric":
		for _, r := range data {
			if r < '0' || r > '9' {
				return fmt.Errorf("%w: numeric 模式不支持字符 %q", ErrInvalidPayload, r)
			}
		}
	case "alphanumeric":
		for _, r := range data {
			if !strings.ContainsRune(qrAlphanumeric, r) {
				return fmt.Errorf("%w: alphanumeric 模式不支持字符 %q", ErrInvalidPayload, r)
			}
		}
	}
	return nil
}

// EncodeQR 生成边长恰为 spec.Size 的单色二维码栅格（不含静区）。
func EncodeQR(spec QRSpec) (*image.RGBA, error) {
	if spec.Data == "" {
		return nil, fmt.Errorf("%w: 二维码内容为空", ErrInvalidPayload)
	}
	if spec.Size <= 0 {
		return nil, fmt.Errorf("%w: 二维码尺寸无效: %d", ErrInvalidPayload, spec.Size)
	}
	if err := validateQRMode(spec.Data, spec.Mode); err != nil {
		return nil, err
	}

	var (
		q   *qrcode.QRCode
		err error
	)
	level := recoveryLevel(spec.ECC)
	if spec.Version > 0 {
		q, err = qrcode.NewWithForcedVersion(spec.Data, spec.Version, level)
	} else {
		q, err = qrcode.New(spec.Data, level)
	}
	if err != nil {
		return nil, fmt.Errorf("raster: 二维码编码失败: %w", err)
	}
	q.DisableBorder = true
	bits := q.Bitmap()
	n := len(bits)
	if n == 0 {
		return nil, fmt.Errorf("raster: 二维码编码结果为空")
	}

	// 每个像素映射到 floor(x*n/size) 号模块，栅格恰好 size×size。
	out := image.NewRGBA(image.Rect(0, 0, spec.Size, spec.Size))
	for y := 0; y < spec.Size; y++ {
		row := bits[y*n/spec.Size]
		for x := 0; x < spec.Size; x++ {
			if row[x*n/spec.Size] {
				out.SetRGBA(x, y, black)
			}
		}
	}
	return out, nil
}
