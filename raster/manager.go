package raster

import (
	"errors"
	"image"
)

// Raster 是一次栅格请求的结果。Image 总是非空。
type Raster struct {
	Image *image.RGBA
	// Placeholder 表示编码失败，Image 为固定尺寸的虚线占位图。
	Placeholder bool
	// PreviewOnly 表示图片来源缺失，占位图只出现在预览画布中。
	PreviewOnly bool
	Err         error
}

// Stats 统计实际执行的编码、抖动与解码次数，缓存命中不计入。
type Stats struct {
	Encodes int
	Dithers int
	Decodes int
	Hits    int
	Misses  int
}

// Manager 持有派生栅格与源图片两级 LRU 缓存。每个文档一个实例，不可并发使用。
type Manager struct {
	derived *Cache[Raster]
	sources *Cache[image.Image]
	text    TextDrawer
	stats   Stats
}

// NewManager 创建栅格管理器；text 用于条码可读文本与占位标签，可为 nil。
func NewManager(text TextDrawer) *Manager {
	return &Manager{
		derived: NewCache[Raster](DerivedCacheSize),
		sources: NewCache[image.Image](SourceCacheSize),
		text:    text,
	}
}

// Stats 返回累计统计。
func (m *Manager) Stats() Stats { return m.stats }

// Keys 按从旧到新的顺序返回派生缓存中的键。
func (m *Manager) Keys() []string { return m.derived.Keys() }

// Purge 清空两级缓存。
func (m *Manager) Purge() {
	m.derived.Purge()
	m.sources.Purge()
}

func (m *Manager) lookup(key string, build func() Raster) Raster {
	if r, ok := m.derived.Get(key); ok {
		m.stats.Hits++
		return r
	}
	m.stats.Misses++
	r := build()
	m.derived.Add(key, r)
	return r
}

// QR 返回二维码栅格；内容或参数无效时返回 48×48 的 "QR" 占位图。
func (m *Manager) QR(spec QRSpec) Raster {
	return m.lookup(spec.key(), func() Raster {
		m.stats.Encodes++
		img, err := EncodeQR(spec)
		if err != nil {
			return Raster{Image: Placeholder(QRPlaceholderSize, QRPlaceholderSize, "QR", m.text), Placeholder: true, Err: err}
		}
		return Raster{Image: img}
	})
}

// Barcode 返回条码栅格；内容被编码器拒绝时返回 120×40 的 "BARCODE" 占位图。
func (m *Manager) Barcode(spec BarcodeSpec) Raster {
	return m.lookup(spec.key(), func() Raster {
		m.stats.Encodes++
		img, err := EncodeBarcode(spec, m.text)
		if err != nil {
			return Raster{Image: Placeholder(BarcodePlaceholderWidth, BarcodePlaceholderH, "BARCODE", m.text), Placeholder: true, Err: err}
		}
		return Raster{Image: img}
	})
}

// Image 返回缩放并单色化后的图片。来源缺失或无法解码时返回条目尺寸的预览占位图，且不写入缓存。
func (m *Manager) Image(spec ImageSpec) Raster {
	key := spec.key()
	if r, ok := m.derived.Get(key); ok {
		m.stats.Hits++
		return r
	}
	m.stats.Misses++
	src, err := m.source(spec.Source)
	if err != nil {
		return m.missing(spec.Width, spec.Height, err)
	}
	m.stats.Dithers++
	scaled := ScaleImage(src, spec.Width, spec.Height, spec.Smoothing)
	r := Raster{Image: ToMonochrome(scaled, MonoOptions{Threshold: spec.Threshold, Invert: spec.Invert, Dither: spec.Dither})}
	m.derived.Add(key, r)
	return r
}

// Icon 返回内置图标栅格；不是内置图标名称时按图片来源处理（仍只做硬阈值）。
func (m *Manager) Icon(spec IconSpec) Raster {
	if _, ok := LookupIcon(spec.Name); !ok {
		return m.Image(ImageSpec{
			Source:    spec.Name,
			Width:     spec.Width,
			Height:    spec.Height,
			Dither:    DitherThreshold,
			Threshold: spec.Threshold,
			Invert:    spec.Invert,
		})
	}
	return m.lookup(spec.key(), func() Raster {
		m.stats.Dithers++
		img, err := RasterizeIcon(spec)
		if err != nil {
			return Raster{Image: Placeholder(spec.Width, spec.Height, "ICON", m.text), Placeholder: true, Err: err}
		}
		return Raster{Image: img}
	})
}

func (m *Manager) source(src string) (image.Image, error) {
	if src == "" {
		return nil, ErrMissingSource
	}
	return m.sources.GetOrBuild(src, func() (image.Image, error) {
		m.stats.Decodes++
		return DecodeSource(src)
	})
}

func (m *Manager) missing(w, h int, err error) Raster {
	label := "IMAGE"
	if !errors.Is(err, ErrMissingSource) {
		label = "?"
	}
	return Raster{Image: Placeholder(w, h, label, m.text), PreviewOnly: true, Placeholder: true, Err: err}
}
