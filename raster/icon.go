package raster

import (
	"fmt"
	"image"
	"image/draw"
	"sort"
	"strings"

	"golang.org/x/exp/shiny/iconvg"
	"golang.org/x/exp/shiny/materialdesign/icons"
)

// IconSpec 描述一个图标栅格。图标只做硬阈值，不支持抖动。
type IconSpec struct {
	Name      string
	Width     int
	Height    int
	Threshold int
	Invert    bool
}

func (s IconSpec) key() string {
	return fmt.Sprintf("icon|%d|%d|%d|%t|%s", s.Width, s.Height, s.Threshold, s.Invert, s.Name)
}

// 内置图标集：名称使用 kebab-case。
var builtinIcons = map[string][]byte{
	"action-home":         icons.ActionHome,
	"action-settings":     icons.ActionSettings,
	"action-build":        icons.ActionBuild,
	"action-bug-report":   icons.ActionBugReport,
	"action-list":         icons.ActionList,
	"action-delete":       icons.ActionDelete,
	"action-done":         icons.ActionDone,
	"action-event":        icons.ActionEvent,
	"action-favorite":     icons.ActionFavorite,
	"action-info":         icons.ActionInfo,
	"action-lock":         icons.ActionLock,
	"action-search":       icons.ActionSearch,
	"action-print":        icons.ActionPrint,
	"alert-warning":       icons.AlertWarning,
	"alert-error":         icons.AlertError,
	"communication-email": icons.CommunicationEmail,
	"communication-phone": icons.CommunicationPhone,
	"content-add":         icons.ContentAdd,
	"content-archive":     icons.ContentArchive,
	"content-clear":       icons.ContentClear,
	"device-battery-full": icons.DeviceBatteryFull,
	"file-folder":         icons.FileFolder,
	"file-cloud":          icons.FileCloud,
	"hardware-computer":   icons.HardwareComputer,
	"hardware-keyboard":   icons.HardwareKeyboard,
	"hardware-memory":     icons.HardwareMemory,
	"image-camera-alt":    icons.ImageCameraAlt,
	"image-flash-on":      icons.ImageFlashOn,
	"maps-local-shipping": icons.MapsLocalShipping,
	"maps-place":          icons.MapsPlace,
	"notification-wifi":   icons.NotificationWiFi,
	"social-person":       icons.SocialPerson,
	"toggle-star":         icons.ToggleStar,
}

// IconNames 返回内置图标名称（已排序）。
func IconNames() []string {
	names := make([]string, 0, len(builtinIcons))
	for n := range builtinIcons {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupIcon 查找内置图标，名称不区分大小写，可带 "icon:" 前缀。
func LookupIcon(name string) ([]byte, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "icon:")
	n = strings.ReplaceAll(n, "_", "-")
	data, ok := builtinIcons[n]
	return data, ok
}

// RasterizeIcon 用 iconvg 把内置图标画到 w×h 画布，再做硬阈值单色转换。
func RasterizeIcon(spec IconSpec) (*image.RGBA, error) {
	data, ok := LookupIcon(spec.Name)
	if !ok {
		return nil, fmt.Errorf("raster: 未知图标 %q", spec.Name)
	}
	dst := image.NewRGBA(image.Rect(0, 0, max(spec.Width, 1), max(spec.Height, 1)))
	var z iconvg.Rasterizer
	z.SetDstImage(dst, dst.Bounds(), draw.Src)
	if err := iconvg.Decode(&z, data, nil); err != nil {
		return nil, fmt.Errorf("raster: 绘制图标 %s 失败: %w", spec.Name, err)
	}
	return ToMonochrome(dst, MonoOptions{Threshold: spec.Threshold, Invert: spec.Invert, Dither: DitherThreshold}), nil
}
