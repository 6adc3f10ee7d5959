package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/labelcanvas/dsl"
	"github.com/ByLCY/labelcanvas/engine"
	"github.com/ByLCY/labelcanvas/fonts"
	"github.com/ByLCY/labelcanvas/layout"
	"github.com/ByLCY/labelcanvas/media"
	"github.com/ByLCY/labelcanvas/raster"
	canvasrenderer "github.com/ByLCY/labelcanvas/renderer/canvas"
	"github.com/ByLCY/labelcanvas/ruler"
)

// config 汇总命令行参数。
type config struct {
	input      string
	outDir     string
	media      string
	resolution string
	data       map[string]any
	debugPath  string
	rulerPath  string
	pdfPath    string
	verbose    bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.input, "in", "examples/asset.label", "标签 DSL 文件路径")
	flag.StringVar(&cfg.outDir, "out", "output", "PNG 输出目录")
	flag.StringVar(&cfg.media, "media", "", "覆盖文件中的介质，例如 W12")
	flag.StringVar(&cfg.resolution, "resolution", "", "覆盖文件中的分辨率，例如 180x360")
	flag.StringVar(&cfg.debugPath, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&cfg.rulerPath, "ruler", "", "刻度尺 PNG 输出路径")
	flag.StringVar(&cfg.pdfPath, "pdf", "", "按物理尺寸输出打印画布 PDF 的路径")
	flag.BoolVar(&cfg.verbose, "v", false, "输出调试日志")
	dataJSON := flag.String("data", "", "绑定到模板的 JSON 对象")
	flag.Usage = usage
	flag.Parse()

	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &cfg.data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}

	if err := run(cfg); err != nil {
		log.Fatalf("生成标签失败: %v", err)
	}
	fmt.Printf("已生成标签：%s\n", cfg.outDir)
}

// usage 在参数说明后附上内置图标与条码格式，便于编写 DSL。
func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "用法: %s [参数]\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
	fmt.Fprintf(out, "\n内置图标: %s\n", strings.Join(raster.IconNames(), ", "))
	fmt.Fprintf(out, "条码格式: %s\n", strings.Join(raster.Formats(), ", "))
}

// run 串联解析、布局、渲染与输出。
func run(cfg config) error {
	file, err := os.Open(cfg.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", cfg.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}
	header, err := dsl.Header(doc)
	if err != nil {
		return err
	}

	catalog, err := media.Default()
	if err != nil {
		return err
	}
	m, err := catalog.Lookup(firstNonEmpty(cfg.media, header.Media))
	if err != nil {
		return err
	}
	res, err := catalog.LookupResolution(firstNonEmpty(cfg.resolution, header.Resolution))
	if err != nil {
		return err
	}

	lbl, err := dsl.Items(doc, dsl.Resolution{FeedDotsPerMM: res.FeedDotsPerMM(), CrossDotsPerMM: res.CrossDotsPerMM()})
	if err != nil {
		return fmt.Errorf("转换条目失败: %w", err)
	}
	values := lbl.Values
	if values == nil {
		values = map[string]any{}
	}
	for k, v := range cfg.data {
		values[k] = v
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	e := engine.New(lbl.Items, engine.Options{
		Media:          m,
		Resolution:     res,
		Orientation:    lbl.Orientation,
		ManualLengthMM: lbl.LengthMM,
		Values:         values,
		BaseDir:        filepath.Dir(cfg.input),
		Logger:         slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
	})
	for _, name := range e.UnboundVariables() {
		log.Printf("警告: 模板变量 ${%s} 未提供值，将原样输出", name)
	}
	if err := e.Render(); err != nil {
		return err
	}
	result := e.Result()

	if err := os.MkdirAll(cfg.outDir, 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := writePNG(filepath.Join(cfg.outDir, "print.png"), result.PrintCanvas); err != nil {
		return err
	}
	if err := writePNG(filepath.Join(cfg.outDir, "preview.png"), result.PreviewCanvas); err != nil {
		return err
	}

	if cfg.debugPath != "" {
		if err := ensureDir(cfg.debugPath); err != nil {
			return err
		}
		if err := layout.WriteDebugJSON(result.Plan, cfg.debugPath); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	if cfg.rulerPath != "" {
		if err := writeRuler(e, result, cfg.rulerPath); err != nil {
			return err
		}
	}
	if cfg.pdfPath != "" {
		if err := writePDF(result, res, lbl.Name, cfg.pdfPath); err != nil {
			return err
		}
	}
	return nil
}

func writeRuler(e *engine.Engine, result *engine.Result, path string) error {
	opts, err := e.RulerOptions(float64(result.Plan.Length), 0)
	if err != nil {
		return err
	}
	family, err := fonts.NewFamily(fonts.Sans)
	if err != nil {
		return err
	}
	return writePNG(path, ruler.Render(opts, family))
}

func writePDF(result *engine.Result, res media.Resolution, title, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 PDF 文件失败: %w", err)
	}
	defer f.Close()
	return canvasrenderer.WritePDF(f, result.PrintCanvas, canvasrenderer.PDFOptions{
		FeedDotsPerMM:  res.FeedDotsPerMM(),
		CrossDotsPerMM: res.CrossDotsPerMM(),
		Title:          title,
		Creator:        "labelcanvas",
	})
}

func writePNG(path string, img image.Image) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建 %s 失败: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("写入 %s 失败: %w", path, err)
	}
	return f.Close()
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
