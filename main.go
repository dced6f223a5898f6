package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ByLCY/boxform/binding"
	"github.com/ByLCY/boxform/config"
	"github.com/ByLCY/boxform/fonts"
	"github.com/ByLCY/boxform/form"
	"github.com/ByLCY/boxform/layout"
	"github.com/ByLCY/boxform/renderer"
	canvasrenderer "github.com/ByLCY/boxform/renderer/canvas"
)

// 连续的文件事件在该时间窗口内合并为一次重建。
const rebuildDebounce = 150 * time.Millisecond

type runOptions struct {
	Input      string
	Output     string
	Debug      string
	ConfigPath string
	DataPath   string
	Data       any
	Width      float64
	Height     float64
	Logger     *slog.Logger
}

func main() {
	input := flag.String("in", "examples/demo.form", "DSL 文件路径")
	output := flag.String("out", "output/demo.pdf", "PDF 预览输出路径，为空时不渲染")
	debug := flag.String("debug", "", "布局调试 JSON 输出路径")
	configPath := flag.String("config", "", "YAML 配置文件路径")
	dataJSON := flag.String("data", "", "绑定到 DSL 的 JSON 数据，不能与 -data-file 同时使用")
	dataFile := flag.String("data-file", "", "绑定到 DSL 的 JSON 数据文件，不能与 -data 同时使用")
	width := flag.Float64("width", 0, "覆盖配置中的边界宽度（px）")
	height := flag.Float64("height", 0, "覆盖配置中的边界高度（px）")
	font := flag.String("font", "", "标签字体：文件路径或 system:<名称>")
	watch := flag.Bool("watch", false, "监听输入文件变化并自动重建")
	verbose := flag.Bool("v", false, "输出布局调试日志")
	flag.Parse()

	opts := runOptions{
		Input:      *input,
		Output:     *output,
		Debug:      *debug,
		ConfigPath: *configPath,
		DataPath:   *dataFile,
		Width:      *width,
		Height:     *height,
	}
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &opts.Data); err != nil {
			log.Fatalf("解析 data JSON 失败: %v", err)
		}
	}
	if *verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	r := canvasrenderer.NewRenderer(canvasrenderer.Options{
		Font:    fonts.Parse(*font),
		Title:   filepath.Base(*input),
		Creator: "boxform",
	})

	if !*watch {
		if err := run(opts, r); err != nil {
			log.Fatalf("生成预览失败: %v", err)
		}
		report(opts, r)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := watchAndRun(ctx, opts, r); err != nil {
		log.Fatalf("监听失败: %v", err)
	}
}

func report(opts runOptions, r *canvasrenderer.Renderer) {
	if opts.Output != "" {
		fmt.Printf("已生成 PDF：%s\n", opts.Output)
		if err := r.FontError(); err != nil && !errors.Is(err, fonts.ErrNoSource) {
			log.Printf("标签字体不可用，预览中省略标签: %v", err)
		}
	}
	if opts.Debug != "" {
		fmt.Printf("已输出布局 JSON：%s\n", opts.Debug)
	}
}

// run 串联配置、解析、布局与渲染。
func run(opts runOptions, r renderer.Renderer) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	if opts.Width > 0 {
		cfg.Bounds.X = opts.Width
	}
	if opts.Height > 0 {
		cfg.Bounds.Y = opts.Height
	}

	data := opts.Data
	if data != nil && opts.DataPath != "" {
		return fmt.Errorf("-data 与 -data-file 不能同时使用")
	}
	if opts.DataPath != "" {
		if data, err = binding.LoadFile(opts.DataPath); err != nil {
			return err
		}
	}

	f, err := form.Load(opts.Input, form.Options{Config: cfg, Data: data, Logger: opts.Logger})
	if err != nil {
		return err
	}
	result := f.Snapshot()

	if opts.Debug != "" {
		if err := writeDebug(result, opts.Debug); err != nil {
			return err
		}
	}
	if opts.Output == "" {
		return nil
	}
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(opts.Output), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(opts.Output, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

// watchedFiles 返回需要监听的输入文件（DSL、配置、数据）。
func watchedFiles(opts runOptions) map[string]bool {
	files := map[string]bool{}
	for _, p := range []string{opts.Input, opts.ConfigPath, opts.DataPath} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			files[abs] = true
		}
	}
	return files
}

// watchAndRun 先构建一次，然后在输入文件变化时重建，直到 ctx 结束。
// 监听的是所在目录，编辑器以重命名方式保存文件时也能收到事件。
func watchAndRun(ctx context.Context, opts runOptions, r *canvasrenderer.Renderer) error {
	rebuild := func() {
		if err := run(opts, r); err != nil {
			log.Printf("重建失败: %v", err)
			return
		}
		report(opts, r)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	files := watchedFiles(opts)
	dirs := map[string]bool{}
	for f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			return fmt.Errorf("监听目录 %s 失败: %w", d, err)
		}
	}

	rebuild()
	log.Printf("正在监听 %d 个文件，Ctrl+C 退出", len(files))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(ev, files) {
				continue
			}
			pending = time.After(rebuildDebounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("监听出错: %v", err)
		case <-pending:
			pending = nil
			rebuild()
		}
	}
}

func relevant(ev fsnotify.Event, files map[string]bool) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return files[abs]
}
