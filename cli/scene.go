package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ByLCY/fitbox/binding"
	"github.com/ByLCY/fitbox/config"
	"github.com/ByLCY/fitbox/dsl"
	"github.com/ByLCY/fitbox/fonts"
	"github.com/ByLCY/fitbox/layout"
	"github.com/ByLCY/fitbox/renderer"
	canvasrenderer "github.com/ByLCY/fitbox/renderer/canvas"
	"github.com/ByLCY/fitbox/renderer/shaping"
)

// pipeline 串联解析、布局与渲染，render 与 watch 共用。
type pipeline struct {
	input   string
	baseDir string
	data    any
	cfg     config.Config

	render *canvasrenderer.Renderer
	ts     layout.Typesetter

	loadFonts func(srcs []string) *fonts.Loader
}

func newPipeline(input, dataJSON string, format renderer.Format, cfg config.Config) (*pipeline, error) {
	if input == "" {
		return nil, fmt.Errorf("缺少场景文件 (-i)")
	}
	data, err := binding.Decode([]byte(dataJSON))
	if err != nil {
		return nil, err
	}
	baseDir := filepath.Dir(input)
	r := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{BaseDir: baseDir, Format: format})
	ts, err := newTypesetter(cfg.Render.Shaper, baseDir, r)
	if err != nil {
		return nil, err
	}
	return &pipeline{
		input:     input,
		baseDir:   baseDir,
		data:      data,
		cfg:       cfg,
		render:    r,
		ts:        ts,
		loadFonts: fonts.LoadAsync,
	}, nil
}

// newTypesetter 按配置选择排版后端。canvas 渲染器本身即可排版。
func newTypesetter(shaper, baseDir string, r *canvasrenderer.Renderer) (layout.Typesetter, error) {
	switch strings.ToLower(shaper) {
	case "", "canvas":
		return r, nil
	case "gotext":
		return shaping.New(baseDir), nil
	case "estimate":
		return layout.EstimateTypesetter{}, nil
	default:
		return nil, fmt.Errorf("未知的排版后端 %q（可选 canvas/gotext/estimate）", shaper)
	}
}

// build 解析场景、在后台加载字体并构建文档。文档的字体就绪信号来自加载器；
// 排版后端在调用 useFonts 之后才从该加载器读取字体。
func (p *pipeline) build() (*layout.Document, *fonts.Loader, error) {
	ast, err := dsl.ParseFile(p.input)
	if err != nil {
		return nil, nil, err
	}
	srcs, err := layout.FontSources(ast, p.baseDir)
	if err != nil {
		return nil, nil, err
	}
	loader := p.loadFonts(srcs)
	doc, err := layout.Build(ast, layout.BuildOptions{
		Typesetter: p.ts,
		Data:       p.data,
		FontsReady: loader.Ready(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("布局计算失败: %w", err)
	}
	return doc, loader, nil
}

// useFonts 让渲染器与排版后端改由 src 提供字体，加载完成前以内置字体排版。
func (p *pipeline) useFonts(src fonts.Source) {
	p.render.UseFonts(src)
	if s, ok := p.ts.(*shaping.Typesetter); ok {
		s.UseFonts(src)
	}
}

// write 渲染当前快照并写出文件，debugPath 非空时同时输出调试 JSON。
func (p *pipeline) write(doc *layout.Document, out, debugPath string) error {
	result, err := doc.Snapshot()
	if err != nil {
		return fmt.Errorf("生成快照失败: %w", err)
	}
	if debugPath != "" {
		if err := layout.WriteDebugJSON(result, debugPath); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}
	data, err := p.render.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	return nil
}

// resolveFormat 依次取 --format、输出文件扩展名、配置文件中的格式。
func resolveFormat(flag, out, configured string) (renderer.Format, error) {
	if flag != "" {
		return renderer.ParseFormat(flag)
	}
	fallback, err := renderer.ParseFormat(configured)
	if err != nil {
		return "", err
	}
	if out == "" {
		return fallback, nil
	}
	return renderer.FormatFromPath(out, fallback), nil
}

// outputPath 在未指定输出时，用场景文件名加格式扩展名。
func outputPath(input, out string, format renderer.Format) string {
	if out != "" {
		return out
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "." + string(format)
}
