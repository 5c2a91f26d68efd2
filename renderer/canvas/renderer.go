// Package canvasrenderer 基于 github.com/tdewolff/canvas 排版并输出 PDF、SVG 或 PNG。
package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"

	"github.com/ByLCY/fitbox/fonts"
	"github.com/ByLCY/fitbox/layout"
	"github.com/ByLCY/fitbox/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas. It is also a
// layout.Typesetter, so the sizes chosen by fitting match what gets drawn.
type Renderer struct {
	format renderer.Format
	fonts  *fontCache
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	// BaseDir resolves relative font paths, usually the scene file's directory.
	BaseDir string
	// Format selects the output; empty means PDF.
	Format renderer.Format
	// Fonts supplies font data; nil reads fonts synchronously.
	Fonts fonts.Source
}

// NewRenderer creates a PDF renderer rooted at baseDir for resolving assets.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with the given options.
func NewRendererWithOptions(opts Options) *Renderer {
	format := opts.Format
	if format == "" {
		format = renderer.FormatPDF
	}
	return &Renderer{format: format, fonts: newFontCache(opts.BaseDir, opts.Fonts)}
}

// UseFonts switches the font source, e.g. to the loader of a freshly built
// scene, and drops every cached family.
func (r *Renderer) UseFonts(src fonts.Source) { r.fonts.use(src) }

// Format returns the configured output format.
func (r *Renderer) Format() renderer.Format { return r.format }

// Render 将快照绘制到画布并编码为配置的格式。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if result.Canvas.Width <= 0 || result.Canvas.Height <= 0 {
		return nil, fmt.Errorf("画布尺寸无效: %vx%v", result.Canvas.Width, result.Canvas.Height)
	}

	c := canvas.New(toMm(result.Canvas.Width), toMm(result.Canvas.Height))
	if err := r.draw(canvas.NewContext(c), result); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := r.encode(&buf, c, result.Meta); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) encode(buf *bytes.Buffer, c *canvas.Canvas, meta layout.DocumentMeta) error {
	switch r.format {
	case renderer.FormatSVG:
		w := svg.New(buf, c.W, c.H, nil)
		c.RenderTo(w)
		if err := w.Close(); err != nil {
			return fmt.Errorf("写入 SVG 失败: %w", err)
		}
	case renderer.FormatPNG:
		// 1 个输出像素对应 1 个布局 px
		img := rasterizer.Draw(c, canvas.DPMM(layout.MmToPx), canvas.DefaultColorSpace)
		if err := png.Encode(buf, img); err != nil {
			return fmt.Errorf("写入 PNG 失败: %w", err)
		}
	default:
		w := pdf.New(buf, c.W, c.H, nil)
		w.SetInfo(meta.Title, meta.Subject, strings.Join(meta.Keywords, ", "), meta.Author, meta.Creator)
		c.RenderTo(w)
		if err := w.Close(); err != nil {
			return fmt.Errorf("写入 PDF 失败: %w", err)
		}
	}
	return nil
}

// toMm 将 px 转换为画布使用的毫米。
func toMm(px float64) float64 { return px * layout.PxToMm }

// toPx 将画布毫米转换为 px。
func toPx(mm float64) float64 { return mm * layout.MmToPx }
