package canvasrenderer

import (
	"image/color"
	"strings"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/fitbox/layout"
)

// 边框线宽（px）。
const frameBorderWidth = 1.0

var transparent = color.RGBA{}

func (r *Renderer) draw(ctx *canvas.Context, result *layout.Result) error {
	ctx.SetCoordSystem(canvas.CartesianIV) // 左上角为原点，与布局一致

	if bg := result.Canvas.Background; bg != nil {
		drawRect(ctx, 0, 0, result.Canvas.Width, result.Canvas.Height, bg, nil)
	}
	for _, frame := range result.Frames {
		if frame.Background != nil || frame.Border != nil {
			drawRect(ctx, frame.X, frame.Y, frame.Width, frame.Height, frame.Background, frame.Border)
		}
		for _, tb := range frame.Texts {
			if err := r.drawText(ctx, tb, fontFor(tb.Font, result.Resources)); err != nil {
				return err
			}
		}
	}
	return nil
}

func drawRect(ctx *canvas.Context, x, y, w, h float64, fill, stroke *layout.Color) {
	ctx.SetFillColor(transparent)
	if fill != nil {
		ctx.SetFillColor(toColor(*fill))
	}
	ctx.SetStrokeColor(transparent)
	ctx.SetStrokeWidth(0)
	if stroke != nil {
		ctx.SetStrokeColor(toColor(*stroke))
		ctx.SetStrokeWidth(toMm(frameBorderWidth))
	}
	ctx.DrawPath(toMm(x), toMm(y), canvas.Rectangle(toMm(w), toMm(h)))
}

// anchor 返回对齐方式对应的 canvas 对齐值与锚点横坐标（px）。
func anchor(tb layout.TextBox) (canvas.TextAlign, float64) {
	switch strings.ToLower(tb.Align) {
	case "center":
		return canvas.Center, tb.X + tb.Width/2
	case "right", "end":
		return canvas.Right, tb.X + tb.Width
	default:
		return canvas.Left, tb.X
	}
}

func (r *Renderer) drawText(ctx *canvas.Context, tb layout.TextBox, font layout.FontResource) error {
	lines := tb.Lines
	if len(lines) == 0 {
		lines = []layout.TextLine{{Content: tb.Content, Width: tb.Width, Height: tb.LineHeight}}
	}
	align, x := anchor(tb)

	return r.fonts.withFace(font, tb.FontSize, tb.Color, func(face *canvas.FontFace) error {
		ascent := face.Metrics().Ascent // mm
		y := tb.Y
		for _, line := range lines {
			y += line.GapBefore
			ctx.DrawText(toMm(x), toMm(y)+ascent, canvas.NewTextLine(face, line.Content, align))
			if line.Height > 0 {
				y += line.Height
			} else {
				y += tb.LineHeight
			}
		}
		return nil
	})
}

// fontFor 按名称取字体资源，找不到时退回默认字体。
func fontFor(name string, res layout.ResourceSet) layout.FontResource {
	if f, ok := res.Fonts[name]; ok {
		return f
	}
	return res.Fonts[layout.DefaultFontName]
}

func toColor(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, 1)
}
