package canvasrenderer

import (
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/fitbox/layout"
)

var measureInk = layout.Color{R: 30, G: 30, B: 30}

// LayoutLines 实现 layout.Typesetter，使用 layout.WrapLines 贪心换行。
// 入参与返回值均为 px；字体系统使用 pt，画布使用 mm，在边界处换算。
func (r *Renderer) LayoutLines(content string, width float64, font layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	var lines []layout.TextLine
	err := r.fonts.withFace(font, fontSize, measureInk, func(face *canvas.FontFace) error {
		lines = layout.WrapLines(content, width, func(s string) float64 {
			return toPx(face.TextWidth(s))
		}, wrap)

		textHeight := toPx(face.Metrics().LineHeight)
		if textHeight <= 0 {
			textHeight = lineHeight
		}
		// 行高超出字体自身行高的部分作为行间距
		leading := max(lineHeight-textHeight, 0)
		for i := range lines {
			lines[i].Height = textHeight
			if i > 0 {
				lines[i].GapBefore = leading
			}
		}
		return nil
	})
	return lines, err
}
