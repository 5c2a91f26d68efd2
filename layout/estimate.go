package layout

import "unicode/utf8"

// EstimateTypesetter 在没有字体时按固定字宽估算排版：每个字符前进
// Advance×fontSize，行高取 lineHeight。结果确定，适合测试与降级场景。
type EstimateTypesetter struct {
	// Advance 为字宽与字号之比，<=0 时取 0.55。
	Advance float64
}

var _ Typesetter = EstimateTypesetter{}

// LayoutLines 实现 Typesetter。
func (e EstimateTypesetter) LayoutLines(content string, width float64, _ FontResource, fontSize, lineHeight float64, wrap string) ([]TextLine, error) {
	advance := e.Advance
	if advance <= 0 {
		advance = 0.55
	}
	measure := func(s string) float64 {
		return float64(utf8.RuneCountInString(s)) * advance * fontSize
	}
	lines := WrapLines(content, width, measure, wrap)
	if lineHeight <= 0 {
		lineHeight = fontSize
	}
	for i := range lines {
		lines[i].Height = lineHeight
	}
	return lines, nil
}
