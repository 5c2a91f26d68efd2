package layout

import (
	"math"
	"strings"
	"unicode"
)

// 折行策略。
const (
	WrapAnywhere  = "anywhere"   // 优先在空白处断行，单词超宽时在词内拆分（默认）
	WrapBreakWord = "break-word" // 忽略空白机会，纯按宽度逐字符拆分
	WrapNowrap    = "nowrap"     // 仅按显式换行划分
)

// NormalizeWrap 将 DSL 中的各种写法归一为上面三种策略之一。
func NormalizeWrap(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "break-word", "word-break:break-word":
		return WrapBreakWord
	case "nowrap", "no-wrap", "pre":
		return WrapNowrap
	default:
		return WrapAnywhere
	}
}

// MeasureFunc 返回一段文本的前进宽度（px）。
type MeasureFunc func(s string) float64

// WrapLines 是贪心换行算法，供各 Typesetter 实现共用。返回的行只填充
// Content 与 Width，行高由调用方回填。width <= 0 表示不限宽度。
func WrapLines(content string, width float64, measure MeasureFunc, wrap string) []TextLine {
	limit := width
	if limit <= 0 {
		limit = math.MaxFloat64
	}

	switch NormalizeWrap(wrap) {
	case WrapNowrap:
		parts := strings.Split(strings.ReplaceAll(content, "\r", ""), "\n")
		lines := make([]TextLine, 0, len(parts))
		for _, p := range parts {
			lines = append(lines, TextLine{Content: p, Width: measure(p)})
		}
		return lines
	case WrapBreakWord:
		return wrapRunes(content, limit, measure)
	default:
		return wrapTokens(content, limit, measure)
	}
}

type lineBuilder struct {
	lines   []TextLine
	builder strings.Builder
	width   float64
}

func (b *lineBuilder) emit(force bool) {
	if b.builder.Len() == 0 {
		if force {
			b.lines = append(b.lines, TextLine{})
		}
		return
	}
	b.lines = append(b.lines, TextLine{Content: b.builder.String(), Width: b.width})
	b.builder.Reset()
	b.width = 0
}

func (b *lineBuilder) add(s string, w float64) {
	b.builder.WriteString(s)
	b.width += w
}

func wrapRunes(content string, limit float64, measure MeasureFunc) []TextLine {
	var b lineBuilder
	for _, r := range content {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			b.emit(true)
			continue
		}
		s := string(r)
		cw := measure(s)
		if b.width > 0 && b.width+cw > limit {
			b.emit(false)
		}
		b.add(s, cw)
	}
	b.emit(true)
	return b.lines
}

func wrapTokens(content string, limit float64, measure MeasureFunc) []TextLine {
	var b lineBuilder
	for _, token := range tokenize(content) {
		if token == "\n" {
			b.emit(true)
			continue
		}
		tw := measure(token)
		if b.width > 0 && b.width+tw > limit {
			b.emit(false)
			// 行首空白不占宽度
			if strings.TrimSpace(token) == "" {
				continue
			}
		}
		if tw <= limit {
			b.add(token, tw)
			continue
		}
		for _, chunk := range splitByWidth(token, limit, measure) {
			cw := measure(chunk)
			if b.width > 0 && b.width+cw > limit {
				b.emit(false)
			}
			b.add(chunk, cw)
		}
	}
	b.emit(true)
	return b.lines
}

// tokenize 将文本切成交替的空白/非空白片段，显式换行单独成为 "\n"。
func tokenize(s string) []string {
	var tokens []string
	var builder strings.Builder
	lastWasSpace := false
	flush := func() {
		if builder.Len() == 0 {
			return
		}
		tokens = append(tokens, builder.String())
		builder.Reset()
	}

	for _, r := range s {
		if r == '\r' {
			continue
		}
		if r == '\n' {
			flush()
			tokens = append(tokens, "\n")
			lastWasSpace = false
			continue
		}
		isSpace := unicode.IsSpace(r)
		if builder.Len() == 0 {
			lastWasSpace = isSpace
		} else if lastWasSpace != isSpace {
			flush()
			lastWasSpace = isSpace
		}
		builder.WriteRune(r)
	}
	flush()
	return tokens
}

func splitByWidth(token string, limit float64, measure MeasureFunc) []string {
	if limit <= 0 || limit == math.MaxFloat64 {
		return []string{token}
	}
	var parts []string
	var current []rune
	for _, r := range token {
		current = append(current, r)
		if len(current) > 1 && measure(string(current)) > limit {
			parts = append(parts, string(current[:len(current)-1]))
			current = []rune{r}
		}
	}
	if len(current) > 0 {
		parts = append(parts, string(current))
	}
	return parts
}
