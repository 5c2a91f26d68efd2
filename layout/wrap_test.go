package layout

import (
	"math"
	"testing"
)

func runeWidth(s string) float64 { return float64(len([]rune(s))) * 10 }

func lineContents(lines []TextLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.Content)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWrapLinesAnywhere(t *testing.T) {
	cases := []struct {
		in    string
		width float64
		want  []string
	}{
		{"hello world", 200, []string{"hello world"}},
		{"hello world", 60, []string{"hello ", "world"}},
		{"hello world", 50, []string{"hello", "world"}},
		{"abcdefgh", 30, []string{"abc", "def", "gh"}},
		{"one\ntwo", 200, []string{"one", "two"}},
		{"", 100, []string{""}},
		{"a\n\nb", 100, []string{"a", "", "b"}},
	}
	for _, c := range cases {
		got := lineContents(WrapLines(c.in, c.width, runeWidth, WrapAnywhere))
		if !equalStrings(got, c.want) {
			t.Fatalf("WrapLines(%q, %v) = %q，期望 %q", c.in, c.width, got, c.want)
		}
	}
}

func TestWrapLinesWidths(t *testing.T) {
	lines := WrapLines("hello world", 60, runeWidth, "")
	if len(lines) != 2 || lines[0].Width != 60 || lines[1].Width != 50 {
		t.Fatalf("行宽计算错误: %+v", lines)
	}
}

func TestWrapLinesBreakWord(t *testing.T) {
	got := lineContents(WrapLines("ab cd", 30, runeWidth, WrapBreakWord))
	if !equalStrings(got, []string{"ab ", "cd"}) {
		t.Fatalf("break-word 结果错误: %q", got)
	}
}

func TestWrapLinesNowrap(t *testing.T) {
	lines := WrapLines("a very long line\nnext", 10, runeWidth, "nowrap")
	if got := lineContents(lines); !equalStrings(got, []string{"a very long line", "next"}) {
		t.Fatalf("nowrap 结果错误: %q", got)
	}
	if lines[0].Width != 160 {
		t.Fatalf("nowrap 行宽应为自然宽度，实际 %v", lines[0].Width)
	}
}

func TestWrapLinesUnlimitedWidth(t *testing.T) {
	got := lineContents(WrapLines("hello world", 0, runeWidth, WrapAnywhere))
	if !equalStrings(got, []string{"hello world"}) {
		t.Fatalf("宽度为 0 时应视为不限宽: %q", got)
	}
}

func TestNormalizeWrap(t *testing.T) {
	cases := map[string]string{
		"":           WrapAnywhere,
		"anywhere":   WrapAnywhere,
		"Break-Word": WrapBreakWord,
		"no-wrap":    WrapNowrap,
		"pre":        WrapNowrap,
	}
	for in, want := range cases {
		if got := NormalizeWrap(in); got != want {
			t.Fatalf("NormalizeWrap(%q) = %q，期望 %q", in, got, want)
		}
	}
}

func TestEstimateTypesetter(t *testing.T) {
	lines, err := EstimateTypesetter{}.LayoutLines("Hello", 0, FontResource{}, 20, 24, "")
	if err != nil {
		t.Fatalf("排版失败: %v", err)
	}
	if len(lines) != 1 || math.Abs(lines[0].Width-55) > 1e-9 || lines[0].Height != 24 {
		t.Fatalf("估算结果错误: %+v", lines)
	}
}
