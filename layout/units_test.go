package layout

import (
	"math"
	"testing"
)

// TestPxConversionsRoundTrip 验证 px↔pt、px↔mm 换算的往返精度。
func TestPxConversionsRoundTrip(t *testing.T) {
	samples := []float64{0, 0.001, 1, 12, 14.4, 72, 96, 144, 1000}
	for _, px := range samples {
		if back := px * PxToPt * PtToPx; math.Abs(back-px) > 1e-9 {
			t.Fatalf("px→pt→px 往返误差过大: in=%g back=%g", px, back)
		}
		if back := px * PxToMm * MmToPx; math.Abs(back-px) > 1e-9 {
			t.Fatalf("px→mm→px 往返误差过大: in=%g back=%g", px, back)
		}
	}
}

func TestLengthToPX(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"12", 12},
		{"12px", 12},
		{"72pt", 96},
		{"1in", 96},
		{"25.4mm", 96},
		{"2.54cm", 96},
	}
	for _, c := range cases {
		l, ok := ParseLength(c.in)
		if !ok {
			t.Fatalf("ParseLength(%q) failed", c.in)
		}
		if got := l.ToPX(); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("%s → %gpx, want %g", c.in, got, c.want)
		}
	}
	if _, ok := ParseLength("wide"); ok {
		t.Fatalf("非数字长度应解析失败")
	}
}

func TestParseEdgesShorthand(t *testing.T) {
	cases := []struct {
		in   string
		want Edges
	}{
		{"4px", Edges{4, 4, 4, 4}},
		{"4px 8px", Edges{4, 8, 4, 8}},
		{"1 2 3", Edges{1, 2, 3, 2}},
		{"1 2 3 4", Edges{1, 2, 3, 4}},
		{"", Edges{}},
	}
	for _, c := range cases {
		if got := parseEdges(c.in); got != c.want {
			t.Fatalf("parseEdges(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestLineHeightResolve(t *testing.T) {
	spec, ok := parseLineHeight("1.5x")
	if !ok || spec.Resolve(20) != 30 {
		t.Fatalf("1.5x @20px 应为 30px，实际 %+v", spec)
	}
	spec, ok = parseLineHeight("18px")
	if !ok || spec.Resolve(40) != 18 {
		t.Fatalf("绝对行高不应随字号变化，实际 %+v", spec)
	}
	if got := DefaultLineHeight.Resolve(10); got != 12 {
		t.Fatalf("默认行高 1.2x @10px 应为 12，实际 %g", got)
	}
}
