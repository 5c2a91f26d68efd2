package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths. The canonical
// unit of the layout model is the CSS pixel (1px = 1/96in).

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitPX               // CSS pixels
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between px, pt and mm.
const (
	PxPerIn = 96.0
	PtToPx  = PxPerIn / 72.0
	PxToPt  = 1.0 / PtToPx
	MmToPx  = PxPerIn / 25.4
	PxToMm  = 1.0 / MmToPx
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// ToPX converts the length to pixels. Unit-less values are taken as pixels.
func (l Length) ToPX() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value * MmToPx
	case UnitCM:
		return l.Value * 10 * MmToPx
	case UnitIN:
		return l.Value * PxPerIn
	case UnitPT:
		return l.Value * PtToPx
	default:
		return l.Value
	}
}

// ParseLength parses a DSL length string preserving its unit.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// parsePX is ParseLength(value).ToPX() with 0 for malformed input.
func parsePX(value string) float64 {
	l, ok := ParseLength(value)
	if !ok {
		return 0
	}
	return l.ToPX()
}

// parseDimension resolves percentages against reference.
func parseDimension(value string, reference float64) float64 {
	value = strings.TrimSpace(value)
	if strings.HasSuffix(value, "%") {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(value, "%"), 64); err == nil {
			return reference * f / 100
		}
		return 0
	}
	return parsePX(value)
}

// Edges holds per-side lengths in pixels.
type Edges struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

func (e Edges) Horizontal() float64 { return e.Left + e.Right }
func (e Edges) Vertical() float64   { return e.Top + e.Bottom }

// parseEdges applies CSS shorthand semantics to 1-4 space separated lengths:
// 1 value: all sides; 2: vertical/horizontal; 3: top/horizontal/bottom;
// 4: top/right/bottom/left.
func parseEdges(value string) Edges {
	var vals []float64
	for _, f := range strings.Fields(value) {
		l, ok := ParseLength(f)
		if !ok {
			break
		}
		vals = append(vals, l.ToPX())
		if len(vals) == 4 {
			break
		}
	}
	switch len(vals) {
	case 1:
		v := vals[0]
		return Edges{Top: v, Right: v, Bottom: v, Left: v}
	case 2:
		return Edges{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
	case 3:
		return Edges{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
	case 4:
		return Edges{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
	default:
		return Edges{}
	}
}

// LineHeightKind 区分倍数行高与绝对行高。
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves author intent: either a factor (e.g., 1.2x) or
// an absolute length (e.g., 18px). Factors follow the font size through
// every candidate size; absolute values do not.
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// DefaultLineHeight is the line-height used when none is given.
var DefaultLineHeight = LineHeightSpec{Kind: LineHeightFactor, Factor: 1.2}

// Resolve computes the absolute line height in pixels for fontSize pixels.
func (s LineHeightSpec) Resolve(fontSize float64) float64 {
	switch s.Kind {
	case LineHeightAbsolute:
		return s.Len.ToPX()
	default:
		if s.Factor <= 0 {
			return fontSize * DefaultLineHeight.Factor
		}
		return fontSize * s.Factor
	}
}

// parseLineHeight accepts "1.4x", "1.4" (factor) or an absolute length.
func parseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return LineHeightSpec{}, false
	}
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil {
		if f <= 0 {
			return LineHeightSpec{}, false
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l, ok := ParseLength(v)
	if !ok || l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}

// Add returns the per-side sum of e and o.
func (e Edges) Add(o Edges) Edges {
	return Edges{Top: e.Top + o.Top, Right: e.Right + o.Right, Bottom: e.Bottom + o.Bottom, Left: e.Left + o.Left}
}

// uniformEdges returns v on every side.
func uniformEdges(v float64) Edges { return Edges{Top: v, Right: v, Bottom: v, Left: v} }
