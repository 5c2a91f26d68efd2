// Package shaping is a layout.Typesetter backed by go-text/typesetting's
// HarfBuzz port. Advances include kerning and ligatures, so it measures
// closer to what a browser would than the canvas renderer's per-glyph widths.
package shaping

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	hb "github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/fitbox/fonts"
	"github.com/ByLCY/fitbox/layout"
)

// Typesetter shapes text with HarfBuzz and reads line metrics through
// golang.org/x/image. It is safe for concurrent use.
type Typesetter struct {
	baseDir string

	// shaperPool pools HarfbuzzShaper instances; they are not safe for
	// concurrent use.
	shaperPool sync.Pool

	mu     sync.RWMutex
	source fonts.Source
	cache  map[string]*loadedFont
}

type loadedFont struct {
	shape *font.Font // read-only, shared across goroutines
	sfnt  *sfnt.Font
}

var _ layout.Typesetter = (*Typesetter)(nil)

// New returns a Typesetter resolving relative font paths against baseDir.
func New(baseDir string) *Typesetter {
	return &Typesetter{
		baseDir: baseDir,
		shaperPool: sync.Pool{
			New: func() any { return &hb.HarfbuzzShaper{} },
		},
		source: fonts.Direct{},
		cache:  make(map[string]*loadedFont),
	}
}

// UseFonts switches the font source and drops cached fonts. While a source
// reports fonts.ErrPending, text is measured with the built-in default font.
func (t *Typesetter) UseFonts(src fonts.Source) {
	if src == nil {
		src = fonts.Direct{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.source = src
	t.cache = make(map[string]*loadedFont)
}

// LayoutLines implements layout.Typesetter. All lengths are pixels.
func (t *Typesetter) LayoutLines(content string, width float64, res layout.FontResource, fontSize, lineHeight float64, wrap string) ([]layout.TextLine, error) {
	f, err := t.load(res)
	if err != nil {
		return nil, err
	}
	face := font.NewFace(f.shape)
	measure := func(s string) float64 { return t.advance(face, s, fontSize) }
	lines := layout.WrapLines(content, width, measure, wrap)

	textHeight, err := lineMetric(f.sfnt, fontSize)
	if err != nil || textHeight <= 0 {
		textHeight = lineHeight
	}
	leading := math.Max(lineHeight-textHeight, 0)
	for i := range lines {
		lines[i].Height = textHeight
		if i > 0 {
			lines[i].GapBefore = leading
		}
	}
	return lines, nil
}

// Advance returns the shaped width of s in pixels at fontSize.
func (t *Typesetter) Advance(res layout.FontResource, s string, fontSize float64) (float64, error) {
	f, err := t.load(res)
	if err != nil {
		return 0, err
	}
	return t.advance(font.NewFace(f.shape), s, fontSize), nil
}

func (t *Typesetter) advance(face *font.Face, s string, fontSize float64) float64 {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}
	input := hb.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      face,
		Size:      fixed.Int26_6(fontSize * 64),
		Script:    detectScript(runes),
		Language:  language.NewLanguage("en"),
	}
	shaper := t.shaperPool.Get().(*hb.HarfbuzzShaper)
	out := shaper.Shape(input)
	t.shaperPool.Put(shaper)

	var total fixed.Int26_6
	for _, g := range out.Glyphs {
		total += g.Advance
	}
	return float64(total) / 64
}

func (t *Typesetter) load(res layout.FontResource) (*loadedFont, error) {
	src := fonts.Resolve(res.Src, t.baseDir)
	if src == "" {
		src = fonts.DefaultBuiltin
	}

	t.mu.RLock()
	f, ok := t.cache[src]
	t.mu.RUnlock()
	if ok {
		return f, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if f, ok := t.cache[src]; ok {
		return f, nil
	}
	data, err := t.source.Fetch(src)
	pending := errors.Is(err, fonts.ErrPending)
	if err != nil && res.Fallback != "" {
		data, err = t.source.Fetch(fonts.Resolve(res.Fallback, t.baseDir))
		pending = pending || errors.Is(err, fonts.ErrPending)
	}
	if errors.Is(err, fonts.ErrPending) {
		data, err = fonts.Load(fonts.DefaultBuiltin)
	}
	if err != nil {
		return nil, err
	}
	f, err = parseFont(src, data)
	if err != nil {
		return nil, err
	}
	// 仍在加载的字体以内置字体代替，不进缓存
	if !pending {
		t.cache[src] = f
	}
	return f, nil
}

func parseFont(src string, data []byte) (*loadedFont, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", src, err)
	}
	return &loadedFont{shape: face.Font, sfnt: parsed}, nil
}

// lineMetric returns the font's recommended line height in pixels.
func lineMetric(f *sfnt.Font, fontSize float64) (float64, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: xfont.HintingNone,
	})
	if err != nil {
		return 0, err
	}
	defer func() { _ = face.Close() }()
	return float64(face.Metrics().Height) / 64, nil
}

func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
