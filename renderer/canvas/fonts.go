package canvasrenderer

import (
	"cmp"
	"errors"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/fitbox/fonts"
	"github.com/ByLCY/fitbox/layout"
)

// fallbackFamily 是字体缺失或仍在加载时使用的内置字体族。
const fallbackFamily = "fitbox-fallback"

// fontCache 按字体资源缓存 canvas 字体族。canvas 的字体面不保证并发安全，
// 所有度量与绘制都经由 withFace 串行执行。
type fontCache struct {
	baseDir string

	mu       sync.Mutex
	source   fonts.Source
	families map[string]loadedFamily

	faceMu sync.Mutex
}

type loadedFamily struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

func newFontCache(baseDir string, source fonts.Source) *fontCache {
	if source == nil {
		source = fonts.Direct{}
	}
	return &fontCache{baseDir: baseDir, source: source, families: map[string]loadedFamily{}}
}

// use 切换字体来源并清空缓存。
func (c *fontCache) use(source fonts.Source) {
	if source == nil {
		source = fonts.Direct{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = source
	c.families = map[string]loadedFamily{}
}

// withFace 以 px 字号构造字体面并在持锁状态下调用 fn。
func (c *fontCache) withFace(font layout.FontResource, sizePx float64, col layout.Color, fn func(*canvas.FontFace) error) error {
	lf, err := c.family(font)
	if err != nil {
		return err
	}
	c.faceMu.Lock()
	defer c.faceMu.Unlock()
	face := lf.family.Face(sizePx*layout.PxToPt, toColor(col), lf.style, canvas.FontNormal)
	return fn(face)
}

// family 依次尝试 src、fallback 与内置默认字体。前两者的失败只在全部失败时返回。
// 排在前面的来源仍在加载时，得到的字体族不进缓存，加载完成后重新解析。
func (c *fontCache) family(font layout.FontResource) (loadedFamily, error) {
	key := font.Name + "|" + font.Src + "|" + font.Style
	c.mu.Lock()
	defer c.mu.Unlock()
	if lf, ok := c.families[key]; ok {
		return lf, nil
	}

	style := parseFontStyle(font.Style)
	name := cmp.Or(font.Family, font.Name, layout.DefaultFontName)
	var firstErr error
	pending := false
	for _, src := range []string{font.Src, font.Fallback} {
		if src == "" {
			continue
		}
		family, err := c.load(name, src, style)
		if errors.Is(err, fonts.ErrPending) {
			pending = true
			continue
		}
		if err != nil {
			firstErr = cmp.Or(firstErr, err)
			continue
		}
		return c.keep(key, loadedFamily{family: family, style: style}, pending), nil
	}

	family, err := c.load(fallbackFamily, fonts.DefaultBuiltin, canvas.FontRegular)
	if err != nil {
		if firstErr != nil {
			return loadedFamily{}, firstErr
		}
		return loadedFamily{}, err
	}
	return c.keep(key, loadedFamily{family: family, style: canvas.FontRegular}, pending), nil
}

func (c *fontCache) keep(key string, lf loadedFamily, pending bool) loadedFamily {
	if !pending {
		c.families[key] = lf
	}
	return lf
}

func (c *fontCache) load(name, src string, style canvas.FontStyle) (*canvas.FontFamily, error) {
	data, err := c.source.Fetch(fonts.Resolve(src, c.baseDir))
	if err != nil {
		return nil, err
	}
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, style); err != nil {
		return nil, err
	}
	return family, nil
}

// 关键字按优先级排列：extrabold 需先于 bold 判断。
var fontWeights = []struct {
	keyword string
	style   canvas.FontStyle
}{
	{"black", canvas.FontBlack},
	{"extrabold", canvas.FontExtraBold},
	{"semibold", canvas.FontSemiBold},
	{"demibold", canvas.FontSemiBold},
	{"bold", canvas.FontBold},
	{"medium", canvas.FontMedium},
	{"light", canvas.FontLight},
}

func parseFontStyle(style string) canvas.FontStyle {
	s := strings.ToLower(style)
	result := canvas.FontRegular
	for _, w := range fontWeights {
		if strings.Contains(s, w.keyword) {
			result = w.style
			break
		}
	}
	if strings.Contains(s, "italic") || strings.Contains(s, "oblique") {
		result |= canvas.FontItalic
	}
	return result
}
