package layout

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/ByLCY/fitbox/dsl"
	"github.com/ByLCY/fitbox/fonts"
)

// DefaultFontName 是场景未声明字体时自动注册的字体名。
const DefaultFontName = "Body"

var defaultTextColor = Color{R: 30, G: 30, B: 30}

// collectResources 汇总 resources 段中的字体、颜色与样式，样式继承在此展开。
func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
	}
	declared := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil {
			continue
		}
		for _, cmd := range commands(section.Resources.Block) {
			if len(cmd.Args) == 0 {
				return res, fmt.Errorf("%s: %s 缺少名称", cmd.Pos, cmd.Name)
			}
			name := cmd.Args[0].Value
			switch cmd.Name {
			case "font":
				res.Fonts[name] = fontResource(name, cmd.Block)
			case "color":
				if len(cmd.Args) < 2 {
					return res, fmt.Errorf("%s: color %s 缺少取值", cmd.Pos, name)
				}
				c, err := parseColor(cmd.Args[len(cmd.Args)-1].Value)
				if err != nil {
					return res, fmt.Errorf("%s: color %s: %w", cmd.Pos, name, err)
				}
				res.Colors[name] = c
			case "style":
				declared[name] = styleResource(name, cmd)
			default:
				return res, fmt.Errorf("%s: 未知的资源类型 %s", cmd.Pos, cmd.Name)
			}
		}
	}

	if _, ok := res.Fonts[DefaultFontName]; !ok {
		res.Fonts[DefaultFontName] = fontResource(DefaultFontName, nil)
	}

	styles, err := flattenStyles(declared)
	if err != nil {
		return res, err
	}
	res.Styles = styles
	return res, nil
}

// FontSources 返回场景引用的全部字体来源（含 fallback 与默认字体），
// 相对路径按 baseDir 解析。结果去重并按字体名排序，可直接交给 fonts.LoadAsync。
func FontSources(doc *dsl.Document, baseDir string) ([]string, error) {
	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	add := func(src string) {
		if src == "" {
			return
		}
		src = fonts.Resolve(src, baseDir)
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(res.Fonts)) {
		f := res.Fonts[name]
		add(f.Src)
		add(f.Fallback)
	}
	return out, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{
		Title:   doc.Name,
		Creator: "fitbox",
	}
	fields := map[string]*string{
		"title":   &meta.Title,
		"author":  &meta.Author,
		"subject": &meta.Subject,
		"creator": &meta.Creator,
	}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			a := stmt.Assignment
			if a == nil {
				continue
			}
			key := strings.ToLower(a.Key)
			if field, ok := fields[key]; ok {
				*field = valueToString(a.Value)
			} else if key == "keywords" {
				meta.Keywords = valueList(a.Value)
			}
		}
	}
	return meta
}

func commands(block *dsl.Block) []*dsl.Command {
	if block == nil {
		return nil
	}
	var out []*dsl.Command
	for _, stmt := range block.Statements {
		if stmt.Command != nil {
			out = append(out, stmt.Command)
		}
	}
	return out
}

// fontResource 读取 `font Name { src: ... family: ... style: ... fallback: ... }`。
func fontResource(name string, block *dsl.Block) FontResource {
	a := blockAttrs(block)
	return FontResource{
		Name:     name,
		Src:      cmp.Or(a["src"], fonts.DefaultBuiltin),
		Style:    a["style"],
		Family:   cmp.Or(a["family"], name),
		Fallback: a["fallback"],
	}
}

// styleResource 读取 `style Name [extends Parent] { key: value ... }`。
func styleResource(name string, cmd *dsl.Command) Style {
	s := Style{Name: name, Props: map[string]string{}}
	if len(cmd.Args) >= 3 && strings.EqualFold(cmd.Args[1].Value, "extends") {
		s.Extends = cmd.Args[2].Value
	}
	for k, v := range blockAttrs(cmd.Block) {
		if v != "" {
			s.Props[k] = v
		}
	}
	return s
}

// flattenStyles 沿 extends 链展开每个样式，子样式的属性覆盖父样式。
func flattenStyles(declared map[string]Style) (map[string]Style, error) {
	out := make(map[string]Style, len(declared))
	for name, style := range declared {
		var chain []Style
		seen := map[string]bool{}
		for cur := name; cur != ""; {
			if seen[cur] {
				return nil, fmt.Errorf("style 继承存在循环：%s", cur)
			}
			seen[cur] = true
			s, ok := declared[cur]
			if !ok {
				return nil, fmt.Errorf("style %s 未定义", cur)
			}
			chain = append(chain, s)
			cur = s.Extends
		}
		props := map[string]string{}
		for _, s := range slices.Backward(chain) {
			maps.Copy(props, s.Props)
		}
		style.Props = props
		out[name] = style
	}
	return out, nil
}

func lookupFont(name string, res ResourceSet) (FontResource, error) {
	font, ok := res.Fonts[cmp.Or(name, DefaultFontName)]
	if !ok {
		return FontResource{}, fmt.Errorf("字体 %s 未定义", name)
	}
	return font, nil
}

// lookupColor 接受颜色资源名或 #hex。
func lookupColor(value string, res ResourceSet) (Color, bool) {
	if value == "" {
		return Color{}, false
	}
	if c, ok := res.Colors[value]; ok {
		return c, true
	}
	c, err := parseColor(value)
	return c, err == nil
}

func colorOr(value string, res ResourceSet, fallback Color) Color {
	if c, ok := lookupColor(value, res); ok {
		return c
	}
	return fallback
}

func optionalColor(value string, res ResourceSet) *Color {
	if c, ok := lookupColor(value, res); ok {
		return &c
	}
	return nil
}

// parseColor 解析 #rgb、#rrggbb 与 #rrggbbaa（忽略 alpha）。
func parseColor(value string) (Color, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(value), "#")
	if !ok {
		return Color{}, fmt.Errorf("颜色值 %s 需以 # 开头", value)
	}
	if len(hex) == 3 {
		var b strings.Builder
		for _, r := range hex {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		hex = b.String()
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var rgb [3]int
	for i := range rgb {
		v, err := strconv.ParseUint(hex[2*i:2*i+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
		}
		rgb[i] = int(v)
	}
	return Color{R: rgb[0], G: rgb[1], B: rgb[2]}, nil
}

func valueToString(v *dsl.Value) string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Expr != nil:
		parts := make([]string, len(v.Expr.Tokens))
		for i, t := range v.Expr.Tokens {
			parts[i] = t.Value
		}
		return strings.Join(parts, "")
	}
	return ""
}

func valueList(v *dsl.Value) []string {
	if v == nil {
		return nil
	}
	if v.List == nil {
		if s := valueToString(v); s != "" {
			return []string{s}
		}
		return nil
	}
	var out []string
	for _, item := range v.List.Values {
		if s := valueToString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
