package layout

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/ByLCY/fitbox/binding"
	"github.com/ByLCY/fitbox/dsl"
)

// DefaultFontSize 是未声明 size 时节点的初始字号（px），首次适配前使用。
const DefaultFontSize = 16

var (
	frameKeys = keySet("id", "x", "y", "width", "height", "padding", "border", "background")
	fitKeys   = keySet("id", "min", "max", "strategy", "slack", "debounce",
		"observe-resize", "observe-content", "font-refit",
		"font", "size", "color", "line-height", "wrap", "align", "margin", "padding", "border")
)

// Build 将 AST 转换为可变的 Document。首次适配不在此处执行：调用方
// 通过 Attach 挂接会话后调用 Layout，或直接调用 FitAll。
func Build(doc *dsl.Document, opts BuildOptions) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("场景为空")
	}
	section := doc.Canvas()
	if section == nil {
		return nil, fmt.Errorf("场景 %s 缺少 canvas 段", doc.Name)
	}

	res, err := collectResources(doc)
	if err != nil {
		return nil, err
	}

	d := newDocument(opts)
	d.res = res
	d.meta = collectMeta(doc)

	canvas, err := parseCanvas(section, res)
	if err != nil {
		return nil, err
	}
	d.canvas = canvas

	ids := map[string]bool{}
	if section.Block == nil {
		return d, nil
	}
	for _, stmt := range section.Block.Statements {
		cmd := stmt.Command
		if cmd == nil {
			continue
		}
		if cmd.Name != "frame" {
			return nil, fmt.Errorf("%s: canvas 中不支持 %s", cmd.Pos, cmd.Name)
		}
		frame, err := buildFrame(d, cmd, len(d.frames))
		if err != nil {
			return nil, err
		}
		for _, id := range frameIDs(frame) {
			if ids[id] {
				return nil, fmt.Errorf("%s: 标识 %s 重复", cmd.Pos, id)
			}
			ids[id] = true
		}
		d.frames = append(d.frames, frame)
	}
	return d, nil
}

func frameIDs(f *Frame) []string {
	if f.node == nil {
		return []string{f.id}
	}
	return []string{f.id, f.node.id}
}

func parseCanvas(section *dsl.CanvasSection, res ResourceSet) (CanvasBox, error) {
	if len(section.Params) < 2 {
		return CanvasBox{}, fmt.Errorf("%s: canvas 需要宽度与高度", section.Pos)
	}
	w, okW := ParseLength(section.Params[0].Value)
	h, okH := ParseLength(section.Params[1].Value)
	if !okW || !okH || w.Value <= 0 || h.Value <= 0 {
		return CanvasBox{}, fmt.Errorf("%s: canvas 尺寸无效: %s %s", section.Pos, section.Params[0].Raw, section.Params[1].Raw)
	}
	box := CanvasBox{Width: w.ToPX(), Height: h.ToPX()}
	_, attrs := parseArgs(section.Params[2:], nil)
	box.Background = optionalColor(attrs["background"], res)
	return box, nil
}

func buildFrame(d *Document, cmd *dsl.Command, index int) (*Frame, error) {
	id, attrs := parseArgs(cmd.Args, frameKeys)
	maps.Copy(attrs, blockAttrs(cmd.Block))
	if v := attrs["id"]; v != "" {
		id = v
	}
	if id == "" {
		id = "frame" + strconv.Itoa(index+1)
	}

	cw, ch := d.canvas.Width, d.canvas.Height
	f := &Frame{
		doc:        d,
		id:         id,
		x:          parseDimension(attrs["x"], cw),
		y:          parseDimension(attrs["y"], ch),
		width:      cw,
		height:     ch,
		padding:    parseEdges(attrs["padding"]),
		border:     optionalColor(attrs["border"], d.res),
		background: optionalColor(attrs["background"], d.res),
	}
	if v, ok := attrs["width"]; ok {
		f.width = parseDimension(v, cw)
	}
	if v, ok := attrs["height"]; ok {
		f.height = parseDimension(v, ch)
	}
	if f.width < 0 || f.height < 0 {
		return nil, fmt.Errorf("%s: frame %s 尺寸不能为负数", cmd.Pos, id)
	}

	if cmd.Block == nil {
		return f, nil
	}
	for _, stmt := range cmd.Block.Statements {
		sub := stmt.Command
		if sub == nil {
			continue
		}
		switch sub.Name {
		case "fit", "text":
			if f.node != nil {
				return nil, fmt.Errorf("%s: frame %s 只能包含一个文本", sub.Pos, id)
			}
			node, err := buildNode(d, f, sub)
			if err != nil {
				return nil, err
			}
			f.node = node
		case "let":
			// 变量声明由数据绑定处理，这里忽略
		default:
			return nil, fmt.Errorf("%s: frame 中不支持 %s", sub.Pos, sub.Name)
		}
	}
	return f, nil
}

func buildNode(d *Document, f *Frame, cmd *dsl.Command) (*Node, error) {
	style, inline := parseArgs(cmd.Args, fitKeys)
	maps.Copy(inline, blockAttrs(cmd.Block))
	if style != "" {
		if _, ok := d.res.Styles[style]; !ok {
			return nil, fmt.Errorf("%s: style %s 未定义", cmd.Pos, style)
		}
	}
	attrs := mergeStyleAttributes(style, inline, d.res.Styles)

	font, err := lookupFont(attrs["font"], d.res)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Pos, err)
	}
	lineHeight := DefaultLineHeight
	if v := attrs["line-height"]; v != "" {
		lh, ok := parseLineHeight(v)
		if !ok {
			return nil, fmt.Errorf("%s: line-height %q 无效", cmd.Pos, v)
		}
		lineHeight = lh
	}
	fontSize := float64(DefaultFontSize)
	if v := attrs["size"]; v != "" {
		if fontSize = parsePX(v); fontSize <= 0 {
			return nil, fmt.Errorf("%s: size %q 无效", cmd.Pos, v)
		}
	}

	spec, err := parseFitSpec(attrs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Pos, err)
	}
	// text 是固定字号的文本：不挂接观察者，适配范围锁定在初始字号
	if cmd.Name == "text" {
		size := max(1, int(fontSize))
		off := false
		spec.MinSize, spec.MaxSize = size, size
		spec.ObserveResize, spec.ObserveContent, spec.FontRefit = &off, &off, &off
	}

	id := attrs["id"]
	if id == "" {
		id = f.id + ".text"
	}
	template := extractText(cmd.Block)
	n := &Node{
		doc:      d,
		frame:    f,
		id:       id,
		template: template,
		content:  binding.Interpolate(template, d.data),
		style: textStyle{
			font:       font,
			fontSize:   fontSize,
			lineHeight: lineHeight,
			wrap:       NormalizeWrap(attrs["wrap"]),
		},
		color:   colorOr(attrs["color"], d.res, defaultTextColor),
		align:   strings.ToLower(attrs["align"]),
		margin:  parseEdges(attrs["margin"]),
		padding: parseEdges(attrs["padding"]),
		border:  parsePX(attrs["border"]),
		attrs:   map[string]string{},
		fit:     spec,
	}
	return n, nil
}

func parseFitSpec(attrs map[string]string) (FitSpec, error) {
	var spec FitSpec
	var err error
	if spec.MinSize, err = parseInt(attrs, "min", 1); err != nil {
		return spec, err
	}
	if spec.MaxSize, err = parseInt(attrs, "max", 1); err != nil {
		return spec, err
	}
	if spec.Slack, err = parseInt(attrs, "slack", 0); err != nil {
		return spec, err
	}
	if spec.Strategy, err = parseStrategy(attrs["strategy"]); err != nil {
		return spec, err
	}
	if spec.Slack > 0 && spec.Strategy == StrategyClone {
		return spec, fmt.Errorf("slack 仅适用于 inplace 策略，不能与 strategy clone 同时使用")
	}
	if v, ok := attrs["debounce"]; ok {
		dur, err := parseDuration(v)
		if err != nil {
			return spec, err
		}
		spec.Debounce = &dur
	}
	for key, dst := range map[string]**bool{
		"observe-resize":  &spec.ObserveResize,
		"observe-content": &spec.ObserveContent,
		"font-refit":      &spec.FontRefit,
	} {
		v, ok := attrs[key]
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return spec, fmt.Errorf("%s 需要布尔值: %q", key, v)
		}
		*dst = &b
	}
	return spec, nil
}

// parseInt 读取不小于 lower 的整数；未声明时返回 0。
func parseInt(attrs map[string]string, key string, lower int) (int, error) {
	v, ok := attrs[key]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSuffix(v, "px"))
	if err != nil || n < lower {
		return 0, fmt.Errorf("%s 需要不小于 %d 的整数: %q", key, lower, v)
	}
	return n, nil
}

// parseDuration 接受 "50ms"、"1.5s" 或不带单位的毫秒数。
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if ms, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(ms * float64(time.Millisecond)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("debounce %q 无效", v)
	}
	return d, nil
}

// parseArgs 解析 `[name] key value key value ...` 形式的参数。第一个标识符
// 不是已知键时视为名字（frame 的 ID 或 fit 的 style）。
func parseArgs(args []*dsl.Token, known map[string]bool) (string, map[string]string) {
	result := map[string]string{}
	if len(args) == 0 {
		return "", result
	}

	cursor := 0
	var name string
	if args[0].Type == "Ident" && !known[args[0].Value] {
		name = args[0].Value
		cursor = 1
	}

	for cursor < len(args)-1 {
		result[args[cursor].Value] = args[cursor+1].Value
		cursor += 2
	}
	return name, result
}

// blockAttrs 收集块内的 key: value 赋值。
func blockAttrs(block *dsl.Block) map[string]string {
	out := map[string]string{}
	if block == nil {
		return out
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment != nil {
			out[stmt.Assignment.Key] = valueToString(stmt.Assignment.Value)
		}
	}
	return out
}

func mergeStyleAttributes(style string, inline map[string]string, styles map[string]Style) map[string]string {
	out := make(map[string]string)
	if s, ok := styles[style]; ok {
		maps.Copy(out, s.Props)
	}
	maps.Copy(out, inline)
	return out
}

func extractText(block *dsl.Block) string {
	if block == nil {
		return ""
	}
	var builder strings.Builder
	for _, stmt := range block.Statements {
		if stmt.Text != nil {
			builder.WriteString(string(stmt.Text.Value))
		}
	}
	return builder.String()
}

func keySet(keys ...string) map[string]bool {
	out := make(map[string]bool, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out
}
