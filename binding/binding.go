// Package binding 将 JSON 数据绑定到场景文本中的 ${...} 占位符。
package binding

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

var placeholder = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 或 ${$.jsonpath} 替换为 data 中的值。
// 若 data 为空或路径不存在，则保留原占位符。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	matches := placeholder.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]
		val, ok := Lookup(data, text[m[2]:m[3]])
		if !ok {
			b.WriteString(text[m[0]:m[1]])
			continue
		}
		s, err := format(val)
		if err != nil {
			b.WriteString(text[m[0]:m[1]])
			continue
		}
		b.WriteString(s)
	}
	b.WriteString(text[last:])
	return b.String()
}

// Lookup 解析单个表达式。以 $ 开头的按 JSONPath 求值，其余按点号路径（支持 [i] 下标）。
func Lookup(data any, expr string) (any, bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" || data == nil {
		return nil, false
	}
	if strings.HasPrefix(expr, "$") {
		val, err := jsonpath.Get(expr, data)
		if err != nil || val == nil {
			return nil, false
		}
		if list, ok := val.([]any); ok && len(list) == 0 {
			return nil, false
		}
		return val, true
	}
	steps, ok := parsePath(expr)
	if !ok {
		return nil, false
	}
	return walk(data, steps)
}

// Decode 将 JSON 数据解码为 Interpolate 可用的通用结构，空输入返回 nil。
func Decode(raw []byte) (any, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("解析绑定数据失败: %w", err)
	}
	return doc, nil
}

// step 是路径中的一级：对象键或数组下标。
type step struct {
	key   string
	index int
}

func (s step) isIndex() bool { return s.key == "" }

// parsePath 将 a.b[0][1].c 拆成逐级访问步骤。
func parsePath(path string) ([]step, bool) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, step{key: name})
		}
		if rest == "" {
			if strings.HasSuffix(segment, "[") {
				return nil, false
			}
			continue
		}
		for _, idx := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
			i, err := strconv.Atoi(idx)
			if err != nil {
				return nil, false
			}
			steps = append(steps, step{index: i})
		}
	}
	return steps, len(steps) > 0
}

func walk(data any, steps []step) (any, bool) {
	cur := data
	for _, s := range steps {
		if s.isIndex() {
			list, ok := cur.([]any)
			if !ok || s.index < 0 || s.index >= len(list) {
				return nil, false
			}
			cur = list[s.index]
			continue
		}
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[s.key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// format 将取到的值转为文本。JSONPath 的通配/下标结果是切片，单元素时取其值。
func format(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(t), nil
	case []any:
		if len(t) == 1 {
			return format(t[0])
		}
	case map[string]any:
	default:
		return fmt.Sprint(t), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
