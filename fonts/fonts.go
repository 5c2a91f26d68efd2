package fonts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// BuiltinPrefix 标记内置字体，例如 "builtin:goregular"。
const BuiltinPrefix = "builtin:"

// DefaultBuiltin 是未声明字体时使用的内置字体。
const DefaultBuiltin = BuiltinPrefix + "goregular"

var builtins = map[string][]byte{
	"goregular": goregular.TTF,
	"gobold":    gobold.TTF,
	"goitalic":  goitalic.TTF,
	"gomedium":  gomedium.TTF,
	"gomono":    gomono.TTF,
}

// Builtins 返回所有内置字体名（已排序）。
func Builtins() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsBuiltin 判断 src 是否引用内置字体。"embed:" 前缀保留为别名。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, BuiltinPrefix) || strings.HasPrefix(src, "embed:")
}

// Resolve 将相对路径的字体文件定位到场景文件所在目录；内置字体原样返回。
func Resolve(src, baseDir string) string {
	if src == "" || IsBuiltin(src) || filepath.IsAbs(src) || baseDir == "" {
		return src
	}
	return filepath.Join(baseDir, src)
}

// Load 返回字体的字节数据，src 可写为 "builtin:gobold" 或字体文件路径。
// 读取到的数据会用 sfnt 校验，非 TrueType/OpenType 数据直接报错。
func Load(src string) ([]byte, error) {
	if src == "" {
		src = DefaultBuiltin
	}
	if IsBuiltin(src) {
		name := strings.TrimPrefix(strings.TrimPrefix(src, BuiltinPrefix), "embed:")
		data, ok := builtins[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("未知的内置字体 %s（可用: %s）", name, strings.Join(Builtins(), ", "))
		}
		return data, nil
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	if _, err := Parse(data); err != nil {
		return nil, fmt.Errorf("字体 %s 无效: %w", src, err)
	}
	return data, nil
}

// Parse 解析字体数据。
func Parse(data []byte) (*sfnt.Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Family 读取字体的 family 名称，读取失败时返回空串。
func Family(data []byte) string {
	f, err := Parse(data)
	if err != nil {
		return ""
	}
	name, err := f.Name(nil, sfnt.NameIDFamily)
	if err != nil {
		return ""
	}
	return name
}
