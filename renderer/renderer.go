package renderer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ByLCY/fitbox/layout"
)

// Renderer 将布局快照输出为最终文件，例如 PDF、SVG 或 PNG。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(result *layout.Result) ([]byte, error)
}

// Format 是输出文件格式。
type Format string

const (
	FormatPDF Format = "pdf"
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// ParseFormat 解析格式名，空串视为 PDF。
func ParseFormat(v string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(v))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("不支持的输出格式 %q（可选 pdf/svg/png）", v)
	}
}

// FormatFromPath 根据输出文件扩展名推断格式，未知扩展名返回 fallback。
func FormatFromPath(path string, fallback Format) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return fallback
	}
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return fallback
}
