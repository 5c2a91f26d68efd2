package layout

// BuildOptions 配置布局阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
	// Data 为绑定到文本 ${...} 占位符的 JSON 数据。
	Data any
	// FontsReady 在字体加载完成后关闭，用作 fit 的字体就绪信号；nil 表示无需等待。
	FontsReady <-chan struct{}
	// DisableResizeObserver 模拟不支持逐元素尺寸观察的宿主，会话将退回到全局 resize 信号。
	DisableResizeObserver bool
}

// Typesetter 负责根据字体与宽度约束将文本拆成可绘制的行。
// 所有长度（width、fontSize、lineHeight 以及返回的行宽高）单位均为 px。
// 实现必须可并发调用。
type Typesetter interface {
	LayoutLines(content string, width float64, font FontResource, fontSize float64, lineHeight float64, wrap string) ([]TextLine, error)
}
