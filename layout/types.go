package layout

// 该文件定义布局快照与资源描述，供渲染器与调试 JSON 共用。所有长度单位均为 px。

// Result 是 Document 在某一时刻的可渲染快照。
type Result struct {
	Canvas    CanvasBox    `json:"canvas"`
	Frames    []FrameBox   `json:"frames"`
	Resources ResourceSet  `json:"resources"`
	Meta      DocumentMeta `json:"meta"`
}

// ResourceSet 记录解析出的字体、颜色与样式定义。
type ResourceSet struct {
	Fonts  map[string]FontResource `json:"fonts"`
	Colors map[string]Color        `json:"colors"`
	Styles map[string]Style        `json:"styles"`
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name     string `json:"name"`
	Src      string `json:"src"`
	Style    string `json:"style"`
	Family   string `json:"family"` // 渲染器使用的 Family 名称
	Fallback string `json:"fallback,omitempty"`
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// CanvasBox 描述画布尺寸与背景色。
type CanvasBox struct {
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Background *Color  `json:"background,omitempty"`
}

// FrameBox 是一个容器（frame）的快照，坐标为画布坐标。
type FrameBox struct {
	ID         string    `json:"id"`
	X          float64   `json:"x"`
	Y          float64   `json:"y"`
	Width      float64   `json:"width"`
	Height     float64   `json:"height"`
	Padding    Edges     `json:"padding"`
	Border     *Color    `json:"border,omitempty"`
	Background *Color    `json:"background,omitempty"`
	Texts      []TextBox `json:"texts"`
}

// TextBox 表示一个已经排好坐标、应用了适配字号的文本块。
type TextBox struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	X          float64           `json:"x"`
	Y          float64           `json:"y"`
	Width      float64           `json:"width"`
	Height     float64           `json:"height"`
	LineHeight float64           `json:"lineHeight"`
	Font       string            `json:"font"`
	FontSize   float64           `json:"fontSize"`
	Color      Color             `json:"color"`
	Lines      []TextLine        `json:"lines"`
	Align      string            `json:"align,omitempty"` // left/center/right（默认 left）
	Wrap       string            `json:"wrap,omitempty"`  // anywhere(默认)/break-word/nowrap
	Overflow   bool              `json:"overflow,omitempty"`
	Attrs      map[string]string `json:"attrs,omitempty"`
}

// TextLine 表示排版后的一行文本内容及其宽高。
type TextLine struct {
	Content   string  `json:"content"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	GapBefore float64 `json:"gapBefore,omitempty"`
}

// Style 用于描述可继承的文本样式。
type Style struct {
	Name    string            `json:"name"`
	Extends string            `json:"extends,omitempty"`
	Props   map[string]string `json:"props"`
}

// DocumentMeta 保存输出文件的元信息。
type DocumentMeta struct {
	Title    string   `json:"title"`
	Author   string   `json:"author"`
	Subject  string   `json:"subject"`
	Creator  string   `json:"creator"`
	Keywords []string `json:"keywords"`
}
