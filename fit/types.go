package fit

// AttrSize 是每次适配成功后写在目标上的标记属性，值为十进制的生效字号（px）。
const AttrSize = "data-fit-size"

// Size 是以 px 计的盒子尺寸。
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty 判断盒子在任一方向上没有可用面积。
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Within 判断 s 在两个方向上都不超出 bounds。
func (s Size) Within(bounds Size) bool {
	return s.Width <= bounds.Width && s.Height <= bounds.Height
}

// Target 是需要放进容器的文本元素，归调用方所有，会话只持有引用。
type Target interface {
	// SetFontSize 设置控制字号的样式属性。
	SetFontSize(px int)
	// SetAttr 在元素上写入机器可读的属性。
	SetAttr(name, value string)
	// Box 返回当前字号下内容在容器内排版后的尺寸。
	Box() (Size, error)
}

// Container 是 Target 的外框元素。
type Container interface {
	// ClientSize 返回去掉内边距后的内容区。某一维为 0 表示容器被隐藏或尚未布局。
	ClientSize() (Size, error)
}

// Replica 是挂在 Surface 上、与原目标脱离的克隆。
type Replica interface {
	SetFontSize(px int)
	// Height 返回克隆在当前字号下的排版高度。
	Height() (float64, error)
}

// Surface 是临时的测量面：不可见、不响应交互，宽度在创建时固定。
type Surface interface {
	// Mount 深拷贝 t，归一化影响布局的样式后放到测量面上。
	Mount(t Target) (Replica, error)
	// Remove 移除测量面，可重复调用。
	Remove()
}

// SurfaceHost 在文档根节点下一层创建测量面。
type SurfaceHost interface {
	NewSurface(width float64) (Surface, error)
}
