package layout

import (
	"fmt"
	"maps"
	"math"

	"github.com/ByLCY/fitbox/binding"
	"github.com/ByLCY/fitbox/fit"
)

// Node 是一个可适配字号的文本元素，实现 fit.Target。
type Node struct {
	doc   *Document
	frame *Frame

	id       string
	template string // 插值前的原文
	content  string
	style    textStyle
	color    Color
	align    string
	margin   Edges
	padding  Edges
	border   float64
	attrs    map[string]string
	fit      FitSpec
}

// textStyle 是影响文字排版的全部属性。
type textStyle struct {
	font       FontResource
	fontSize   float64
	lineHeight LineHeightSpec
	wrap       string
}

func (s textStyle) lines(ts Typesetter, content string, width float64) ([]TextLine, error) {
	lines, err := ts.LayoutLines(content, width, s.font, s.fontSize, s.lineHeight.Resolve(s.fontSize), s.wrap)
	if err != nil {
		return nil, fmt.Errorf("排版文本失败: %w", err)
	}
	return lines, nil
}

var _ fit.Target = (*Node)(nil)

// ID 返回节点标识。
func (n *Node) ID() string { return n.id }

// Frame 返回节点所在的容器。
func (n *Node) Frame() *Frame { return n.frame }

// Fit 返回节点上声明的适配参数。
func (n *Node) Fit() FitSpec { return n.fit }

// SetFontSize 实现 fit.Target。
func (n *Node) SetFontSize(px int) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	n.style.fontSize = float64(px)
}

// FontSize 返回当前字号（px）。
func (n *Node) FontSize() float64 {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.style.fontSize
}

// SetAttr 实现 fit.Target。属性变化不属于内容变更，不会通知观察者。
func (n *Node) SetAttr(name, value string) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[name] = value
}

// Attr 读取属性。
func (n *Node) Attr(name string) (string, bool) {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	v, ok := n.attrs[name]
	return v, ok
}

// Attrs 返回属性的副本。
func (n *Node) Attrs() map[string]string {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return maps.Clone(n.attrs)
}

// Content 返回插值后的文本。
func (n *Node) Content() string {
	n.doc.mu.Lock()
	defer n.doc.mu.Unlock()
	return n.content
}

// SetContent 替换文本内容。内容确有变化时通知内容观察者。
func (n *Node) SetContent(content string) {
	d := n.doc
	d.mu.Lock()
	n.template = content
	content = binding.Interpolate(content, d.data)
	if content == n.content {
		d.mu.Unlock()
		return
	}
	n.content = content
	obs := append([]listener(nil), d.mutationObs[n]...)
	d.mu.Unlock()
	notify(obs)
}

// SetData 替换绑定数据并重新插值所有节点，内容变化的节点会触发内容观察者。
func (d *Document) SetData(data any) {
	d.mu.Lock()
	d.data = data
	var changed []listener
	for _, f := range d.frames {
		n := f.node
		if n == nil {
			continue
		}
		content := binding.Interpolate(n.template, data)
		if content == n.content {
			continue
		}
		n.content = content
		changed = append(changed, d.mutationObs[n]...)
	}
	d.mu.Unlock()
	notify(changed)
}

// decorations 是内容区之外、仍属于节点盒子的部分：margin、border 与 padding。
func (n *Node) decorationsLocked() Edges {
	return n.margin.Add(uniformEdges(n.border)).Add(n.padding)
}

// Box 实现 fit.Target：以当前字号在容器内容区宽度内排版，返回包含装饰的外框尺寸。
func (n *Node) Box() (fit.Size, error) {
	d := n.doc
	d.mu.Lock()
	style := n.style
	content := n.content
	deco := n.decorationsLocked()
	avail := n.frame.clientLocked().Width - deco.Horizontal()
	d.mu.Unlock()

	lines, err := style.lines(d.ts, content, max(avail, minLineWidth))
	if err != nil {
		return fit.Size{}, err
	}
	w, h := extent(lines)
	return fit.Size{Width: w + deco.Horizontal(), Height: h + deco.Vertical()}, nil
}

// minLineWidth 防止可用宽度为 0 时被排版器视为“不限宽度”。
const minLineWidth = 1e-3

func extent(lines []TextLine) (width, height float64) {
	for _, l := range lines {
		width = math.Max(width, l.Width)
		height += l.GapBefore + l.Height
	}
	return width, height
}
