package layout

import (
	"fmt"

	"github.com/ByLCY/fitbox/fit"
)

// Frame 是画布上一个绝对定位的矩形容器，最多承载一个文本节点。
type Frame struct {
	doc *Document

	id         string
	x, y       float64
	width      float64
	height     float64
	padding    Edges
	border     *Color
	background *Color
	node       *Node
}

var _ fit.Container = (*Frame)(nil)

// ID 返回 frame 的标识。
func (f *Frame) ID() string { return f.id }

// Node 返回 frame 中的文本节点，可能为 nil。
func (f *Frame) Node() *Node {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()
	return f.node
}

// ClientSize 实现 fit.Container：去掉内边距后的内容区，负值按 0 处理。
func (f *Frame) ClientSize() (fit.Size, error) {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()
	return f.clientLocked(), nil
}

func (f *Frame) clientLocked() fit.Size {
	return fit.Size{
		Width:  max(f.width-f.padding.Horizontal(), 0),
		Height: max(f.height-f.padding.Vertical(), 0),
	}
}

// Size 返回 frame 的外框尺寸。
func (f *Frame) Size() fit.Size {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()
	return fit.Size{Width: f.width, Height: f.height}
}

// Resize 修改 frame 尺寸。尺寸变化时先通知该 frame 的观察者，再通知全局监听者。
func (f *Frame) Resize(width, height float64) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("frame %s 尺寸不能为负数: %vx%v", f.id, width, height)
	}
	f.update(func() bool {
		if f.width == width && f.height == height {
			return false
		}
		f.width, f.height = width, height
		return true
	})
	return nil
}

// Padding 返回 frame 的内边距。
func (f *Frame) Padding() Edges {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()
	return f.padding
}

// SetPadding 修改内边距。内容区随之变化，信号与 Resize 相同。
func (f *Frame) SetPadding(p Edges) {
	f.update(func() bool {
		if f.padding == p {
			return false
		}
		f.padding = p
		return true
	})
}

// update 在持锁状态下执行 change，返回 true 时在锁外通知尺寸观察者。
func (f *Frame) update(change func() bool) {
	d := f.doc
	d.mu.Lock()
	if !change() {
		d.mu.Unlock()
		return
	}
	local := append([]listener(nil), d.resizeObs[f]...)
	global := append([]listener(nil), d.globalObs...)
	d.mu.Unlock()

	notify(local)
	notify(global)
}

// Move 修改 frame 在画布上的位置。位置不影响内容区，因此不产生信号。
func (f *Frame) Move(x, y float64) {
	f.doc.mu.Lock()
	defer f.doc.mu.Unlock()
	f.x, f.y = x, y
}
