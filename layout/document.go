package layout

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ByLCY/fitbox/fit"
)

// Document 是一个可变的、已布局的场景。它同时扮演 fit 会话的宿主：
// 提供尺寸/内容观察、字体就绪信号、布局回调与离屏测量面。
//
// Document 的全部状态由 mu 保护；观察者回调总在锁外调用。
type Document struct {
	mu sync.Mutex

	ts         Typesetter
	data       any
	fontsReady <-chan struct{}
	noResize   bool

	canvas CanvasBox
	frames []*Frame
	res    ResourceSet
	meta   DocumentMeta

	nextListener int
	resizeObs    map[*Frame][]listener
	mutationObs  map[*Node][]listener
	globalObs    []listener
	afterLayout  []func()
	surfaces     map[*Surface]struct{}
}

type listener struct {
	id int
	fn func()
}

var (
	_ fit.Signals     = (*Document)(nil)
	_ fit.SurfaceHost = (*Document)(nil)
)

func newDocument(opts BuildOptions) *Document {
	ts := opts.Typesetter
	if ts == nil {
		ts = EstimateTypesetter{}
	}
	return &Document{
		ts:          ts,
		data:        opts.Data,
		fontsReady:  opts.FontsReady,
		noResize:    opts.DisableResizeObserver,
		resizeObs:   make(map[*Frame][]listener),
		mutationObs: make(map[*Node][]listener),
		surfaces:    make(map[*Surface]struct{}),
	}
}

// Typesetter 返回文档使用的排版后端。
func (d *Document) Typesetter() Typesetter { return d.ts }

// Frames 返回所有 frame（按声明顺序）。
func (d *Document) Frames() []*Frame {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Frame(nil), d.frames...)
}

// Frame 按 ID 查找 frame。
func (d *Document) Frame(id string) (*Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.frames {
		if f.id == id {
			return f, true
		}
	}
	return nil, false
}

// Node 按 ID 查找文本节点。
func (d *Document) Node(id string) (*Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.frames {
		if f.node != nil && f.node.id == id {
			return f.node, true
		}
	}
	return nil, false
}

// Nodes 返回所有文本节点。
func (d *Document) Nodes() []*Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []*Node
	for _, f := range d.frames {
		if f.node != nil {
			out = append(out, f.node)
		}
	}
	return out
}

// Canvas 返回当前画布尺寸。
func (d *Document) Canvas() CanvasBox {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canvas
}

// SetViewport 调整画布尺寸，并触发全局 resize 信号。
func (d *Document) SetViewport(width, height float64) {
	d.mu.Lock()
	d.canvas.Width = width
	d.canvas.Height = height
	global := append([]listener(nil), d.globalObs...)
	d.mu.Unlock()
	notify(global)
}

// Layout 执行一次布局刷新：运行所有通过 AfterLayout 登记的回调。
// 回调在调用方 goroutine 中按登记顺序同步执行。
func (d *Document) Layout() {
	d.mu.Lock()
	pending := d.afterLayout
	d.afterLayout = nil
	d.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// SurfaceCount 返回尚未移除的测量面数量。
func (d *Document) SurfaceCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.surfaces)
}

// ObserveResize 实现 fit.Signals。c 必须是本文档的 *Frame。
func (d *Document) ObserveResize(c fit.Container, fn func()) (func(), error) {
	if d.noResize {
		return nil, errors.ErrUnsupported
	}
	f, ok := c.(*Frame)
	if !ok || f.doc != d {
		return nil, fmt.Errorf("容器 %T 不属于当前文档", c)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.addListener()
	d.resizeObs[f] = append(d.resizeObs[f], listener{id: id, fn: fn})
	return func() { d.removeResize(f, id) }, nil
}

// ObserveMutation 实现 fit.Signals。t 必须是本文档的 *Node。
func (d *Document) ObserveMutation(t fit.Target, fn func()) (func(), error) {
	n, ok := t.(*Node)
	if !ok || n.doc != d {
		return nil, fmt.Errorf("目标 %T 不属于当前文档", t)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.addListener()
	d.mutationObs[n] = append(d.mutationObs[n], listener{id: id, fn: fn})
	return func() { d.removeMutation(n, id) }, nil
}

// OnGlobalResize 实现 fit.Signals。
func (d *Document) OnGlobalResize(fn func()) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.addListener()
	d.globalObs = append(d.globalObs, listener{id: id, fn: fn})
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.globalObs = dropListener(d.globalObs, id)
	}
}

// FontsReady 实现 fit.Signals。
func (d *Document) FontsReady() <-chan struct{} { return d.fontsReady }

// AfterLayout 实现 fit.Signals，回调在下一次 Layout 时执行。
func (d *Document) AfterLayout(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.afterLayout = append(d.afterLayout, fn)
}

// NewSurface 实现 fit.SurfaceHost。
func (d *Document) NewSurface(width float64) (fit.Surface, error) {
	if width < 0 {
		return nil, fmt.Errorf("测量面宽度不能为负数: %v", width)
	}
	s := &Surface{doc: d, width: width}
	d.mu.Lock()
	d.surfaces[s] = struct{}{}
	d.mu.Unlock()
	return s, nil
}

func (d *Document) addListener() int {
	d.nextListener++
	return d.nextListener
}

func (d *Document) removeResize(f *Frame, id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l := dropListener(d.resizeObs[f], id); len(l) > 0 {
		d.resizeObs[f] = l
	} else {
		delete(d.resizeObs, f)
	}
}

func (d *Document) removeMutation(n *Node, id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l := dropListener(d.mutationObs[n], id); len(l) > 0 {
		d.mutationObs[n] = l
	} else {
		delete(d.mutationObs, n)
	}
}

func (d *Document) removeSurface(s *Surface) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.surfaces, s)
}

// ObserverCount 返回仍然登记着的观察者总数，用于检查会话是否完全断开。
func (d *Document) ObserverCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.globalObs)
	for _, l := range d.resizeObs {
		n += len(l)
	}
	for _, l := range d.mutationObs {
		n += len(l)
	}
	return n
}

func dropListener(ls []listener, id int) []listener {
	out := ls[:0]
	for _, l := range ls {
		if l.id != id {
			out = append(out, l)
		}
	}
	return out
}

func notify(ls []listener) {
	for _, l := range ls {
		l.fn()
	}
}
