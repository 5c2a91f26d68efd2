package fit_test

import (
	"errors"
	"sync"

	"github.com/ByLCY/fitbox/fit"
)

// textTarget 模拟不折行的单行文本：每个字符前进 0.6em，行高 1.2em。
type textTarget struct {
	mu       sync.Mutex
	text     string
	size     int
	attrs    map[string]string
	sets     int
	failAt   int // 字号达到 failAt 时 Box 出错（0 表示不出错）
	inFlight int
	maxIn    int
	gate     chan struct{} // 非 nil 时 Box 阻塞到 gate 关闭
	entered  chan struct{}
}

func newTextTarget(text string) *textTarget {
	return &textTarget{text: text, size: 16, attrs: map[string]string{}}
}

func (t *textTarget) SetFontSize(px int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.size = px
	t.sets++
}

func (t *textTarget) SetAttr(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.attrs[name] = value
}

func (t *textTarget) Box() (fit.Size, error) {
	t.mu.Lock()
	t.inFlight++
	if t.inFlight > t.maxIn {
		t.maxIn = t.inFlight
	}
	gate, entered := t.gate, t.entered
	t.gate, t.entered = nil, nil
	t.mu.Unlock()

	if entered != nil {
		close(entered)
	}
	if gate != nil {
		<-gate
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.inFlight--
	if t.failAt > 0 && t.size >= t.failAt {
		return fit.Size{}, errors.New("layout read failed")
	}
	return extent(t.text, t.size), nil
}

func (t *textTarget) Attr(name string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.attrs[name]
}

func (t *textTarget) FontSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

func (t *textTarget) SetCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sets
}

func (t *textTarget) SetText(s string) {
	t.mu.Lock()
	t.text = s
	t.mu.Unlock()
}

func extent(text string, size int) fit.Size {
	n := len([]rune(text))
	return fit.Size{Width: float64(n) * float64(size) * 0.6, Height: float64(size) * 1.2}
}

type box struct {
	mu   sync.Mutex
	size fit.Size
}

func (b *box) ClientSize() (fit.Size, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size, nil
}

func (b *box) Resize(w, h float64) {
	b.mu.Lock()
	b.size = fit.Size{Width: w, Height: h}
	b.mu.Unlock()
}

// signals 是可由测试驱动的信号源。
type signals struct {
	mu          sync.Mutex
	noResize    bool
	resize      []func()
	mutation    []func()
	global      []func()
	pending     []func()
	fonts       chan struct{}
	cancelCalls int
}

func (s *signals) ObserveResize(_ fit.Container, fn func()) (func(), error) {
	if s.noResize {
		return nil, errors.ErrUnsupported
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resize = append(s.resize, fn)
	return s.canceller(&s.resize, len(s.resize)-1), nil
}

func (s *signals) ObserveMutation(_ fit.Target, fn func()) (func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mutation = append(s.mutation, fn)
	return s.canceller(&s.mutation, len(s.mutation)-1), nil
}

func (s *signals) OnGlobalResize(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.global = append(s.global, fn)
	return s.canceller(&s.global, len(s.global)-1)
}

func (s *signals) canceller(list *[]func(), idx int) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		(*list)[idx] = nil
		s.cancelCalls++
	}
}

func (s *signals) FontsReady() <-chan struct{} {
	if s.fonts == nil {
		return nil
	}
	return s.fonts
}

func (s *signals) AfterLayout(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, fn)
}

// layout 执行登记到下一次布局的回调。
func (s *signals) layout() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (s *signals) fire(list *[]func()) {
	s.mu.Lock()
	fns := append([]func(){}, (*list)...)
	s.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn()
		}
	}
}

func (s *signals) fireResize()   { s.fire(&s.resize) }
func (s *signals) fireMutation() { s.fire(&s.mutation) }
func (s *signals) fireGlobal()   { s.fire(&s.global) }

func (s *signals) cancels() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelCalls
}

// host 创建测量 *textTarget 克隆的测量面。
type host struct {
	mu      sync.Mutex
	live    int
	created int
	widths  []float64
}

func (h *host) NewSurface(width float64) (fit.Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.live++
	h.created++
	h.widths = append(h.widths, width)
	return &surface{host: h}, nil
}

func (h *host) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live
}

type surface struct {
	host    *host
	removed bool
}

func (s *surface) Mount(t fit.Target) (fit.Replica, error) {
	tt, ok := t.(*textTarget)
	if !ok {
		return nil, errors.New("unsupported target")
	}
	tt.mu.Lock()
	defer tt.mu.Unlock()
	return &replica{text: tt.text, failAt: tt.failAt}, nil
}

func (s *surface) Remove() {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()
	if s.removed {
		return
	}
	s.removed = true
	s.host.live--
}

type replica struct {
	text   string
	size   int
	failAt int
}

func (p *replica) SetFontSize(px int) { p.size = px }

func (p *replica) Height() (float64, error) {
	if p.failAt > 0 && p.size >= p.failAt {
		return 0, errors.New("layout read failed")
	}
	return extent(p.text, p.size).Height, nil
}
