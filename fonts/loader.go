package fonts

import (
	"errors"
	"sync"
)

// ErrPending 表示字体仍在加载，调用方应先用内置字体排版，待就绪信号后重排。
var ErrPending = errors.New("字体尚未加载完成")

// Source 向排版后端提供字体数据，src 为已解析的路径或内置字体名。
type Source interface {
	Fetch(src string) ([]byte, error)
}

// Direct 同步读取字体，没有加载过程。
type Direct struct{}

// Fetch 实现 Source。
func (Direct) Fetch(src string) ([]byte, error) { return Load(src) }

// Loader 在后台加载一组字体。Ready 在全部加载结束（无论成败）后关闭，
// 可直接作为 fit 会话的字体就绪信号。
type Loader struct {
	ready chan struct{}
	start sync.Once

	mu   sync.RWMutex
	data map[string][]byte
	errs map[string]error
}

var _ Source = (*Loader)(nil)

// NewLoader 返回尚未开始加载的 Loader，Start 之前 Fetch 一律返回 ErrPending
// （内置字体除外）。
func NewLoader() *Loader {
	return &Loader{
		ready: make(chan struct{}),
		data:  map[string][]byte{},
		errs:  map[string]error{},
	}
}

// LoadAsync 启动后台加载并立即返回。
func LoadAsync(srcs []string) *Loader {
	l := NewLoader()
	l.Start(srcs)
	return l
}

// Start 在后台加载 srcs，只有第一次调用生效。
func (l *Loader) Start(srcs []string) {
	l.start.Do(func() { go l.run(srcs) })
}

func (l *Loader) run(srcs []string) {
	defer close(l.ready)
	var wg sync.WaitGroup
	for _, src := range srcs {
		wg.Add(1)
		go func(src string) {
			defer wg.Done()
			data, err := Load(src)
			l.mu.Lock()
			defer l.mu.Unlock()
			if err != nil {
				l.errs[src] = err
				return
			}
			l.data[src] = data
		}(src)
	}
	wg.Wait()
}

// Ready 在加载完成后关闭。
func (l *Loader) Ready() <-chan struct{} { return l.ready }

func (l *Loader) done() bool {
	select {
	case <-l.ready:
		return true
	default:
		return false
	}
}

// Fetch 实现 Source，不阻塞。内置字体常驻内存，始终可用；其余字体在
// 加载完成前返回 ErrPending，完成后返回加载结果。不在加载列表中的来源
// 在完成后直接读取。
func (l *Loader) Fetch(src string) ([]byte, error) {
	if src == "" || IsBuiltin(src) {
		return Load(src)
	}
	if !l.done() {
		return nil, ErrPending
	}
	return l.lookup(src)
}

// Get 等待加载完成并返回 src 对应的数据，Start 之前调用会一直等待。
func (l *Loader) Get(src string) ([]byte, error) {
	<-l.ready
	return l.lookup(src)
}

func (l *Loader) lookup(src string) ([]byte, error) {
	l.mu.RLock()
	err, failed := l.errs[src]
	data, ok := l.data[src]
	l.mu.RUnlock()
	switch {
	case failed:
		return nil, err
	case ok:
		return data, nil
	}
	return Load(src)
}

// Err 等待加载完成，汇总所有失败。
func (l *Loader) Err() error {
	<-l.ready
	l.mu.RLock()
	defer l.mu.RUnlock()
	errs := make([]error, 0, len(l.errs))
	for _, err := range l.errs {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
