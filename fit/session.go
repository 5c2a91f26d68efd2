package fit

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
)

// Session 让一个目标持续适配一个容器，由 FitFontToContainer 创建，
// 直到 Disconnect 为止。
//
// 会话处于空闲或适配中两种状态。适配进行中到达的触发直接丢弃而不排队：
// 所有信号都经过去抖，信号停止后目标终会收敛。
//
// 调用方不应在同一对目标与容器上运行两个会话。
type Session struct {
	target    Target
	container Container
	opts      Options
	signals   Signals
	strategy  Strategy
	log       *slog.Logger

	busy     atomic.Bool
	debounce *Debouncer

	mu      sync.Mutex
	cancels []func()
	done    chan struct{}
	closed  bool
	last    int
}

// FitFontToContainer 为 container 中的 target 启动会话，opts 叠加在
// DefaultOptions 之上。目标此时可能还没有最终几何，首次适配经由
// Signals.AfterLayout 安排，而不是同步执行。
func FitFontToContainer(target Target, container Container, opts ...Option) (*Session, error) {
	if target == nil {
		return nil, ErrNilTarget
	}
	if container == nil {
		return nil, ErrNilContainer
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		target:    target,
		container: container,
		opts:      o,
		signals:   o.Signals,
		strategy:  o.Strategy,
		log:       o.Logger,
		done:      make(chan struct{}),
	}
	if s.signals == nil {
		s.signals = NopSignals{}
	}
	if s.strategy == nil {
		s.strategy = defaultStrategy(s.signals)
	}
	if s.log == nil {
		s.log = Logger()
	}
	s.debounce = NewDebouncer(o.Debounce, s.refitFromSignal)

	if err := s.connect(); err != nil {
		s.Disconnect()
		return nil, err
	}
	s.signals.AfterLayout(s.refitFromSignal)
	return s, nil
}

func defaultStrategy(sig Signals) Strategy {
	if host, ok := sig.(SurfaceHost); ok {
		return Clone{Host: host}
	}
	return InPlace{}
}

func (s *Session) connect() error {
	if s.opts.ObserveContainerResize {
		cancel, err := s.signals.ObserveResize(s.container, s.debounce.Trigger)
		switch {
		case errors.Is(err, errors.ErrUnsupported):
			s.log.Debug("fit.resize_fallback")
			cancel = s.signals.OnGlobalResize(s.debounce.Trigger)
		case err != nil:
			return fmt.Errorf("fit: 订阅容器尺寸变化失败: %w", err)
		}
		s.track(cancel)
	}
	if s.opts.ObserveContentMutation {
		cancel, err := s.signals.ObserveMutation(s.target, s.debounce.Trigger)
		switch {
		case errors.Is(err, errors.ErrUnsupported):
			s.log.Debug("fit.mutation_unsupported")
		case err != nil:
			return fmt.Errorf("fit: 订阅内容变化失败: %w", err)
		default:
			s.track(cancel)
		}
	}
	if s.opts.RefitOnFontLoad {
		if ready := s.signals.FontsReady(); ready != nil {
			go s.awaitFonts(ready)
		}
	}
	return nil
}

func (s *Session) track(cancel func()) {
	if cancel == nil {
		return
	}
	s.mu.Lock()
	s.cancels = append(s.cancels, cancel)
	s.mu.Unlock()
}

func (s *Session) awaitFonts(ready <-chan struct{}) {
	select {
	case <-ready:
		s.debounce.Trigger()
	case <-s.done:
	}
}

// Refit 按当前尺寸执行一轮适配：搜索、把字号写回目标、记录到 AttrSize 标记。
// 已有一轮在进行时什么也不做并返回 nil。测量出错时原样返回错误，本轮结果作废。
func (s *Session) Refit() error {
	if !s.busy.CompareAndSwap(false, true) {
		s.log.Debug("fit.refit_dropped")
		return nil
	}
	defer s.busy.Store(false)

	size, err := Fit(s.target, s.container, s.strategy, s.opts.MinSize, s.opts.MaxSize)
	if err != nil {
		return err
	}
	s.target.SetFontSize(size)
	s.target.SetAttr(AttrSize, strconv.Itoa(size))

	s.mu.Lock()
	s.last = size
	s.mu.Unlock()
	s.log.Debug("fit.refit_applied", "size", size)

	if s.opts.OnApplied != nil {
		s.opts.OnApplied(size)
	}
	return nil
}

func (s *Session) refitFromSignal() {
	if s.Closed() {
		return
	}
	if err := s.Refit(); err != nil {
		s.log.Warn("fit.refit_failed", "err", err)
	}
}

// LastSize 返回最近一次生效的字号，首次适配成功前为 0。
func (s *Session) LastSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Closed 判断是否已调用 Disconnect。
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Disconnect 释放全部订阅并取消尚未执行的去抖适配，不会打断正在进行的一轮。
// 重复调用无效果；之后仍可手动调用 Refit。
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancels := s.cancels
	s.cancels = nil
	close(s.done)
	s.mu.Unlock()

	s.debounce.Stop()
	for _, cancel := range cancels {
		cancel()
	}
}
