package fit

import "errors"

// Signals 是会话订阅的宿主环境信号源。会话不直接访问进程级事件，
// 任何宿主（包括测试）都可以驱动它。
//
// 回调可能在任意 goroutine 中执行。
type Signals interface {
	// ObserveResize 在 c 尺寸变化时调用 fn。不支持逐元素观察的宿主返回
	// errors.ErrUnsupported，会话随之退回 OnGlobalResize。
	ObserveResize(c Container, fn func()) (cancel func(), err error)
	// ObserveMutation 在 t 的文本或子节点变化时调用 fn。属性与样式的修改
	// 不算内容变化。
	ObserveMutation(t Target, fn func()) (cancel func(), err error)
	// OnGlobalResize 在宿主级别的任意尺寸变化时调用 fn。
	OnGlobalResize(fn func()) (cancel func())
	// FontsReady 在待加载字体全部完成后关闭。nil 表示宿主不加载字体。
	FontsReady() <-chan struct{}
	// AfterLayout 安排 fn 在下一次布局之后执行。
	AfterLayout(fn func())
}

// NopSignals 是没有任何观察能力的宿主，AfterLayout 在新 goroutine 中执行回调。
type NopSignals struct{}

var _ Signals = NopSignals{}

// ObserveResize 实现 Signals。
func (NopSignals) ObserveResize(Container, func()) (func(), error) {
	return nil, errors.ErrUnsupported
}

// ObserveMutation 实现 Signals。
func (NopSignals) ObserveMutation(Target, func()) (func(), error) {
	return nil, errors.ErrUnsupported
}

// OnGlobalResize 实现 Signals。
func (NopSignals) OnGlobalResize(func()) func() { return func() {} }

// FontsReady 实现 Signals。
func (NopSignals) FontsReady() <-chan struct{} { return nil }

// AfterLayout 实现 Signals。
func (NopSignals) AfterLayout(fn func()) { go fn() }
