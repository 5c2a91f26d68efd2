package fit

import (
	"fmt"
	"log/slog"
	"time"
)

// DefaultOptions 使用的默认值。
const (
	DefaultMinSize  = 8
	DefaultMaxSize  = 512
	DefaultDebounce = 100 * time.Millisecond
)

// Options 是会话创建时固定下来的配置。
type Options struct {
	MinSize int
	MaxSize int

	ObserveContainerResize bool
	ObserveContentMutation bool
	RefitOnFontLoad        bool

	// Debounce 是最后一次信号到执行适配之间的静默时长。
	Debounce time.Duration

	// Strategy 负责测量候选字号。为 nil 时，Signals 同时实现 SurfaceHost
	// 则用 Clone，否则用 InPlace。
	Strategy Strategy
	// Signals 是宿主环境的信号源，nil 即 NopSignals。
	Signals Signals
	// OnApplied 在每次适配成功后以生效字号调用。
	OnApplied func(size int)
	// Logger 覆盖包级日志器。
	Logger *slog.Logger
}

// DefaultOptions 返回默认配置：字号 8 至 512，两类观察者开启，去抖 100ms，
// 字体加载完成后重新适配一次。
func DefaultOptions() Options {
	return Options{
		MinSize:                DefaultMinSize,
		MaxSize:                DefaultMaxSize,
		ObserveContainerResize: true,
		ObserveContentMutation: true,
		RefitOnFontLoad:        true,
		Debounce:               DefaultDebounce,
	}
}

// Validate 检查数值范围。
func (o Options) Validate() error {
	if o.MinSize < 1 {
		return fmt.Errorf("%w: 最小字号 %d 小于 1", ErrInvalidOptions, o.MinSize)
	}
	if o.MaxSize < o.MinSize {
		return fmt.Errorf("%w: 最大字号 %d 小于最小字号 %d", ErrInvalidOptions, o.MaxSize, o.MinSize)
	}
	if o.Debounce < 0 {
		return fmt.Errorf("%w: 去抖时长 %s 为负数", ErrInvalidOptions, o.Debounce)
	}
	return nil
}

// Option 配置一个会话。
type Option func(*Options)

// WithOptions 整体替换配置，通常来自配置文件。其后的 Option 仍会叠加生效。
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

// WithSizeRange 设置搜索区间（闭区间）。
func WithSizeRange(minSize, maxSize int) Option {
	return func(o *Options) {
		o.MinSize = minSize
		o.MaxSize = maxSize
	}
}

// WithContainerResize 控制容器尺寸变化时是否重新适配。
func WithContainerResize(on bool) Option {
	return func(o *Options) { o.ObserveContainerResize = on }
}

// WithContentMutation 控制内容变化时是否重新适配。
func WithContentMutation(on bool) Option {
	return func(o *Options) { o.ObserveContentMutation = on }
}

// WithFontLoadRefit 控制字体加载完成后的一次性适配。
func WithFontLoadRefit(on bool) Option {
	return func(o *Options) { o.RefitOnFontLoad = on }
}

// WithDebounce 设置去抖时长。
func WithDebounce(d time.Duration) Option {
	return func(o *Options) { o.Debounce = d }
}

// WithStrategy 设置测量策略。
func WithStrategy(s Strategy) Option {
	return func(o *Options) { o.Strategy = s }
}

// WithSignals 注入宿主环境的信号源。
func WithSignals(s Signals) Option {
	return func(o *Options) { o.Signals = s }
}

// WithOnApplied 注册每次适配生效后调用的回调。
func WithOnApplied(fn func(size int)) Option {
	return func(o *Options) { o.OnApplied = fn }
}

// WithLogger 设置会话日志器。
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
