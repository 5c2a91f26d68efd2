package layout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ByLCY/fitbox/fit"
)

// 适配策略名。
const (
	StrategyClone   = "clone"
	StrategyInPlace = "inplace"
)

// FitSpec 是 DSL 中 fit 命令声明的会话参数；nil/零值字段沿用会话已有配置。
// Slack 大于 0 意味着 in-place 策略，与 clone 同时声明在构建时报错。
type FitSpec struct {
	MinSize        int            `json:"minSize,omitempty"`
	MaxSize        int            `json:"maxSize,omitempty"`
	Strategy       string         `json:"strategy,omitempty"`
	Slack          int            `json:"slack,omitempty"`
	Debounce       *time.Duration `json:"debounce,omitempty"`
	ObserveResize  *bool          `json:"observeResize,omitempty"`
	ObserveContent *bool          `json:"observeContent,omitempty"`
	FontRefit      *bool          `json:"fontRefit,omitempty"`
}

// Options 将声明转换为 fit.Option，host 用作 clone 策略的测量面宿主。
func (s FitSpec) Options(host fit.SurfaceHost) []fit.Option {
	var opts []fit.Option
	if s.MinSize > 0 || s.MaxSize > 0 {
		opts = append(opts, func(o *fit.Options) {
			if s.MinSize > 0 {
				o.MinSize = s.MinSize
			}
			if s.MaxSize > 0 {
				o.MaxSize = s.MaxSize
			}
		})
	}
	// slack 只对 in-place 有意义：声明了 slack 而未指定策略时同样切换到 in-place
	switch {
	case s.Strategy == StrategyClone:
		opts = append(opts, fit.WithStrategy(fit.Clone{Host: host}))
	case s.Strategy == StrategyInPlace || s.Slack > 0:
		opts = append(opts, fit.WithStrategy(fit.InPlace{Slack: s.Slack}))
	}
	if s.Debounce != nil {
		opts = append(opts, fit.WithDebounce(*s.Debounce))
	}
	if s.ObserveResize != nil {
		opts = append(opts, fit.WithContainerResize(*s.ObserveResize))
	}
	if s.ObserveContent != nil {
		opts = append(opts, fit.WithContentMutation(*s.ObserveContent))
	}
	if s.FontRefit != nil {
		opts = append(opts, fit.WithFontLoadRefit(*s.FontRefit))
	}
	return opts
}

func parseStrategy(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return "", nil
	case "clone", "offscreen":
		return StrategyClone, nil
	case "inplace", "in-place":
		return StrategyInPlace, nil
	default:
		return "", fmt.Errorf("未知的适配策略 %q（可选 clone/inplace）", v)
	}
}

// Sessions 是一个文档上挂接的全部适配会话。
type Sessions []*fit.Session

// Disconnect 断开全部会话。
func (s Sessions) Disconnect() {
	for _, sess := range s {
		sess.Disconnect()
	}
}

// Attach 为文档中每个文本节点创建适配会话。base 先于节点声明生效，
// 因此 DSL 中的 fit 参数会覆盖配置文件中的默认值。首次适配在下一次
// Layout 时执行。任一会话创建失败时，已创建的会话会被全部断开。
func (d *Document) Attach(base ...fit.Option) (Sessions, error) {
	var sessions Sessions
	for _, n := range d.Nodes() {
		opts := make([]fit.Option, 0, len(base)+8)
		opts = append(opts, base...)
		opts = append(opts, fit.WithSignals(d))
		opts = append(opts, n.fit.Options(d)...)
		sess, err := fit.FitFontToContainer(n, n.frame, opts...)
		if err != nil {
			sessions.Disconnect()
			return nil, fmt.Errorf("节点 %s 无法启动适配: %w", n.id, err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

// FitAll 同步适配所有节点一次，不挂接任何观察者，适合一次性渲染。
func (d *Document) FitAll(base ...fit.Option) error {
	var errs []error
	for _, n := range d.Nodes() {
		o := fit.DefaultOptions()
		for _, opt := range base {
			opt(&o)
		}
		for _, opt := range n.fit.Options(d) {
			opt(&o)
		}
		if err := o.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("节点 %s: %w", n.id, err))
			continue
		}
		strategy := o.Strategy
		if strategy == nil {
			strategy = fit.Clone{Host: d}
		}
		size, err := fit.Fit(n, n.frame, strategy, o.MinSize, o.MaxSize)
		if err != nil {
			errs = append(errs, fmt.Errorf("节点 %s: %w", n.id, err))
			continue
		}
		n.SetFontSize(size)
		n.SetAttr(fit.AttrSize, fmt.Sprint(size))
		if o.OnApplied != nil {
			o.OnApplied(size)
		}
	}
	return errors.Join(errs...)
}
