package fit

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger 设置包级日志器，供未通过 WithLogger 指定日志器的会话使用。
// 默认不输出任何日志，传入 nil 恢复默认。
//
// 级别：
//   - Debug：适配过程、被丢弃的触发、观察者回退
//   - Warn：信号触发的适配失败
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger 返回包级日志器。
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
