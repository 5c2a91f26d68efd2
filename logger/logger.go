// Package logger 为命令行配置 slog：级别、text/json 格式、可选日志文件。
// 配置后的 logger 同时注册为 fit 包的日志输出。
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ByLCY/fitbox/fit"
)

type Config struct {
	// Level 取 debug|info|warn|error，空值为 info。
	Level string
	// Format 取 text|json，空值为 text。
	Format string
	// File 非空时追加写入该文件，否则写入 Writer。
	File string
	// Writer 为空时使用 os.Stderr。
	Writer io.Writer
}

var (
	mu      sync.RWMutex
	global  = slog.New(slog.NewTextHandler(io.Discard, nil))
	logFile *os.File
)

// Setup 按 cfg 创建全局 logger 并返回清理函数。失败时全局 logger 退回丢弃模式。
func Setup(cfg Config) (func() error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		setDiscard()
		return nil, err
	}

	var (
		w = cfg.Writer
		f *os.File
	)
	if w == nil {
		w = os.Stderr
	}
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			setDiscard()
			return nil, fmt.Errorf("创建日志目录失败: %w", err)
		}
		f, err = os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			setDiscard()
			return nil, fmt.Errorf("打开日志文件失败: %w", err)
		}
		w = f
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				t := a.Value.Time().UTC()
				a.Value = slog.StringValue(t.Format(time.RFC3339Nano))
			}
			return a
		},
	}

	var h slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		if f != nil {
			_ = f.Close()
		}
		setDiscard()
		return nil, fmt.Errorf("未知的日志格式 %q（可选 text|json）", cfg.Format)
	}

	l := slog.New(h)

	mu.Lock()
	global = l
	logFile = f
	mu.Unlock()
	fit.SetLogger(l)

	l.Debug("logger.initialized", "level", level.String(), "file", cfg.File)

	cleanup := func() error {
		mu.Lock()
		defer mu.Unlock()

		var cerr error
		if logFile != nil {
			cerr = logFile.Close()
		}
		logFile = nil
		global = slog.New(slog.NewTextHandler(io.Discard, nil))
		fit.SetLogger(nil)
		return cerr
	}
	return cleanup, nil
}

// L 返回当前全局 logger。
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

// ParseLevel 解析日志级别名称。
func ParseLevel(v string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("未知的日志级别 %q", v)
	}
}

func setDiscard() {
	mu.Lock()
	defer mu.Unlock()
	global = slog.New(slog.NewTextHandler(io.Discard, nil))
	logFile = nil
	fit.SetLogger(nil)
}
