package cli

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ByLCY/fitbox/fit"
	"github.com/ByLCY/fitbox/fonts"
	"github.com/ByLCY/fitbox/layout"
	"github.com/ByLCY/fitbox/logger"
)

const (
	// reloadDebounce 合并编辑器保存时产生的连续写事件。
	reloadDebounce = 50 * time.Millisecond
	renderDebounce = 150 * time.Millisecond
)

func watchCmd(root *rootOptions) *cobra.Command {
	var input, output, dataJSON, debugJSON, format string

	c := &cobra.Command{
		Use:   "watch",
		Short: "Keep fit sessions connected and re-render whenever the scene changes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, cleanup, err := root.setup()
			defer cleanup()
			if err != nil {
				return err
			}

			f, err := resolveFormat(format, output, cfg.Render.Format)
			if err != nil {
				return err
			}
			p, err := newPipeline(input, dataJSON, f, cfg)
			if err != nil {
				return err
			}

			w := newWatcher(p, outputPath(input, output, f), debugJSON, logger.L())
			defer w.close()
			if err := w.start(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", styles.label.Render("监听中"), input)

			watchFile(cmd.Context(), input, w.reloads.Trigger)
			return nil
		},
	}

	c.Flags().StringVarP(&input, "input", "i", "", "Scene file (required)")
	c.Flags().StringVarP(&output, "output", "o", "", "Output file (defaults to the scene name with the format extension)")
	c.Flags().StringVar(&dataJSON, "data", "", "JSON data bound to ${...} placeholders")
	c.Flags().StringVar(&debugJSON, "debug-json", "", "Write the layout snapshot as JSON to this path on every render")
	c.Flags().StringVarP(&format, "format", "f", "", "Output format: pdf|svg|png")

	_ = c.MarkFlagRequired("input")
	return c
}

// sceneWatcher 持有在线文档与其会话。场景文件变化时把新内容增量应用到在线
// 文档上，由会话自行重新适配；每次适配结果都会触发一次去抖后的重新渲染。
type sceneWatcher struct {
	p         *pipeline
	out       string
	debugJSON string
	log       *slog.Logger

	reloads  *fit.Debouncer
	renders  *fit.Debouncer
	rendered func(error)

	mu       sync.Mutex
	doc      *layout.Document
	sessions layout.Sessions
}

func newWatcher(p *pipeline, out, debugJSON string, log *slog.Logger) *sceneWatcher {
	w := &sceneWatcher{p: p, out: out, debugJSON: debugJSON, log: log}
	w.reloads = fit.NewDebouncer(reloadDebounce, func() {
		if err := w.reload(); err != nil {
			w.log.Error("watch.reload_failed", "err", err)
		}
	})
	w.renders = fit.NewDebouncer(renderDebounce, w.renderNow)
	return w
}

// start 构建初始文档、挂接会话并执行首次布局（即首次适配）。
func (w *sceneWatcher) start() error {
	doc, loader, err := w.p.build()
	if err != nil {
		return err
	}
	if err := w.attach(doc, loader); err != nil {
		return err
	}
	w.renders.Trigger()
	return nil
}

// attach 用 doc 替换在线文档，旧会话随之断开。字体改由 doc 自己的加载器提供，
// 加载完成时会话按字体就绪信号重新适配。
func (w *sceneWatcher) attach(doc *layout.Document, loader *fonts.Loader) error {
	w.p.useFonts(loader)
	opts := append(w.p.cfg.Options(), fit.WithOnApplied(func(int) { w.renders.Trigger() }))
	sessions, err := doc.Attach(opts...)
	if err != nil {
		return err
	}
	w.mu.Lock()
	old := w.sessions
	w.doc, w.sessions = doc, sessions
	w.mu.Unlock()
	old.Disconnect()

	doc.Layout()
	w.log.Info("watch.attached", "sessions", len(sessions))
	return nil
}

// reload 重新解析场景。frame 与节点集合不变时增量应用，否则重建文档。
func (w *sceneWatcher) reload() error {
	next, loader, err := w.p.build()
	if err != nil {
		return err
	}
	w.mu.Lock()
	live := w.doc
	w.mu.Unlock()

	report := layout.Apply(live, next)
	switch {
	case report.Structural:
		w.log.Info("watch.rebuild")
		if err := w.attach(next, loader); err != nil {
			return err
		}
		w.renders.Trigger()
	case report.Empty():
		w.log.Debug("watch.unchanged")
	default:
		w.log.Info("watch.applied", "resized", report.Resized, "changed", report.Changed)
		w.renders.Trigger()
	}
	return nil
}

func (w *sceneWatcher) renderNow() {
	w.mu.Lock()
	doc := w.doc
	w.mu.Unlock()
	if doc == nil {
		return
	}
	err := w.p.write(doc, w.out, w.debugJSON)
	if err != nil {
		w.log.Error("watch.render_failed", "err", err)
	} else {
		w.log.Info("watch.rendered", "out", w.out)
	}
	if w.rendered != nil {
		w.rendered(err)
	}
}

func (w *sceneWatcher) current() *layout.Document {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.doc
}

func (w *sceneWatcher) close() {
	w.reloads.Stop()
	w.renders.Stop()
	w.mu.Lock()
	sessions := w.sessions
	w.sessions = nil
	w.mu.Unlock()
	sessions.Disconnect()
}
