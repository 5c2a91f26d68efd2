package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ByLCY/fitbox/logger"
)

const pollInterval = 100 * time.Millisecond

// watchFile 在 path 被写入时调用 onChange，直到 ctx 结束。
// 优先使用 fsnotify 监听所在目录，失败时退回轮询修改时间。
func watchFile(ctx context.Context, path string, onChange func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.L().Warn("watch.fsnotify_unavailable", "err", err)
		pollFile(ctx, path, onChange)
		return
	}
	defer watcher.Close()

	// 监听目录比直接监听文件可靠，编辑器常以重命名方式保存
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.L().Warn("watch.add_failed", "dir", filepath.Dir(path), "err", err)
		pollFile(ctx, path, onChange)
		return
	}
	watchEvents(ctx, watcher, path, onChange)
}

func watchEvents(ctx context.Context, watcher *fsnotify.Watcher, path string, onChange func()) {
	baseName := filepath.Base(path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != baseName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			onChange()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.L().Warn("watch.error", "err", err)
		}
	}
}

func pollFile(ctx context.Context, path string, onChange func()) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	last := fileStamp(path)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cur := fileStamp(path); cur != last {
				last = cur
				onChange()
			}
		}
	}
}

type stamp struct {
	mod  time.Time
	size int64
}

func fileStamp(path string) stamp {
	info, err := os.Stat(path)
	if err != nil {
		return stamp{}
	}
	return stamp{mod: info.ModTime(), size: info.Size()}
}
