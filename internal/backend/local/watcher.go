package local

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/esurat/internal/backend"
)

const settleDelay = 200 * time.Millisecond

// Watch observes the database directory for writes made by other processes
// sharing the same file and reports the collections whose content changed.
// Writes made through this Backend are remembered and not reported.
func (b *Backend) Watch(ctx context.Context, fn backend.ChangeFunc) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	dir := filepath.Dir(b.kv.Path())
	if err := w.Add(dir); err != nil {
		return err
	}
	base := filepath.Base(b.kv.Path())

	// Prime the checksums so the first foreign write is detected.
	if _, err := b.changed(ctx); err != nil {
		b.logger.Warn("watcher: initial scan failed", slog.String("error", err.Error()))
	}

	b.logger.Info("watcher: started", slog.String("path", b.kv.Path()))

	var settle *time.Timer
	var settleCh <-chan time.Time

	schedule := func() {
		if settle == nil {
			settle = time.NewTimer(settleDelay)
			settleCh = settle.C
		} else {
			settle.Reset(settleDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			b.logger.Info("watcher: stopped")
			return nil

		case <-settleCh:
			changed, err := b.changed(ctx)
			if err != nil {
				b.logger.Warn("watcher: scan failed", slog.String("error", err.Error()))
				continue
			}
			for _, c := range changed {
				b.logger.Debug("watcher: collection changed", slog.String("collection", string(c)))
				fn(c)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !strings.HasPrefix(filepath.Base(ev.Name), base) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			b.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
