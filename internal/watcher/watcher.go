package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/semaphore"

	"github.com/recreate-run/multimodal-analyzer/internal/logger"
	"github.com/recreate-run/multimodal-analyzer/internal/media"
)

type implWatcher struct {
	opts    Options
	allowed map[string]bool
	handler Handler
	logger  logger.Logger
	watcher *fsnotify.Watcher
	sem     *semaphore.Weighted
	wg      sync.WaitGroup

	// settled receives paths whose debounce timer fired.
	settled  chan string
	timers   map[string]*time.Timer
	stopping chan struct{}
}

// Start watches the directory until ctx is done. Handlers run with a context
// that is not canceled by ctx, so in-flight analyses finish before Start returns.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Watching %s for %s files (max concurrent: %d)", w.opts.Dir, w.opts.MediaType, w.opts.MaxConcurrent)
	defer close(w.stopping)

	for {
		select {
		case <-ctx.Done():
			for _, t := range w.timers {
				t.Stop()
			}
			w.logger.Info(ctx, "Waiting for ongoing analyses to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "File watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.accepts(event.Name) {
				w.logger.Debug(ctx, "Ignoring %s", event.Name)
				continue
			}
			w.debounce(event.Name)

		case path := <-w.settled:
			delete(w.timers, path)
			w.logger.Info(ctx, "New %s detected: %s", w.opts.MediaType, path)
			w.dispatch(ctx, path)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

// debounce restarts the quiet period for path.
func (w *implWatcher) debounce(path string) {
	if t, ok := w.timers[path]; ok {
		t.Reset(w.opts.Debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case w.settled <- path:
		case <-w.stopping:
		}
	})
}

func (w *implWatcher) dispatch(ctx context.Context, path string) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		if err := w.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer w.sem.Release(1)

		if err := w.handler(context.WithoutCancel(ctx), path); err != nil {
			w.logger.Error(ctx, "Failed to process %s: %v", path, err)
		}
	}()
}

// accepts skips hidden files, which editors and downloaders use for partial writes.
func (w *implWatcher) accepts(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return w.allowed[media.Ext(path)]
}
