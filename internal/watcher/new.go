package watcher

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/semaphore"

	"github.com/recreate-run/multimodal-analyzer/internal/logger"
	"github.com/recreate-run/multimodal-analyzer/internal/media"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

// Options configure a Watcher.
type Options struct {
	Dir       string
	MediaType models.MediaType
	// Debounce is how long a file must stay quiet before it is handled.
	Debounce      time.Duration
	MaxConcurrent int
}

// New creates a Watcher over opts.Dir. Only files in the media type's
// allow-list reach handler.
func New(opts Options, handler Handler, log logger.Logger) (Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := fw.Add(opts.Dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}

	return &implWatcher{
		opts:     opts,
		allowed:  media.ExtensionSet(opts.MediaType),
		handler:  handler,
		logger:   log,
		watcher:  fw,
		sem:      semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		settled:  make(chan string),
		timers:   make(map[string]*time.Timer),
		stopping: make(chan struct{}),
	}, nil
}
