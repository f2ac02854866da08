package watcher

import "context"

// Watcher analyzes media files as they appear in a directory.
type Watcher interface {
	// Start blocks until ctx is done, then waits for in-flight handlers.
	Start(ctx context.Context) error
	Stop() error
}

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error
