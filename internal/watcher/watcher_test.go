package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recreate-run/multimodal-analyzer/internal/logger"
	"github.com/recreate-run/multimodal-analyzer/internal/models"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
	ch    chan string
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan string, 16)}
}

func (r *recorder) handle(ctx context.Context, path string) error {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	r.ch <- path
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.paths)
}

func startWatcher(t *testing.T, dir string, handler Handler) context.CancelFunc {
	t.Helper()
	w, err := New(Options{
		Dir:           dir,
		MediaType:     models.MediaImage,
		Debounce:      100 * time.Millisecond,
		MaxConcurrent: 2,
	}, handler, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
		w.Stop()
	})
	return cancel
}

func TestWatcherHandlesNewMediaFiles(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, rec.handle)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".partial.png"), []byte("x"), 0644))
	image := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(image, []byte("x"), 0644))

	select {
	case got := <-rec.ch:
		assert.Equal(t, image, got)
	case <-time.After(5 * time.Second):
		t.Fatal("image was not handled")
	}

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestWatcherDebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	rec := newRecorder()
	startWatcher(t, dir, rec.handle)

	image := filepath.Join(dir, "growing.jpg")
	f, err := os.Create(image)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := f.Write([]byte("chunk"))
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	select {
	case got := <-rec.ch:
		assert.Equal(t, image, got)
	case <-time.After(5 * time.Second):
		t.Fatal("image was not handled")
	}

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestNewRejectsMissingDirectory(t *testing.T) {
	_, err := New(Options{Dir: filepath.Join(t.TempDir(), "missing"), MediaType: models.MediaImage}, nil, logger.NewNop())
	assert.Error(t, err)
}
