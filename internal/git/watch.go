package git

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/chmouel/lazycommit/internal/log"
)

const indexFile = "index"

// GitDirResolver resolves the git directory for the current repository.
type GitDirResolver interface {
	GitDir(ctx context.Context) (string, error)
}

// IndexWatcher flags the staged snapshot as stale when the git index changes.
type IndexWatcher struct {
	mu       sync.Mutex
	started  bool
	stale    atomic.Bool
	done     chan struct{}
	watcher  *fsnotify.Watcher
	resolver GitDirResolver
	logger   *zap.Logger
}

// NewIndexWatcher creates a watcher; call Start to begin watching.
func NewIndexWatcher(resolver GitDirResolver, logger *zap.Logger) *IndexWatcher {
	return &IndexWatcher{
		resolver: resolver,
		logger:   log.OrNop(logger),
	}
}

// Start resolves the git directory and starts the background goroutine.
func (w *IndexWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	gitDir, err := w.resolver.GitDir(ctx)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// The index is replaced through index.lock, so watch the directory.
	if err := watcher.Add(gitDir); err != nil {
		_ = watcher.Close()
		return err
	}

	w.started = true
	w.watcher = watcher
	w.done = make(chan struct{})
	go w.run(watcher, w.done)
	return nil
}

// Stop stops the background goroutine and closes the watcher.
func (w *IndexWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	close(w.done)
	w.started = false
	_ = w.watcher.Close()
}

// Stale reports whether the index changed since the last Reset.
func (w *IndexWatcher) Stale() bool {
	return w.stale.Load()
}

// Reset marks the current index as the reference snapshot.
func (w *IndexWatcher) Reset() {
	w.stale.Store(false)
}

func (w *IndexWatcher) run(watcher *fsnotify.Watcher, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Base(event.Name) != indexFile {
				continue
			}
			w.logger.Debug("git index changed", zap.String("op", event.Op.String()))
			w.stale.Store(true)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("index watcher error", zap.Error(err))
		}
	}
}
