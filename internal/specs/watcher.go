package specs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	apperrors "cvranker/internal/errors"
)

// Watcher reloads specifications when files under the specs directory
// change. Reloads are debounced because editors emit bursts of events.
type Watcher struct {
	loader   *Loader
	logger   *apperrors.Logger
	onReload func(*LoadResult)
	debounce time.Duration

	mu      sync.Mutex
	watcher *fsnotify.Watcher
	timer   *time.Timer
	done    chan struct{}
}

// NewWatcher creates a watcher that calls onReload with every successful
// reload result.
func NewWatcher(loader *Loader, logger *apperrors.Logger, onReload func(*LoadResult)) *Watcher {
	return &Watcher{
		loader:   loader,
		logger:   logger,
		onReload: onReload,
		debounce: 500 * time.Millisecond,
		done:     make(chan struct{}),
	}
}

// Start begins watching the specs directory and its roles subdirectory.
func (w *Watcher) Start() error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return apperrors.NewInternalError("WATCHER_FAILED", "Failed to create file watcher", err)
	}

	if err := fsWatcher.Add(w.loader.dir); err != nil {
		_ = fsWatcher.Close()
		return apperrors.NewIOError("WATCHER_FAILED",
			"Failed to watch specs directory: "+w.loader.dir, err)
	}
	// roles/ may not exist yet; watching it is best effort
	if err := fsWatcher.Add(filepath.Join(w.loader.dir, rolesSubdir)); err != nil {
		w.logger.Debug("Not watching roles subdirectory", "error", err.Error())
	}

	w.mu.Lock()
	w.watcher = fsWatcher
	w.mu.Unlock()

	go w.run()
	w.logger.Info("Watching specs directory for changes", "dir", w.loader.dir)
	return nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !isSpecFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.scheduleReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("Spec watcher error", "error", err.Error())
		case <-w.done:
			return
		}
	}
}

func isSpecFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	result, err := w.loader.Load()
	if err != nil {
		w.logger.LogError(err, "Spec reload failed; keeping previous specs")
		return
	}
	w.logger.Info("Specs reloaded",
		"roles", len(result.Project.Roles),
		"errors", len(result.Errors))
	w.onReload(result)
}

// Stop ends watching. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	select {
	case <-w.done:
		return
	default:
		close(w.done)
	}
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
	if w.timer != nil {
		w.timer.Stop()
	}
}
