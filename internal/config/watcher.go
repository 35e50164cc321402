package config

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounceInterval coalesces the burst of events one save produces
const DefaultDebounceInterval = 200 * time.Millisecond

// Watcher reloads a config file when it changes on disk and hands every valid
// result to OnChange. Invalid edits are logged and skipped.
type Watcher struct {
	path     string
	onChange func(*Config)
	logger   *zap.Logger
	debounce time.Duration

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	timer     *time.Timer
	stopCh    chan struct{}
	done      chan struct{}
	running   bool
}

// NewWatcher creates a watcher for path. Nothing is watched until Start.
func NewWatcher(path string, onChange func(*Config), logger *zap.Logger) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	if onChange == nil {
		return nil, errors.New("onChange callback is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     abs,
		onChange: onChange,
		logger:   logger.Named("config"),
		debounce: DefaultDebounceInterval,
	}, nil
}

// Start begins watching. Editors replace files by rename, so the directory is
// watched rather than the file itself.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsWatcher.Add(filepath.Dir(w.path)); err != nil {
		fsWatcher.Close()
		return err
	}

	w.fsWatcher = fsWatcher
	w.stopCh = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true

	// Capture channels before releasing the lock; Stop swaps them out
	go w.processEvents(fsWatcher.Events, fsWatcher.Errors, w.stopCh, w.done)

	w.logger.Info("watching config", zap.String("path", w.path))
	return nil
}

// Stop ends watching. Pending reloads are discarded. Safe to call repeatedly.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	close(w.stopCh)
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	fsWatcher, done := w.fsWatcher, w.done
	w.fsWatcher = nil
	w.mu.Unlock()

	err := fsWatcher.Close()
	<-done
	return err
}

func (w *Watcher) processEvents(events <-chan fsnotify.Event, errs <-chan error, stopCh, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stopCh:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return
	}
	w.logger.Debug("config file changed", zap.String("op", event.Op.String()))
	w.triggerReloadDebounced()
}

func (w *Watcher) triggerReloadDebounced() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("ignoring invalid config", zap.Error(err))
		return
	}

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	if running {
		w.onChange(cfg)
	}
}
