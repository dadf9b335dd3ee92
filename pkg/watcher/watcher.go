package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Dicklesworthstone/chess_viewer/pkg/logging"
)

// DefaultPollInterval is how often the polling fallback stats the file.
const DefaultPollInterval = time.Second

// Watcher calls OnChange after the watched file is written, created or
// replaced. Editors that save by renaming a temp file over the target are
// handled by watching the parent directory.
type Watcher struct {
	path     string
	onChange func(path string)

	debouncer    *Debouncer
	pollInterval time.Duration
	forcePoll    bool
	logger       *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	polling bool
}

// Option customises a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debouncer = NewDebouncer(d) }
}

// WithPollInterval sets the fallback poll interval
func WithPollInterval(d time.Duration) Option { return func(w *Watcher) { w.pollInterval = d } }

// WithPolling forces the polling fallback
func WithPolling() Option { return func(w *Watcher) { w.forcePoll = true } }

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option { return func(w *Watcher) { w.logger = l } }

// New prepares a watcher for path. Nothing happens until Start.
func New(path string, onChange func(path string), opts ...Option) (*Watcher, error) {
	if onChange == nil {
		return nil, errors.New("watcher: nil change callback")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w := &Watcher{
		path:         abs,
		onChange:     onChange,
		debouncer:    NewDebouncer(DefaultDebounce),
		pollInterval: DefaultPollInterval,
	}
	for _, o := range opts {
		o(w)
	}
	w.logger = logging.Component(w.logger, "watcher").With("path", abs)
	return w, nil
}

// Path returns the absolute path being watched
func (w *Watcher) Path() string {
	return w.path
}

// Polling returns true if the watcher fell back to polling
func (w *Watcher) Polling() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.polling
}

// Start begins watching until Stop or ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return errors.New("watcher already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	if !w.forcePoll {
		fsw, err := fsnotify.NewWatcher()
		if err == nil {
			if err = fsw.Add(filepath.Dir(w.path)); err == nil {
				w.wg.Add(1)
				go w.notifyLoop(ctx, fsw)
				return nil
			}
			fsw.Close()
		}
		w.logger.Warn("fsnotify unavailable, polling", "error", err)
	}

	w.polling = true
	w.wg.Add(1)
	go w.pollLoop(ctx)
	return nil
}

// Stop ends watching and drops any pending notification. It is safe to call
// more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
	w.debouncer.Cancel()
}

func (w *Watcher) changed() {
	w.debouncer.Trigger(func() {
		w.logger.Debug("file changed")
		w.onChange(w.path)
	})
}

func (w *Watcher) notifyLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer w.wg.Done()
	defer fsw.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.changed()
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) pollLoop(ctx context.Context) {
	defer w.wg.Done()
	last := w.stamp()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cur := w.stamp(); cur != last {
				last = cur
				w.changed()
			}
		}
	}
}

type fileStamp struct {
	mod  time.Time
	size int64
}

func (w *Watcher) stamp() fileStamp {
	info, err := os.Stat(w.path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{mod: info.ModTime(), size: info.Size()}
}
