// Package watch reports changes to a single file, such as a CIB dump that
// is being edited or re-exported.
package watch

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 200 * time.Millisecond

// minTick bounds how often the debounce loop polls.
const minTick = time.Millisecond

// Watcher emits on Events after the watched file changes and has been quiet
// for the debounce interval. The parent directory is watched rather than the
// file itself so that atomic replacement (write to temp, rename over) is seen.
type Watcher struct {
	Path   string
	Events <-chan struct{}

	events   chan struct{}
	done     chan struct{}
	debounce time.Duration
	watcher  *fsnotify.Watcher
	log      *zap.SugaredLogger
}

// New creates a watcher for path. log may be nil.
func New(path string, debounce time.Duration, log *zap.SugaredLogger) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	// Capacity 1: a pending notification already means "re-read the file".
	ch := make(chan struct{}, 1)
	return &Watcher{
		Path:     abs,
		Events:   ch,
		events:   ch,
		done:     make(chan struct{}),
		debounce: debounce,
		watcher:  fw,
		log:      log,
	}, nil
}

// Start begins watching. On error the watcher is released and must not be
// stopped.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		_ = w.watcher.Close()
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Events channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.events)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(max(w.debounce/2, minTick))
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				if !pending.IsZero() {
					w.emit()
				}
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.log.Debugw("watched file changed", "path", w.Path, "op", event.Op.String())
				pending = time.Now()
			}

		case <-ticker.C:
			if !pending.IsZero() && time.Since(pending) >= w.debounce {
				w.emit()
				pending = time.Time{}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnw("file watch error", "path", w.Path, "error", err)
		}
	}
}

func (w *Watcher) emit() {
	select {
	case w.events <- struct{}{}:
	default:
	}
}
