package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is used when no positive debounce is given.
const DefaultDebounce = 300 * time.Millisecond

// Handler is called after the watched file settles.
type Handler func(ctx context.Context) error

// Watcher re-runs a handler whenever a file changes. Events are debounced so
// an editor's write-rename sequence triggers one run.
type Watcher struct {
	path     string
	debounce time.Duration
	handler  Handler
	logger   zerolog.Logger
}

// New creates a watcher for path
func New(path string, debounce time.Duration, handler Handler, logger zerolog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		handler:  handler,
		logger:   logger.With().Str("component", "watch").Str("file", path).Logger(),
	}
}

// Run calls the handler once, then again after each change, until ctx ends.
// Handler errors are logged and do not stop the watch.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory: editors often replace the file rather than write it
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}

	w.run(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug().Str("op", event.Op.String()).Msg("file event")
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("watch error")
		case <-timer.C:
			w.run(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *Watcher) run(ctx context.Context) {
	if err := w.handler(ctx); err != nil {
		w.logger.Error().Err(err).Msg("re-plan failed")
	}
}
