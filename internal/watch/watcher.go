// Package watch publishes an SSE event when the managed env file changes on
// disk outside of envkeep, so daemon clients see manual edits too.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/tsakani-green/envkeep/internal/sse"
)

// debounce window for editors that write a file several times per save
const debounce = 500 * time.Millisecond

// Watcher turns filesystem events on one env file into broadcaster events.
type Watcher struct {
	file        string
	watcher     *fsnotify.Watcher
	broadcaster *sse.Broadcaster
}

// New creates a watcher for file. The file's directory is watched, not the
// file itself, so rename-and-replace saves keep working.
func New(file string, b *sse.Broadcaster) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{file: abs, watcher: fw, broadcaster: b}, nil
}

// Run consumes events until ctx is cancelled. It blocks; run it in a
// goroutine.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.file {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if time.Since(last) < debounce {
				continue
			}
			last = time.Now()
			slog.Info("env file changed on disk", "file", w.file, "op", event.Op.String())
			w.broadcaster.Publish(sse.Event{
				Type: sse.EventEnvChanged,
				Data: map[string]string{"file": w.file, "op": event.Op.String()},
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("watch error", "file", w.file, "error", err)
		}
	}
}
