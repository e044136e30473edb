// Package watch pushes document-change notifications to connected editing
// surfaces so open graph views can re-fetch when the backing file changes
// underneath them. It is a convenience for interactive editing; the
// reconciliation path never depends on it.
package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vk/rockiq/internal/ctxlog"
)

// Watcher observes one file and invokes a handler after changes settle.
//
// File saves often arrive as bursts of write events (editors truncate,
// write, rename), so events are debounced: the handler fires once per burst,
// after the debounce window passes without further events.
type Watcher struct {
	path     string
	debounce time.Duration
	onChange func()
	fsw      *fsnotify.Watcher
}

// New returns a watcher for path that calls onChange after each settled
// change. The watch is registered on the parent directory because editors
// that replace the file would otherwise detach the watch.
func New(path string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}
	return &Watcher{
		path:     filepath.Clean(path),
		debounce: debounce,
		onChange: onChange,
		fsw:      fsw,
	}, nil
}

// Run processes events until the context is cancelled. It closes the
// underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	defer w.fsw.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Document watcher stopping.", "path", w.path)
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("Document change detected.", "path", w.path, "op", ev.Op.String())
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				fire = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
		case <-fire:
			timer = nil
			fire = nil
			logger.Debug("Document change settled, notifying.", "path", w.path)
			w.onChange()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("Document watcher error.", "path", w.path, "error", err)
		}
	}
}
