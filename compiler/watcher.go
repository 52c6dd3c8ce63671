package compiler

import (
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/kungfusheep/phenix/db"
)

// FileWatcher implements db.Watcher over fsnotify, the Go analogue of
// original_source's `notify`-crate-backed vfs watcher
// (phenix-compiler/src/vfs.rs). Events arriving within coalesceWindow of
// the first one are batched into a single Watch() return, since editors
// commonly emit several events (write, chmod, rename-back) for one save.
type FileWatcher struct {
	watcher        *fsnotify.Watcher
	coalesceWindow time.Duration
}

// NewFileWatcher starts watching the given paths (typically every reachable
// .phenix file) for changes.
func NewFileWatcher(paths []string, coalesceWindow time.Duration) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := w.Add(p); err != nil {
			w.Close()
			return nil, err
		}
	}
	if coalesceWindow <= 0 {
		coalesceWindow = 100 * time.Millisecond
	}
	return &FileWatcher{watcher: w, coalesceWindow: coalesceWindow}, nil
}

// Watch blocks until fsnotify reports at least one event, then drains
// whatever else arrives within the coalesce window before returning the
// batch. ok is false once the underlying watcher's event channel is closed
// or the watcher reports an error while Watch waits for the first event.
func (f *FileWatcher) Watch() ([]db.Change, bool) {
	change, ok := f.nextChange()
	if !ok {
		return nil, false
	}

	changes := []db.Change{change}

	timer := time.NewTimer(f.coalesceWindow)
	defer timer.Stop()

	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return changes, true
			}
			changes = append(changes, changeFromEvent(event))
		case <-timer.C:
			return changes, true
		}
	}
}

func (f *FileWatcher) nextChange() (db.Change, bool) {
	select {
	case event, ok := <-f.watcher.Events:
		if !ok {
			return db.Change{}, false
		}
		return changeFromEvent(event), true
	case <-f.watcher.Errors:
		return db.Change{}, false
	}
}

func changeFromEvent(event fsnotify.Event) db.Change {
	kind := db.ChangeModified
	switch {
	case event.Has(fsnotify.Create):
		kind = db.ChangeCreated
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		kind = db.ChangeRemoved
	}
	return db.Change{Path: event.Name, Kind: kind}
}

// Close implements db.Watcher.
func (f *FileWatcher) Close() error {
	return f.watcher.Close()
}

// NoWatcher implements db.Watcher for a single compile-and-exit run (no
// --watch flag): Watch reports ok=false immediately, per db.Watcher's own
// documented contract for "no watcher attached".
type NoWatcher struct{}

// Watch implements db.Watcher.
func (NoWatcher) Watch() ([]db.Change, bool) { return nil, false }

// Close implements db.Watcher.
func (NoWatcher) Close() error { return nil }
