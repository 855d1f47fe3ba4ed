package pythonenv

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kiteco/pyinfer/kite-golib/errors"
	"github.com/kiteco/pyinfer/kite-golib/kitelog"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// EventType is the kind of change a file went through
type EventType int

const (
	// UnrecognizedEvent is not reported
	UnrecognizedEvent EventType = iota
	// ModifiedEvent reports a created, written or renamed-to file
	ModifiedEvent
	// RemovedEvent reports a deleted file
	RemovedEvent
)

// Event is a change to a python file
type Event struct {
	Path string
	Type EventType
}

// WatchOptions configures a Watcher
type WatchOptions struct {
	// OnDrop is called when an event is dropped because the channel is full
	OnDrop func()
	Logger *kitelog.Logger
}

// Watcher reports changes to the python files below a set of directories.
// Directories created after the watch started are watched as they appear.
type Watcher struct {
	w      *fsnotify.Watcher
	logger *kitelog.Logger

	mu sync.Mutex
	// we're assuming that there will only be a few registered watches for the same path
	watchCounts map[string]uint16
}

// NewWatcher starts watching every directory below roots. Events are sent
// on ch until ctx is done.
func NewWatcher(ctx context.Context, roots []string, ch chan<- []Event, opts WatchOptions) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewHostError("", errors.WithStack(err), "cannot start file watcher")
	}
	logger := opts.Logger
	if logger == nil {
		logger = kitelog.Discard
	}
	w := &Watcher{
		w:           fsw,
		logger:      logger.Named("watcher"),
		watchCounts: make(map[string]uint16),
	}

	for _, root := range roots {
		if err := w.WatchTree(root); err != nil {
			fsw.Close()
			return nil, err
		}
	}

	go w.run(ctx, ch, opts.OnDrop)
	return w, nil
}

func (w *Watcher) run(ctx context.Context, ch chan<- []Event, onDrop func()) {
	for {
		select {
		case <-ctx.Done():
			_ = w.w.Close()
			return
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 && isDir(ev.Name) {
				if err := w.WatchTree(ev.Name); err != nil {
					w.logger.Warn("cannot watch new directory", zap.String("path", ev.Name), zap.Error(err))
				}
				continue
			}

			t := eventType(ev)
			if t == UnrecognizedEvent || !IsPythonFile(ev.Name) {
				continue
			}
			w.logger.Debug("watcher event", zap.String("path", ev.Name), zap.Stringer("op", ev.Op))

			msg := []Event{{Path: ev.Name, Type: t}}
			select {
			case ch <- msg:
			default:
				if onDrop != nil {
					onDrop()
				}
			}
		}
	}
}

// WatchTree watches root and every directory below it, skipping hidden
// directories
func (w *Watcher) WatchTree(root string) error {
	return afero.Walk(afero.NewOsFs(), root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return errors.NewHostError(path, errors.WithStack(err), "cannot watch %s", path)
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		return w.Watch(path)
	})
}

// WatchCount returns the number of watched directories
func (w *Watcher) WatchCount() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	// each key represents an inotify watch
	return int64(len(w.watchCounts))
}

// Watch adds a watch for dir
func (w *Watcher) Watch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watchCounts[dir] == 0 {
		if err := w.w.Add(dir); err != nil {
			return errors.NewHostError(dir, errors.WithStack(err), "cannot watch %s", dir)
		}
	}
	w.watchCounts[dir]++
	return nil
}

// Unwatch releases a watch added by Watch
func (w *Watcher) Unwatch(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watchCounts[dir] == 0 {
		return errors.Errorf("unmatched call of Unwatch() for path %s", dir)
	}

	w.watchCounts[dir]--
	if w.watchCounts[dir] > 0 {
		return nil
	}
	delete(w.watchCounts, dir)
	return w.w.Remove(dir)
}

// Close stops the watcher
func (w *Watcher) Close() error {
	return w.w.Close()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// eventType returns the type of file event that has occurred
func eventType(ev fsnotify.Event) EventType {
	switch {
	case ev.Op&fsnotify.Remove != 0:
		return RemovedEvent
	case ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0:
		return ModifiedEvent
	default:
		return UnrecognizedEvent
	}
}
