package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a settings file whenever it changes on disk.
type Watcher struct {
	w    *fsnotify.Watcher
	path string

	updates chan Config
	errs    chan error
	done    chan struct{}
}

// Watch starts watching path. The parent directory is watched so that
// editors that replace the file through a new file are seen too.
func Watch(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("config: watch: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", dir, err)
	}

	w := &Watcher{
		w:       fw,
		path:    abs,
		updates: make(chan Config, 4),
		errs:    make(chan error, 4),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Updates delivers the freshly loaded settings after each change.
func (w *Watcher) Updates() <-chan Config { return w.updates }

// Errors delivers load and watch failures.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			c, err := Load(w.path)
			if err != nil {
				w.sendErr(err)
				continue
			}
			select {
			case w.updates <- c:
			default:
				// Drop the oldest pending update.
				select {
				case <-w.updates:
				default:
				}
				w.updates <- c
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.sendErr(fmt.Errorf("config: watch: %w", err))
		}
	}
}

func (w *Watcher) sendErr(err error) {
	select {
	case w.errs <- err:
	default:
	}
}
