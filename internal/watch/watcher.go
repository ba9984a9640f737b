// Package watch keeps source directories sorted by relocating files as they
// appear.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"filesorter/internal/errors"
	"filesorter/internal/log"

	"github.com/fsnotify/fsnotify"
)

// FileEvent is a create or write of a file directly inside a watched
// directory.
type FileEvent struct {
	Path      string
	Timestamp time.Time
	Op        fsnotify.Op
}

// Watcher monitors directories for file changes using fsnotify. Watches are
// not recursive; only direct children are reported.
type Watcher struct {
	directories []string
	events      chan FileEvent
	stop        chan struct{}
	done        chan struct{}
	fsWatcher   *fsnotify.Watcher

	mutex   sync.RWMutex
	running bool
	stopped bool
}

// New creates a new directory watcher using fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	return &Watcher{
		directories: []string{},
		events:      make(chan FileEvent, 64),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		fsWatcher:   fsWatcher,
	}, nil
}

// AddDirectory starts watching dir.
func (w *Watcher) AddDirectory(dir string) error {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return errors.NewFileError("invalid watch directory", dir, errors.InvalidPath, err)
	}

	info, err := os.Stat(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileError("watch directory not found", absDir, errors.FileNotFound, err)
		}
		return errors.NewFileError("error accessing directory", absDir, errors.FileAccessDenied, err)
	}
	if !info.IsDir() {
		return errors.NewFileError("path is not a directory", absDir, errors.InvalidPath, nil)
	}

	if err := w.fsWatcher.Add(absDir); err != nil {
		return errors.NewFileError("failed to watch directory", absDir, errors.FileAccessDenied, err)
	}

	w.mutex.Lock()
	found := false
	for _, existing := range w.directories {
		if existing == absDir {
			found = true
			break
		}
	}
	if !found {
		w.directories = append(w.directories, absDir)
	}
	w.mutex.Unlock()

	log.LogWithFields(log.F("directory", absDir)).Info("Watching directory")
	return nil
}

// Events delivers file events until the watcher stops, then closes.
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// Start begins forwarding events. A watcher can be started once.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return errors.New("watcher already running")
	}
	if w.stopped {
		return errors.New("watcher already stopped")
	}
	w.running = true

	go w.loop()

	log.Debug("Watcher started")
	return nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.events)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}

			// The file may already be gone, or be a new subdirectory.
			info, err := os.Stat(event.Name)
			if err != nil {
				if !os.IsNotExist(err) {
					log.LogWithFields(log.F("file", event.Name), log.F("error", err)).Warn("Error stating file")
				}
				continue
			}
			if info.IsDir() {
				continue
			}

			fe := FileEvent{Path: event.Name, Timestamp: time.Now(), Op: event.Op}
			select {
			case w.events <- fe:
			case <-w.stop:
				return
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-w.stop:
			return
		}
	}
}

// Stop halts the watcher and waits for the event channel to close. It is
// safe to call more than once.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if w.stopped {
		w.mutex.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	close(w.stop)
	w.mutex.Unlock()

	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Warn("Error closing fsnotify watcher")
	}

	if wasRunning {
		<-w.done
	} else {
		close(w.events)
	}
	log.Debug("Watcher stopped")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// Directories returns the watched directories.
func (w *Watcher) Directories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirs := make([]string, len(w.directories))
	copy(dirs, w.directories)
	return dirs
}
