package watch

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"filesorter/internal/errors"
	"filesorter/internal/log"
	"filesorter/internal/organize"
	"filesorter/pkg/types"
)

// DefaultSettleDelay is how long a file must go without events before it
// is relocated, so files still being written are left alone.
const DefaultSettleDelay = 500 * time.Millisecond

// DaemonStatus represents the current status of the daemon
type DaemonStatus struct {
	Running          bool      // Whether the daemon is currently active
	WatchDirectories []string  // Directories being watched
	LastActivity     time.Time // Time of last file activity
	FilesProcessed   int       // Total outcomes produced
	FilesMoved       int       // Outcomes that moved a file
}

// Daemon relocates files that appear in the source directories. Events are
// handled one at a time on the goroutine that calls Run.
type Daemon struct {
	organizer organize.Organizer
	sources   []string
	ignore    *organize.IgnoreList
	settle    time.Duration
	callback  func(types.Outcome)
	sweep     bool

	mutex        sync.RWMutex
	watcher      *Watcher
	processed    int
	moved        int
	lastActivity time.Time
	running      bool
}

// DaemonOption configures a Daemon.
type DaemonOption func(*Daemon)

// WithIgnore skips file names matching the list.
func WithIgnore(ignore *organize.IgnoreList) DaemonOption {
	return func(d *Daemon) { d.ignore = ignore }
}

// WithSettleDelay overrides DefaultSettleDelay.
func WithSettleDelay(delay time.Duration) DaemonOption {
	return func(d *Daemon) { d.settle = delay }
}

// WithCallback is called with every outcome the daemon produces.
func WithCallback(cb func(types.Outcome)) DaemonOption {
	return func(d *Daemon) { d.callback = cb }
}

// WithInitialSort relocates what the sources already hold once the watches
// are in place, so files arriving during that first pass still raise events.
func WithInitialSort() DaemonOption {
	return func(d *Daemon) { d.sweep = true }
}

// NewDaemon creates a daemon that feeds files from sources to organizer.
func NewDaemon(organizer organize.Organizer, sources []string, opts ...DaemonOption) *Daemon {
	d := &Daemon{
		organizer: organizer,
		sources:   append([]string(nil), sources...),
		settle:    DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run watches the sources until ctx is cancelled or a fatal relocation
// error occurs. Cancellation returns nil; a fatal error is returned as is.
// With WithInitialSort the existing files are relocated after the watches
// are added and before the first event is handled.
func (d *Daemon) Run(ctx context.Context) error {
	if len(d.sources) == 0 {
		return errors.New("no directories to watch")
	}

	watcher, err := New()
	if err != nil {
		return err
	}
	defer watcher.Stop()

	for _, dir := range d.sources {
		if err := watcher.AddDirectory(dir); err != nil {
			return errors.Wrapf(err, "error adding watch directory %s", dir)
		}
	}
	if err := watcher.Start(); err != nil {
		return errors.Wrap(err, "error starting watcher")
	}

	d.mutex.Lock()
	d.watcher = watcher
	d.running = true
	d.mutex.Unlock()
	defer func() {
		d.mutex.Lock()
		d.running = false
		d.mutex.Unlock()
	}()

	if d.sweep {
		if err := d.sortExisting(); err != nil {
			return err
		}
	}

	tick := d.settle / 2
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	pending := make(map[string]time.Time)
	for {
		select {
		case <-ctx.Done():
			log.Info("Watch stopped")
			return nil

		case ev, ok := <-watcher.Events():
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			pending[ev.Path] = ev.Timestamp.Add(d.settle)
			d.mutex.Lock()
			d.lastActivity = ev.Timestamp
			d.mutex.Unlock()

		case now := <-ticker.C:
			for _, path := range duePaths(pending, now) {
				delete(pending, path)
				if err := d.process(path); err != nil {
					return err
				}
			}
		}
	}
}

// duePaths returns, in name order, the pending paths whose settle deadline
// has passed.
func duePaths(pending map[string]time.Time, now time.Time) []string {
	var due []string
	for path, deadline := range pending {
		if !now.Before(deadline) {
			due = append(due, path)
		}
	}
	sort.Strings(due)
	return due
}

// sortExisting relocates the current contents of every source. Only a
// fatal error is returned.
func (d *Daemon) sortExisting() error {
	var candidates []types.FileCandidate
	for _, dir := range d.sources {
		found, err := organize.EnumerateCandidates(dir, d.ignore)
		if err != nil {
			return err
		}
		candidates = append(candidates, found...)
	}

	outcomes, err := d.organizer.Relocate(candidates)
	for _, o := range outcomes {
		d.record(o)
	}
	return err
}

// process relocates a single settled file.
func (d *Daemon) process(path string) error {
	c, ok := organize.CandidateFor(path, d.ignore)
	if !ok {
		log.Debugf("Skipping %s", path)
		return nil
	}

	outcome, err := d.organizer.RelocateOne(c)
	d.record(outcome)
	return err
}

func (d *Daemon) record(outcome types.Outcome) {
	d.mutex.Lock()
	d.processed++
	if outcome.Kind == types.OutcomeMoved {
		d.moved++
	}
	cb := d.callback
	d.mutex.Unlock()

	if cb != nil {
		cb(outcome)
	}
}

// Status returns the current status of the daemon
func (d *Daemon) Status() DaemonStatus {
	d.mutex.RLock()
	defer d.mutex.RUnlock()

	var dirs []string
	if d.watcher != nil {
		dirs = d.watcher.Directories()
	} else {
		for _, s := range d.sources {
			if abs, err := filepath.Abs(s); err == nil {
				dirs = append(dirs, abs)
			}
		}
	}

	return DaemonStatus{
		Running:          d.running,
		WatchDirectories: dirs,
		LastActivity:     d.lastActivity,
		FilesProcessed:   d.processed,
		FilesMoved:       d.moved,
	}
}
