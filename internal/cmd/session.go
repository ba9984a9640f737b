package cmd

import (
	"context"
	"io"

	"filesorter/internal/config"
	"filesorter/internal/errors"
	"filesorter/internal/filelock"
	"filesorter/internal/history"
	"filesorter/internal/log"
	"filesorter/internal/mime"
	"filesorter/internal/organize"
	"filesorter/internal/report"
	"filesorter/pkg/types"
)

// session holds everything one sort or watch invocation needs. It owns the
// run lock and the history run for its lifetime.
type session struct {
	ctx       context.Context
	settings  *config.Settings
	printer   *report.Printer
	relocator *organize.Relocator
	ignore    *organize.IgnoreList
	lock      *filelock.FileLock
	store     *history.Store
	runID     string
	summary   report.Summary
}

func openSession(ctx context.Context, w io.Writer, s *config.Settings, record bool) (*session, error) {
	lock := filelock.New(config.RunLockPath())
	if err := lock.TryLock(); err != nil {
		if errors.Is(err, filelock.ErrLocked) {
			return nil, errors.Wrap(err, "another sort is already running")
		}
		return nil, err
	}

	ss := &session{
		ctx:      ctx,
		settings: s,
		printer:  report.NewPrinter(w),
		lock:     lock,
	}

	if err := ss.prepare(record); err != nil {
		ss.close(false)
		return nil, err
	}
	return ss, nil
}

func (ss *session) prepare(record bool) error {
	s := ss.settings

	// Sources and the destination root are created on first use.
	for _, src := range s.Sources {
		if err := organize.EnsureDir(src); err != nil {
			return err
		}
	}
	if err := organize.EnsureDir(s.Destination); err != nil {
		return err
	}

	ignore, err := s.IgnoreList()
	if err != nil {
		return err
	}
	ss.ignore = ignore

	resolver, err := s.Resolver()
	if err != nil {
		return err
	}

	if record {
		ss.openHistory()
	}

	ss.relocator = organize.NewRelocator(s.RuleSet(), resolver,
		organize.WithDetector(mime.NewMagicDetector()),
		organize.WithObserver(ss.observe))
	return nil
}

// openHistory starts a journal run. A journal that cannot be opened only
// disables recording.
func (ss *session) openHistory() {
	store, err := history.Open(config.HistoryPath())
	if err != nil {
		log.LogWithError(err).Warn("History disabled for this run")
		return
	}
	runID, err := store.BeginRun(ss.ctx)
	if err != nil {
		log.LogWithError(err).Warn("History disabled for this run")
		store.Close()
		return
	}
	ss.store = store
	ss.runID = runID
}

func (ss *session) observe(o types.Outcome) {
	ss.summary.Add(o)
	ss.printer.Outcome(o)
	if ss.store != nil {
		if err := ss.store.Record(ss.ctx, ss.runID, o); err != nil {
			log.LogWithError(err).Warn("Failed to record outcome in history")
		}
	}
}

// sortSources relocates the current contents of every source. Only a fatal
// error is returned.
func (ss *session) sortSources() error {
	var candidates []types.FileCandidate
	for _, src := range ss.settings.Sources {
		found, err := organize.EnumerateCandidates(src, ss.ignore)
		if err != nil {
			return err
		}
		candidates = append(candidates, found...)
	}

	_, err := ss.relocator.Relocate(candidates)
	return err
}

// close prints the summary when anything happened, finishes the journal run
// and releases the lock.
func (ss *session) close(aborted bool) {
	if ss.summary.Total() > 0 || aborted {
		ss.printer.Summary(ss.summary)
	}

	if ss.store != nil {
		// The run is finished even if the command's context was cancelled.
		if err := ss.store.FinishRun(context.WithoutCancel(ss.ctx), ss.runID, aborted); err != nil {
			log.LogWithError(err).Warn("Failed to finish history run")
		}
		ss.store.Close()
		ss.store = nil
	}

	if err := ss.lock.Unlock(); err != nil {
		log.LogWithFields(log.F("path", ss.lock.Path()), log.F("error", err)).Warn("Failed to release run lock")
	}
}

// fail reports a fatal error, closes the session and returns the error for
// the command to exit with.
func (ss *session) fail(err error) error {
	ss.printer.Fatal(err)
	ss.close(true)
	return errors.Wrap(err, "sort aborted")
}
