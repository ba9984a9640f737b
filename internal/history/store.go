// Package history keeps a journal of sort runs in SQLite so moved files can
// be traced back to where they came from.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filesorter/internal/errors"
	"filesorter/internal/log"
	"filesorter/pkg/types"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Run is one sort invocation and its tallies.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time // zero while the run is in progress or if it crashed
	Moved      int
	Unmatched  int
	Failed     int
	Aborted    bool // stopped by a fatal outcome
}

// Finished reports whether FinishRun was called for the run.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Total returns the number of outcomes recorded for the run.
func (r Run) Total() int {
	return r.Moved + r.Unmatched + r.Failed
}

// Entry is a single journaled outcome.
type Entry struct {
	RunID       string
	Seq         int
	Kind        string
	Source      string
	Destination string
	Cause       string
	RecordedAt  time.Time
}

// Store manages the journal database.
type Store struct {
	db     *sql.DB
	dbPath string
	now    func() time.Time
}

// Open opens or creates the journal at dbPath. ":memory:" gives a private
// in-memory journal.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, errors.NewHistoryError("create database directory", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.NewHistoryError("open database", err)
	}
	// One connection keeps an in-memory database alive and serializes writes.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, errors.NewHistoryError("set "+pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, errors.NewHistoryError("init schema", err)
	}

	return &Store{db: db, dbPath: dbPath, now: time.Now}, nil
}

// execWithRetry retries a statement with exponential backoff while another
// process holds the database lock.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun starts a new run and returns its ID.
func (s *Store) BeginRun(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, s.now().UTC())
	if err != nil {
		return "", errors.NewHistoryError("begin run", err)
	}
	log.Debugf("Started history run %s", id)
	return id, nil
}

// Record appends an outcome to a run and bumps the run's tally.
func (s *Store) Record(ctx context.Context, runID string, o types.Outcome) error {
	var counter string
	switch o.Kind {
	case types.OutcomeMoved:
		counter = "moved"
	case types.OutcomeUnmatched:
		counter = "unmatched"
	case types.OutcomeFailed:
		counter = "failed"
	default:
		return errors.NewHistoryError("record outcome", errors.Newf("unknown outcome kind %d", int(o.Kind)))
	}

	cause := ""
	if o.Cause != nil {
		cause = o.Cause.Error()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewHistoryError("record outcome", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO outcomes (run_id, seq, kind, source, destination, cause, recorded_at)
		VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM outcomes WHERE run_id = ?), ?, ?, ?, ?, ?)`,
		runID, runID, o.Kind.String(), o.Source, o.Destination, cause, s.now().UTC())
	if err != nil {
		return errors.NewHistoryError("record outcome", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE runs SET `+counter+` = `+counter+` + 1 WHERE id = ?`, runID)
	if err != nil {
		return errors.NewHistoryError("record outcome", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewHistoryError("record outcome", errors.Newf("unknown run %s", runID))
	}

	if err := tx.Commit(); err != nil {
		return errors.NewHistoryError("record outcome", err)
	}
	return nil
}

// FinishRun stamps the run's end time.
func (s *Store) FinishRun(ctx context.Context, runID string, aborted bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, aborted = ? WHERE id = ?`,
		s.now().UTC(), aborted, runID)
	if err != nil {
		return errors.NewHistoryError("finish run", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.NewHistoryError("finish run", errors.Newf("unknown run %s", runID))
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return []Run{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, finished_at, moved, unmatched, failed, aborted
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, errors.NewHistoryError("list runs", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r        Run
			finished sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.StartedAt, &finished, &r.Moved, &r.Unmatched, &r.Failed, &r.Aborted); err != nil {
			return nil, errors.NewHistoryError("scan run", err)
		}
		if finished.Valid {
			r.FinishedAt = finished.Time
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewHistoryError("list runs", err)
	}
	return runs, nil
}

// Entries returns a run's outcomes in the order they were recorded.
func (s *Store) Entries(ctx context.Context, runID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, kind, source, destination, cause, recorded_at
		FROM outcomes
		WHERE run_id = ?
		ORDER BY seq`, runID)
	if err != nil {
		return nil, errors.NewHistoryError("list outcomes", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Seq, &e.Kind, &e.Source, &e.Destination, &e.Cause, &e.RecordedAt); err != nil {
			return nil, errors.NewHistoryError("scan outcome", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewHistoryError("list outcomes", err)
	}
	return entries, nil
}

// Observer returns a callback that journals each outcome of runID. Journal
// failures are logged and otherwise ignored.
func (s *Store) Observer(ctx context.Context, runID string) func(types.Outcome) {
	return func(o types.Outcome) {
		if err := s.Record(ctx, runID, o); err != nil {
			log.LogWithError(err).Warn("Failed to record outcome in history")
		}
	}
}

// EntriesOfKind returns up to limit outcomes of one kind recorded at or after
// since, newest first.
func (s *Store) EntriesOfKind(ctx context.Context, kind types.OutcomeKind, since time.Time, limit int) ([]Entry, error) {
	if limit <= 0 {
		return []Entry{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, kind, source, destination, cause, recorded_at
		FROM outcomes
		WHERE kind = ? AND recorded_at >= ?
		ORDER BY recorded_at DESC, seq DESC
		LIMIT ?`, kind.String(), since.UTC(), limit)
	if err != nil {
		return nil, errors.NewHistoryError("list outcomes", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RunID, &e.Seq, &e.Kind, &e.Source, &e.Destination, &e.Cause, &e.RecordedAt); err != nil {
			return nil, errors.NewHistoryError("scan outcome", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewHistoryError("list outcomes", err)
	}
	return entries, nil
}
