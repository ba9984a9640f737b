package learning

import (
	"context"
	"fmt"
	"testing"
	"time"

	"filesorter/internal/errors"
	"filesorter/internal/history"
	"filesorter/internal/mime"
	"filesorter/internal/rules"
	"filesorter/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 31, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	entries []history.Entry
	err     error
	since   time.Time
	limit   int
}

func (f *fakeSource) EntriesOfKind(_ context.Context, kind types.OutcomeKind, since time.Time, limit int) ([]history.Entry, error) {
	f.since, f.limit = since, limit
	if f.err != nil {
		return nil, f.err
	}
	var out []history.Entry
	for _, e := range f.entries {
		if e.Kind == kind.String() {
			out = append(out, e)
		}
	}
	return out, nil
}

func unmatched(source string, daysAgo int) history.Entry {
	return history.Entry{
		Kind:       types.OutcomeUnmatched.String(),
		Source:     source,
		RecordedAt: now.AddDate(0, 0, -daysAgo),
	}
}

type mapDetector map[string]string

func (m mapDetector) Detect(path string) (string, error) {
	hint, ok := m[path]
	if !ok {
		return "", errors.NewFileError("gone", path, errors.FileNotFound, nil)
	}
	return hint, nil
}

func newTestEngine(t *testing.T, src EntrySource, cfg AnalysisConfig, d mime.Detector) *Engine {
	t.Helper()
	e, err := NewEngine(src, cfg, d)
	require.NoError(t, err)
	e.now = func() time.Time { return now }
	return e
}

func TestSuggestByExtension(t *testing.T) {
	src := &fakeSource{entries: []history.Entry{
		unmatched("/in/a.epub", 1),
		unmatched("/in/b.epub", 2),
		unmatched("/in/c.EPUB", 3),
		unmatched("/in/a.epub", 9), // same file skipped by an older run
		unmatched("/in/x.mobi", 1),
		unmatched("/in/y.mobi", 1),
		unmatched("/in/z.mobi", 1),
		unmatched("/in/w.mobi", 1),
		unmatched("/in/once.kdbx", 1),
	}}
	cfg := DefaultConfig()

	suggestions, err := newTestEngine(t, src, cfg, nil).Suggest(context.Background(), rules.New(nil))
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	assert.Equal(t, now.AddDate(0, 0, -cfg.RecencyDays), src.since)
	assert.Equal(t, cfg.SampleLimit, src.limit)

	mobi := suggestions[0]
	assert.Equal(t, PatternExtension, mobi.Pattern.Type)
	assert.Equal(t, "mobi", mobi.Pattern.Value)
	assert.Equal(t, 4, mobi.Pattern.Occurrences)
	assert.Len(t, mobi.Pattern.Examples, maxExamples)

	epub := suggestions[1]
	assert.Equal(t, "epub", epub.Pattern.Value)
	assert.Equal(t, 3, epub.Pattern.Occurrences)
	assert.InDelta(t, 3.0/8.0, epub.Pattern.Confidence, 1e-9)
	assert.Equal(t, now.AddDate(0, 0, -9), epub.Pattern.FirstSeen)
	assert.Equal(t, now.AddDate(0, 0, -1), epub.Pattern.LastSeen)
	assert.Equal(t, types.SortRule{Extensions: []string{"epub"}, MimeTypes: []string{}, Destination: "epub"}, epub.Rule)
	assert.NoError(t, rules.Validate([]types.SortRule{epub.Rule}))
}

func TestSuggestSkipsCoveredExtensions(t *testing.T) {
	src := &fakeSource{entries: []history.Entry{
		unmatched("/in/a.zip", 1),
		unmatched("/in/b.zip", 1),
		unmatched("/in/c.zip", 1),
	}}

	suggestions, err := newTestEngine(t, src, DefaultConfig(), nil).Suggest(context.Background(), rules.New(rules.Defaults()))
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestByContent(t *testing.T) {
	src := &fakeSource{entries: []history.Entry{
		unmatched("/in/README", 1),
		unmatched("/in/LICENSE", 1),
		unmatched("/in/NOTES", 1),
		unmatched("/in/libfoo", 1),
		unmatched("/in/gone", 1),
		unmatched("/in/blob", 1),
	}}
	detector := mapDetector{
		"/in/README":  "text/plain",
		"/in/LICENSE": "text/plain",
		"/in/NOTES":   "text/plain",
		"/in/libfoo":  "application/x-sharedlib",
		"/in/blob":    "application/octet-stream",
	}
	cfg := DefaultConfig()
	cfg.MinOccurrences = 1

	suggestions, err := newTestEngine(t, src, cfg, detector).Suggest(context.Background(), rules.New(rules.Defaults()))
	require.NoError(t, err)
	require.Len(t, suggestions, 1, "sharedlib is covered by the binary rule")

	text := suggestions[0]
	assert.Equal(t, PatternContent, text.Pattern.Type)
	assert.Equal(t, "text/plain", text.Pattern.Value)
	assert.Equal(t, 3, text.Pattern.Occurrences)
	assert.Equal(t, []string{"text/plain"}, text.Rule.MimeTypes)
	assert.Equal(t, "txt", text.Rule.Destination)

	cfg.ContentSampling = false
	suggestions, err = newTestEngine(t, src, cfg, detector).Suggest(context.Background(), rules.New(nil))
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestSuggestContentFolders(t *testing.T) {
	src := &fakeSource{entries: []history.Entry{
		unmatched("/in/tool", 1),
		unmatched("/in/core", 1),
		unmatched("/in/bundle", 1),
		unmatched("/in/a.txt", 1),
		unmatched("/in/README", 1),
	}}
	detector := mapDetector{
		"/in/tool":   "application/x-executable",
		"/in/core":   "application/x-elf",
		"/in/bundle": "application/zip",
		"/in/README": "text/plain",
	}
	cfg := DefaultConfig()
	cfg.MinOccurrences = 1
	cfg.MaxSuggestions = 0

	suggestions, err := newTestEngine(t, src, cfg, detector).Suggest(context.Background(), rules.New(nil))
	require.NoError(t, err)

	folders := make(map[string]string)
	for _, sg := range suggestions {
		folders[sg.Pattern.Value] = sg.Rule.Destination
	}
	assert.Equal(t, "executable", folders["application/x-executable"])
	assert.Equal(t, "elf", folders["application/x-elf"])
	assert.Equal(t, "zip", folders["application/zip"])

	// The txt extension group keeps its name; the content group yields.
	assert.Equal(t, "txt", folders["txt"])
	assert.Equal(t, "text-plain", folders["text/plain"])

	var rulesOut []types.SortRule
	for _, sg := range suggestions {
		rulesOut = append(rulesOut, sg.Rule)
	}
	assert.NoError(t, rules.Validate(rulesOut))
}

func TestSuggestLimitsAndThresholds(t *testing.T) {
	var entries []history.Entry
	for i, ext := range []string{"aaa", "bbb", "ccc"} {
		for n := 0; n <= i+2; n++ {
			entries = append(entries, unmatched(fmt.Sprintf("/in/%d.%s", n, ext), 1))
		}
	}
	src := &fakeSource{entries: entries}

	cfg := DefaultConfig()
	cfg.MaxSuggestions = 2
	suggestions, err := newTestEngine(t, src, cfg, nil).Suggest(context.Background(), rules.New(nil))
	require.NoError(t, err)
	require.Len(t, suggestions, 2)
	assert.Equal(t, "ccc", suggestions[0].Pattern.Value)
	assert.Equal(t, "bbb", suggestions[1].Pattern.Value)

	cfg = DefaultConfig()
	cfg.MinConfidence = 0.4
	suggestions, err = newTestEngine(t, src, cfg, nil).Suggest(context.Background(), rules.New(nil))
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "ccc", suggestions[0].Pattern.Value)
}

func TestSuggestEmptyAndFailingSource(t *testing.T) {
	suggestions, err := newTestEngine(t, &fakeSource{}, DefaultConfig(), nil).Suggest(context.Background(), rules.New(nil))
	require.NoError(t, err)
	assert.Empty(t, suggestions)

	boom := errors.NewHistoryError("list outcomes", fmt.Errorf("disk I/O error"))
	_, err = newTestEngine(t, &fakeSource{err: boom}, DefaultConfig(), nil).Suggest(context.Background(), rules.New(nil))
	assert.True(t, errors.IsHistoryFailed(err))
}

func TestSuggestFromStore(t *testing.T) {
	ctx := context.Background()
	store, err := history.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	runID, err := store.BeginRun(ctx)
	require.NoError(t, err)
	for _, name := range []string{"a.epub", "b.epub", "c.epub"} {
		require.NoError(t, store.Record(ctx, runID, types.Unmatched("/in/"+name)))
	}
	require.NoError(t, store.FinishRun(ctx, runID, false))

	e, err := NewEngine(store, DefaultConfig(), nil)
	require.NoError(t, err)
	suggestions, err := e.Suggest(ctx, rules.New(nil))
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "epub", suggestions[0].Pattern.Value)
}
