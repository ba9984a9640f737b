package analysis_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"filesorter/internal/analysis"
	"filesorter/internal/destination"
	"filesorter/internal/errors"
	"filesorter/internal/mime"
	"filesorter/internal/rules"
	"filesorter/pkg/testutils"
	"filesorter/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanner(t *testing.T, root string, useDate bool, detector mime.Detector) *analysis.Planner {
	t.Helper()
	resolver, err := destination.NewResolver(root, useDate, destination.DefaultDatePattern)
	require.NoError(t, err)
	return analysis.NewPlanner(rules.New(rules.Defaults()), resolver, detector)
}

func TestPlanDoesNotTouchFilesystem(t *testing.T) {
	src := t.TempDir()
	out := filepath.Join(t.TempDir(), "out")
	testutils.CreateTestFilesWithDefault(t, src)

	candidates := []types.FileCandidate{
		{Path: filepath.Join(src, "photo.jpg")},
		{Path: filepath.Join(src, "archive.zip")},
		{Path: filepath.Join(src, "notes"), MIMEHint: "text/plain"},
	}

	plan := newPlanner(t, out, false, nil).Plan(candidates)
	require.Len(t, plan, 3)

	assert.Equal(t, analysis.WouldMove, plan[0].Verdict)
	assert.Equal(t, "images", plan[0].Label)
	assert.Equal(t, filepath.Join(out, "images", "photo.jpg"), plan[0].Destination)
	assert.Equal(t, analysis.WouldMove, plan[1].Verdict)
	assert.Equal(t, analysis.WouldSkip, plan[2].Verdict)
	assert.Empty(t, plan[2].Destination)

	testutils.AssertNotExist(t, out)
	assert.FileExists(t, candidates[0].Path)

	counts := analysis.Counts(plan)
	assert.Equal(t, 2, counts[analysis.WouldMove])
	assert.Equal(t, 1, counts[analysis.WouldSkip])
}

func TestPlanConflictAndBlocked(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	testutils.CreateTestFilesWithContent(t, src, map[string]string{
		"photo.jpg": "img",
		"song.mp3":  "audio",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(out, "images"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "images", "photo.jpg"), []byte("old"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(out, "audio"), []byte("in the way"), 0644))

	p := newPlanner(t, out, false, nil)

	conflict := p.PlanOne(types.FileCandidate{Path: filepath.Join(src, "photo.jpg")})
	assert.Equal(t, analysis.WouldConflict, conflict.Verdict)
	assert.ErrorIs(t, conflict.Cause, errors.ErrDestinationExists)

	blocked := p.PlanOne(types.FileCandidate{Path: filepath.Join(src, "song.mp3")})
	assert.Equal(t, analysis.WouldBlock, blocked.Verdict)
	assert.True(t, errors.IsFatal(blocked.Cause))
}

func TestPlanDateAndMetadata(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	testutils.CreateTestFilesWithContent(t, src, map[string]string{"photo.jpg": "img"})
	path := filepath.Join(src, "photo.jpg")
	testutils.SetModTime(t, path, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	p := newPlanner(t, out, true, nil)

	planned := p.PlanOne(types.FileCandidate{Path: path})
	assert.Equal(t, analysis.WouldMove, planned.Verdict)
	assert.Equal(t, filepath.Join(out, "2020-01-01", "images", "photo.jpg"), planned.Destination)

	missing := p.PlanOne(types.FileCandidate{Path: filepath.Join(src, "gone.jpg")})
	assert.Equal(t, analysis.WouldFail, missing.Verdict)
	assert.True(t, errors.IsMetadataError(missing.Cause))
}

func TestPlanUsesDetector(t *testing.T) {
	src := t.TempDir()
	testutils.CreateTestFilesWithContent(t, src, map[string]string{"libfoo": "\x7fELF"})

	planned := newPlanner(t, t.TempDir(), false, mime.Static("application/x-sharedlib")).
		PlanOne(types.FileCandidate{Path: filepath.Join(src, "libfoo")})
	assert.Equal(t, analysis.WouldMove, planned.Verdict)
	assert.Equal(t, "binary", planned.Label)
	assert.Equal(t, "application/x-sharedlib", planned.MIMEHint)
}

func TestVerdictString(t *testing.T) {
	assert.Equal(t, "move", analysis.WouldMove.String())
	assert.Equal(t, "blocked", analysis.WouldBlock.String())
	assert.Equal(t, "unknown", analysis.Verdict(42).String())
}
