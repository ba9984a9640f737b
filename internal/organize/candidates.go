package organize

import (
	"os"
	"path/filepath"

	"filesorter/internal/errors"
	"filesorter/internal/log"
	"filesorter/pkg/types"

	"github.com/gobwas/glob"
)

// IgnoreList skips candidates whose base name matches any of its globs
// (for example partial downloads such as "*.part").
type IgnoreList struct {
	patterns []string
	globs    []glob.Glob
}

// NewIgnoreList compiles the given glob patterns.
func NewIgnoreList(patterns []string) (*IgnoreList, error) {
	l := &IgnoreList{}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.NewConfigError("invalid ignore pattern", p, errors.InvalidConfig, err)
		}
		l.patterns = append(l.patterns, p)
		l.globs = append(l.globs, g)
	}
	return l, nil
}

// Match reports whether name should be skipped. A nil list skips nothing.
func (l *IgnoreList) Match(name string) bool {
	if l == nil {
		return false
	}
	for _, g := range l.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// EnumerateCandidates lists the regular files directly inside dir, sorted by
// name. Subdirectories are not descended into. Symlinks count when they
// point at a regular file.
func EnumerateCandidates(dir string, ignore *IgnoreList) ([]types.FileCandidate, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewFileError("invalid source directory", dir, errors.InvalidPath, err)
	}

	dirInfo, err := os.Stat(absDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileError("source directory not found", absDir, errors.FileNotFound, err)
		}
		return nil, errors.NewFileError("error accessing directory", absDir, errors.FileAccessDenied, err)
	}
	if !dirInfo.IsDir() {
		return nil, errors.NewFileError("path is not a directory", absDir, errors.InvalidPath, nil)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, errors.NewFileError("error reading directory", absDir, errors.FileAccessDenied, err)
	}

	var candidates []types.FileCandidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ignore.Match(entry.Name()) {
			log.Debugf("Ignoring %s", entry.Name())
			continue
		}

		path := filepath.Join(absDir, entry.Name())
		info, err := os.Stat(path)
		if err != nil {
			log.LogWithFields(log.F("path", path), log.F("error", err)).Warn("Skipping unreadable entry")
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, types.FileCandidate{Path: path})
	}

	log.Debugf("Found %d candidates in %s", len(candidates), absDir)
	return candidates, nil
}

// CandidateFor builds a candidate for a single path, applying the same
// filters as EnumerateCandidates. It reports false for directories, ignored
// names, non-regular files and paths that no longer exist.
func CandidateFor(path string, ignore *IgnoreList) (types.FileCandidate, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return types.FileCandidate{}, false
	}
	if ignore.Match(filepath.Base(absPath)) {
		return types.FileCandidate{}, false
	}
	info, err := os.Stat(absPath)
	if err != nil || !info.Mode().IsRegular() {
		return types.FileCandidate{}, false
	}
	return types.FileCandidate{Path: absPath}, true
}
