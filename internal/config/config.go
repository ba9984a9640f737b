package config

import (
	"os"
	"path/filepath"
	"strings"

	"filesorter/internal/destination"
	"filesorter/internal/errors"
	"filesorter/internal/filelock"
	"filesorter/internal/log"
	"filesorter/internal/organize"
	"filesorter/internal/rules"
	"filesorter/pkg/types"

	"gopkg.in/yaml.v3"
)

// Settings is the persisted configuration: where to read files from, where
// to put them, and the ordered rules deciding each file's category.
type Settings struct {
	Sources        []string         `yaml:"sources"`          // Directories whose direct children are sorted
	Destination    string           `yaml:"destination"`      // Root of the sorted tree
	UseDatePattern bool             `yaml:"use_date_pattern"` // Nest categories under a date folder
	DatePattern    string           `yaml:"date_pattern"`     // strftime pattern applied to mtime in UTC
	SortPatterns   []types.SortRule `yaml:"sort_patterns"`    // Ordered rules, first match wins
	Ignore         []string         `yaml:"ignore"`           // Globs for file names that are never candidates
}

// Default returns the settings used when no file exists or it is corrupt.
func Default() *Settings {
	return &Settings{
		Sources:        []string{},
		Destination:    "",
		UseDatePattern: false,
		DatePattern:    destination.DefaultDatePattern,
		SortPatterns:   rules.Defaults(),
		Ignore:         []string{},
	}
}

// Load reads settings from path. A missing file yields defaults. A file that
// cannot be parsed is renamed to "<path>.invalid" and defaults are returned,
// so one bad edit never blocks the tool. Fields absent from the file keep
// their default values.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debugf("No settings file at %s, using defaults", path)
			return Default(), nil
		}
		return nil, errors.NewConfigError("error reading settings file", path, errors.ConfigNotFound, err)
	}

	s := Default()
	if err := yaml.Unmarshal(data, s); err != nil {
		log.LogWithFields(log.F("path", path), log.F("error", err)).
			Warn("Failed to parse settings file, falling back to defaults")

		invalid := path + ".invalid"
		if err := os.Rename(path, invalid); err != nil {
			log.LogWithFields(log.F("path", path), log.F("error", err)).Warn("Failed to rename settings file")
		} else {
			log.Infof("Moved unreadable settings file to %s", invalid)
		}
		return Default(), nil
	}

	return s, nil
}

// Save writes the settings to path under a file lock, atomically.
func (s *Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}
	if err := filelock.LockAndWrite(path, data); err != nil {
		return errors.Wrap(err, "failed to write settings file")
	}
	return nil
}

// BackupExisting renames an existing settings file to "<path>.old" and
// returns the new name, or "" when there was nothing to back up.
func BackupExisting(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.NewConfigError("error accessing settings file", path, errors.InvalidConfig, err)
	}

	old := path + ".old"
	if err := os.Rename(path, old); err != nil {
		return "", errors.NewConfigError("failed to back up settings file", path, errors.InvalidConfig, err)
	}
	log.Infof("Moved old settings file to %s", old)
	return old, nil
}

// AddSource appends a source directory.
func (s *Settings) AddSource(source string) *Settings {
	s.Sources = append(s.Sources, source)
	return s
}

// SetDestination sets the destination root.
func (s *Settings) SetDestination(dest string) *Settings {
	s.Destination = dest
	return s
}

// SetUseDatePattern toggles the date folder.
func (s *Settings) SetUseDatePattern(use bool) *Settings {
	s.UseDatePattern = use
	return s
}

// SetDatePattern sets the strftime pattern for the date folder.
func (s *Settings) SetDatePattern(pattern string) *Settings {
	s.DatePattern = pattern
	return s
}

// Validate checks the settings before a run. Errors are configuration
// errors for the user to fix; they are never raised mid-run.
func (s *Settings) Validate() error {
	if s == nil {
		return errors.NewConfigError("invalid configuration", "", errors.InvalidConfig, errors.New("nil settings"))
	}

	if strings.TrimSpace(s.Destination) == "" {
		return errors.NewConfigError("invalid configuration", "destination", errors.InvalidConfig,
			errors.New("destination is required"))
	}
	if !filepath.IsAbs(s.Destination) {
		return errors.NewConfigError("invalid configuration", "destination", errors.InvalidConfig,
			errors.Newf("must be an absolute path, got %q", s.Destination))
	}

	for i, src := range s.Sources {
		if strings.TrimSpace(src) == "" {
			return errors.NewConfigError("invalid configuration", "sources", errors.InvalidConfig,
				errors.Newf("source %d: path cannot be empty", i+1))
		}
		if !filepath.IsAbs(src) {
			return errors.NewConfigError("invalid configuration", "sources", errors.InvalidConfig,
				errors.Newf("source %d: must be an absolute path, got %q", i+1, src))
		}
	}

	if s.UseDatePattern {
		if strings.TrimSpace(s.DatePattern) == "" {
			return errors.NewConfigError("invalid configuration", "date_pattern", errors.InvalidConfig,
				errors.New("date pattern is required when use_date_pattern is set"))
		}
		if _, err := destination.CompilePattern(s.DatePattern); err != nil {
			return err
		}
	}

	if err := rules.Validate(s.SortPatterns); err != nil {
		return err
	}

	if _, err := organize.NewIgnoreList(s.Ignore); err != nil {
		return err
	}

	return nil
}

// RuleSet builds the read-only rule set for a run.
func (s *Settings) RuleSet() *rules.RuleSet {
	return rules.New(s.SortPatterns)
}

// Resolver builds the destination resolver for a run.
func (s *Settings) Resolver() (*destination.Resolver, error) {
	return destination.NewResolver(s.Destination, s.UseDatePattern, s.DatePattern)
}

// IgnoreList compiles the ignore globs.
func (s *Settings) IgnoreList() (*organize.IgnoreList, error) {
	return organize.NewIgnoreList(s.Ignore)
}
