package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"filesorter/internal/config"
	"filesorter/internal/errors"
	"filesorter/internal/rules"
	"filesorter/pkg/testutils"
	"filesorter/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a temporary YAML settings file
func createTestYAML(t *testing.T, content string) string {
	t.Helper()
	tmpFile, err := os.CreateTemp(t.TempDir(), "settings-*.yaml")
	require.NoError(t, err)
	_, err = tmpFile.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, tmpFile.Close())
	return tmpFile.Name()
}

const (
	validYAML = `
sources:
  - /home/test/Downloads
destination: /home/test/Sorted
use_date_pattern: true
date_pattern: "%Y/%m"
sort_patterns:
  - extensions: [jpg, png]
    mime_types: []
    destination: images
  - extensions: []
    mime_types: [application/x-sharedlib]
    destination: binary
ignore:
  - "*.part"
`
	partialYAML = `
destination: /home/test/Sorted
`
	invalidSyntaxYAML = `
sources: [/home/test/Downloads
destination: "/home/test/Sorted
`
	invalidTypeYAML = `
use_date_pattern: sometimes
`
)

func TestLoad(t *testing.T) {
	t.Run("load valid settings", func(t *testing.T) {
		path := createTestYAML(t, validYAML)
		s, err := config.Load(path)
		require.NoError(t, err)
		require.NotNil(t, s)

		assert.Equal(t, []string{"/home/test/Downloads"}, s.Sources)
		assert.Equal(t, "/home/test/Sorted", s.Destination)
		assert.True(t, s.UseDatePattern)
		assert.Equal(t, "%Y/%m", s.DatePattern)
		require.Len(t, s.SortPatterns, 2)
		assert.Equal(t, "images", s.SortPatterns[0].Destination)
		assert.Equal(t, []string{"jpg", "png"}, s.SortPatterns[0].Extensions)
		assert.Equal(t, []string{"application/x-sharedlib"}, s.SortPatterns[1].MimeTypes)
		assert.Equal(t, []string{"*.part"}, s.Ignore)
		assert.NoError(t, s.Validate())
	})

	t.Run("missing keys keep defaults", func(t *testing.T) {
		path := createTestYAML(t, partialYAML)
		s, err := config.Load(path)
		require.NoError(t, err)

		assert.Equal(t, "/home/test/Sorted", s.Destination)
		assert.False(t, s.UseDatePattern)
		assert.Equal(t, "%Y-%m-%d", s.DatePattern)
		assert.Equal(t, rules.Defaults(), s.SortPatterns)
	})

	t.Run("missing file yields defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.yaml")
		s, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, config.Default(), s)
		testutils.AssertNotExist(t, path)
	})

	for name, content := range map[string]string{
		"syntax error": invalidSyntaxYAML,
		"type error":   invalidTypeYAML,
	} {
		t.Run("corrupt file is moved aside: "+name, func(t *testing.T) {
			path := createTestYAML(t, content)
			s, err := config.Load(path)
			require.NoError(t, err)
			assert.Equal(t, config.Default(), s)

			testutils.AssertNotExist(t, path)
			assert.Equal(t, content, testutils.ReadFile(t, path+".invalid"))
		})
	}

	t.Run("unreadable path is an error", func(t *testing.T) {
		// A directory cannot be read as a file.
		_, err := config.Load(t.TempDir())
		require.Error(t, err)
	})
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s := config.Default().
		AddSource("/home/test/Downloads").
		SetDestination("/home/test/Sorted").
		SetUseDatePattern(true).
		SetDatePattern("%Y")
	s.Ignore = []string{"*.tmp"}

	require.NoError(t, s.Save(path))
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, loaded)
}

func TestBackupExisting(t *testing.T) {
	t.Run("nothing to back up", func(t *testing.T) {
		old, err := config.BackupExisting(filepath.Join(t.TempDir(), "settings.yaml"))
		require.NoError(t, err)
		assert.Empty(t, old)
	})

	t.Run("renames to .old", func(t *testing.T) {
		path := createTestYAML(t, partialYAML)
		old, err := config.BackupExisting(path)
		require.NoError(t, err)
		assert.Equal(t, path+".old", old)
		testutils.AssertNotExist(t, path)
		assert.Equal(t, partialYAML, testutils.ReadFile(t, old))
	})
}

func TestValidate(t *testing.T) {
	valid := func() *config.Settings {
		return config.Default().
			AddSource("/home/test/Downloads").
			SetDestination("/home/test/Sorted")
	}

	testCases := []struct {
		name    string
		mutate  func(s *config.Settings)
		wantErr bool
		isRule  bool
	}{
		{name: "defaults with paths", mutate: func(s *config.Settings) {}},
		{name: "no sources", mutate: func(s *config.Settings) { s.Sources = nil }},
		{name: "no rules", mutate: func(s *config.Settings) { s.SortPatterns = nil }},
		{name: "date pattern on", mutate: func(s *config.Settings) { s.SetUseDatePattern(true) }},
		{name: "literal date pattern", mutate: func(s *config.Settings) {
			s.SetUseDatePattern(true).SetDatePattern("undated")
		}},
		{name: "bad pattern ignored while off", mutate: func(s *config.Settings) { s.SetDatePattern("%Q") }},
		{name: "missing destination", mutate: func(s *config.Settings) { s.SetDestination("") }, wantErr: true},
		{name: "relative destination", mutate: func(s *config.Settings) { s.SetDestination("Sorted") }, wantErr: true},
		{name: "empty source", mutate: func(s *config.Settings) { s.AddSource(" ") }, wantErr: true},
		{name: "relative source", mutate: func(s *config.Settings) { s.AddSource("Downloads") }, wantErr: true},
		{name: "unknown date directive", mutate: func(s *config.Settings) {
			s.SetUseDatePattern(true).SetDatePattern("%Q")
		}, wantErr: true},
		{name: "empty date pattern", mutate: func(s *config.Settings) {
			s.SetUseDatePattern(true).SetDatePattern("")
		}, wantErr: true},
		{name: "bad ignore glob", mutate: func(s *config.Settings) { s.Ignore = []string{"[oops"} }, wantErr: true},
		{name: "bad rule", mutate: func(s *config.Settings) {
			s.SortPatterns = append(s.SortPatterns, types.SortRule{Extensions: []string{"x"}, Destination: "a/b"})
		}, wantErr: true, isRule: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := valid()
			tc.mutate(s)
			err := s.Validate()
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tc.isRule {
				assert.True(t, errors.IsInvalidRule(err))
			} else {
				assert.True(t, errors.IsInvalidConfig(err))
			}
		})
	}
}

func TestBuilders(t *testing.T) {
	s := config.Default().SetDestination("/srv/sorted").SetUseDatePattern(true)
	s.Ignore = []string{"*.part"}

	assert.Equal(t, len(rules.Defaults()), s.RuleSet().Len())

	resolver, err := s.Resolver()
	require.NoError(t, err)
	assert.Equal(t, "/srv/sorted", resolver.Root())
	assert.True(t, resolver.UsesDatePattern())

	ignore, err := s.IgnoreList()
	require.NoError(t, err)
	assert.True(t, ignore.Match("movie.part"))
}

func TestPaths(t *testing.T) {
	t.Setenv(config.EnvConfig, "/tmp/custom/settings.yaml")
	t.Setenv(config.EnvDataDir, "/tmp/custom/data")
	t.Setenv(config.EnvStateDir, "/tmp/custom/state")

	assert.Equal(t, "/tmp/custom/settings.yaml", config.DefaultPath())
	assert.Equal(t, "/tmp/custom/data/history.db", config.HistoryPath())
	assert.Equal(t, "/tmp/custom/state/run.lock", config.RunLockPath())
}
