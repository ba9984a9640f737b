package organize_test

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"filesorter/internal/errors"
	"filesorter/internal/organize"
	"filesorter/pkg/testutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveEdgeCases(t *testing.T) {
	t.Run("empty file", func(t *testing.T) {
		tmpDir := t.TempDir()
		src := filepath.Join(tmpDir, "empty.txt")
		require.NoError(t, os.WriteFile(src, []byte{}, 0644))
		destDir := filepath.Join(tmpDir, "dest_empty")
		require.NoError(t, organize.EnsureDir(destDir))

		require.NoError(t, organize.MoveFile(src, filepath.Join(destDir, "empty.txt")))
		testutils.AssertNotExist(t, src)
		assert.FileExists(t, filepath.Join(destDir, "empty.txt"))
	})

	t.Run("special characters", func(t *testing.T) {
		tmpDir := t.TempDir()
		name := "special!@#$%^&*.txt"
		src := filepath.Join(tmpDir, name)
		require.NoError(t, os.WriteFile(src, []byte("test"), 0644))
		destDir := filepath.Join(tmpDir, "dest_special")
		require.NoError(t, organize.EnsureDir(destDir))

		require.NoError(t, organize.MoveFile(src, filepath.Join(destDir, name)))
		assert.Equal(t, "test", testutils.ReadFile(t, filepath.Join(destDir, name)))
	})

	t.Run("parent occupied by a file", func(t *testing.T) {
		tmpDir := t.TempDir()
		src := filepath.Join(tmpDir, "source.txt")
		occupied := filepath.Join(tmpDir, "occupied")
		require.NoError(t, os.WriteFile(src, []byte("test"), 0644))
		require.NoError(t, os.WriteFile(occupied, []byte("test"), 0644))

		err := organize.EnsureDir(filepath.Join(occupied, "images"))
		require.Error(t, err)
		assert.True(t, errors.IsFatal(err))

		err = organize.MoveFile(src, filepath.Join(occupied, "source.txt"))
		require.Error(t, err)
		assert.True(t, errors.IsMoveError(err))
		assert.FileExists(t, src)
	})
}

func TestConcurrentMovesIntoSharedDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	destDir := filepath.Join(tmpDir, "dest_concurrent")

	const numFiles = 10
	files := make([]string, numFiles)
	for i := range files {
		files[i] = filepath.Join(tmpDir, fmt.Sprintf("file%d.txt", i))
		require.NoError(t, os.WriteFile(files[i], []byte("test"), 0644))
	}

	var wg sync.WaitGroup
	errCh := make(chan error, numFiles)
	for _, f := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()
			if err := organize.EnsureDir(destDir); err != nil {
				errCh <- err
				return
			}
			if err := organize.MoveFile(f, filepath.Join(destDir, filepath.Base(f))); err != nil {
				errCh <- fmt.Errorf("moving %s: %w", f, err)
			}
		}(f)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		assert.NoError(t, err)
	}
	for _, f := range files {
		testutils.AssertNotExist(t, f)
		assert.FileExists(t, filepath.Join(destDir, filepath.Base(f)))
	}
}
