package organize

import (
	"os"
	"path/filepath"
	"syscall"

	"filesorter/internal/errors"
	"filesorter/internal/log"
)

// EnsureDir creates path and any missing parents. Calling it on an existing
// directory is a no-op. If path, or one of its parents, exists but is not a
// directory the error is of kind DestinationNotADirectory, which is fatal.
func EnsureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return errors.NewFileError("exists but is not a directory", path, errors.DestinationNotADirectory, nil)
	}
	if errors.Is(err, syscall.ENOTDIR) {
		return errors.NewFileError("a parent exists but is not a directory", path, errors.DestinationNotADirectory, err)
	}
	if !os.IsNotExist(err) {
		return errors.NewFileError("failed to inspect destination directory", path, errors.FileCreateFailed, err)
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		if errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.EEXIST) {
			return errors.NewFileError("a parent exists but is not a directory", path, errors.DestinationNotADirectory, err)
		}
		return errors.NewFileError("failed to create destination directory", path, errors.FileCreateFailed, err)
	}

	log.LogWithFields(log.F("directory", path)).Info("Created directory")
	return nil
}

// MoveFile renames src to dest. It never overwrites: an existing dest is a
// MoveError and src is left untouched, as it is for any rename failure
// (including cross-device moves and permission errors). A dest equal to src
// is a MoveError too, since nothing would move.
func MoveFile(src, dest string) error {
	cleanSrc := filepath.Clean(src)
	cleanDest := filepath.Clean(dest)

	if cleanSrc == cleanDest {
		return errors.NewFileError("file is already at its destination", cleanSrc, errors.MoveError, nil)
	}

	srcInfo, err := os.Lstat(cleanSrc)
	if err != nil {
		return errors.NewFileError("source file error", cleanSrc, errors.MoveError, err)
	}
	if srcInfo.IsDir() {
		return errors.NewFileError("cannot move directory as file", cleanSrc, errors.MoveError, nil)
	}

	if _, err := os.Lstat(cleanDest); err == nil {
		return errors.NewFileError(errors.ErrDestinationExists.Error(), cleanDest, errors.MoveError, nil)
	} else if !os.IsNotExist(err) {
		return errors.NewFileError("error checking destination", cleanDest, errors.MoveError, err)
	}

	log.Debugf("Moving %s to %s", cleanSrc, cleanDest)
	if err := os.Rename(cleanSrc, cleanDest); err != nil {
		return errors.NewFileError("failed to move file", cleanSrc, errors.MoveError, err)
	}

	log.LogWithFields(log.F("source", cleanSrc), log.F("destination", cleanDest)).Info("Moved file")
	return nil
}
