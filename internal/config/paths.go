package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// AppDirName is the folder used under each XDG base directory
	AppDirName = "filesorter"

	// SettingsFile is the name of the settings file
	SettingsFile = "settings.yaml"

	// HistoryFile is the name of the relocation journal database
	HistoryFile = "history.db"

	// RunLockFile guards against two sort runs at once
	RunLockFile = "run.lock"
)

// Environment variable names
const (
	// EnvConfig overrides the settings file location
	EnvConfig = "FILESORTER_CONFIG"

	// EnvDataDir overrides the XDG data directory for filesorter
	EnvDataDir = "FILESORTER_DATA_DIR"

	// EnvStateDir overrides the XDG state directory for filesorter
	EnvStateDir = "FILESORTER_STATE_DIR"
)

// DefaultPath returns the settings file location.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(xdg.ConfigHome, AppDirName, SettingsFile)
}

// DataDir returns where the history journal lives.
func DataDir() string {
	if p := os.Getenv(EnvDataDir); p != "" {
		return p
	}
	return filepath.Join(xdg.DataHome, AppDirName)
}

// StateDir returns where the run lock lives.
func StateDir() string {
	if p := os.Getenv(EnvStateDir); p != "" {
		return p
	}
	return filepath.Join(xdg.StateHome, AppDirName)
}

// HistoryPath returns the journal database path.
func HistoryPath() string {
	return filepath.Join(DataDir(), HistoryFile)
}

// RunLockPath returns the run lock path.
func RunLockPath() string {
	return filepath.Join(StateDir(), RunLockFile)
}
