package types

import "path/filepath"

// FileCandidate is a regular file found directly inside a source directory.
// MIMEHint is optional; an empty hint never matches a MIME rule.
type FileCandidate struct {
	Path     string `json:"path"`
	MIMEHint string `json:"mime_hint,omitempty"`
}

// Name returns the base name of the file
func (f FileCandidate) Name() string {
	return filepath.Base(f.Path)
}
