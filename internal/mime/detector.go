// Package mime supplies the MIME-type hint used by rules that match on
// content type rather than extension.
package mime

import (
	"mime"
	"strings"

	"filesorter/internal/errors"

	"github.com/gabriel-vasile/mimetype"
)

// Detector derives a MIME type for a file.
type Detector interface {
	Detect(path string) (string, error)
}

// MagicDetector sniffs the leading bytes of a file.
type MagicDetector struct{}

// NewMagicDetector returns a content-sniffing detector.
func NewMagicDetector() *MagicDetector {
	return &MagicDetector{}
}

// Detect returns the bare media type (parameters such as charset stripped).
func (d *MagicDetector) Detect(path string) (string, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", errors.NewFileError("failed to detect MIME type", path, errors.FileAccessDenied, err)
	}
	mediaType, _, err := mime.ParseMediaType(m.String())
	if err != nil {
		return m.String(), nil
	}
	return mediaType, nil
}

// ExtensionFor returns the usual extension for a media type, without the
// dot, or "" when the type is unknown or has none.
func ExtensionFor(mediaType string) string {
	m := mimetype.Lookup(mediaType)
	if m == nil {
		return ""
	}
	return strings.TrimPrefix(m.Extension(), ".")
}

// Static always returns the same hint; useful when the caller already knows
// the type or wants detection off.
type Static string

// Detect returns the fixed hint.
func (s Static) Detect(string) (string, error) {
	return string(s), nil
}
