// Package destination turns a matched category into a target directory.
package destination

import (
	"os"
	"path/filepath"
	"time"

	"filesorter/internal/errors"
	"filesorter/pkg/types"

	"github.com/lestrrat-go/strftime"
)

// DefaultDatePattern nests files under year-month-day folders (2020-01-01).
const DefaultDatePattern = "%Y-%m-%d"

// Resolver computes destination directories. It never touches the
// destination tree; it only reads source metadata when a date pattern is on.
type Resolver struct {
	root    string
	pattern *strftime.Strftime
}

// CompilePattern parses a strftime-style date pattern. A pattern with no
// directives is valid and always formats to itself.
func CompilePattern(pattern string) (*strftime.Strftime, error) {
	f, err := strftime.New(pattern)
	if err != nil {
		return nil, errors.NewConfigError("invalid date pattern", pattern, errors.InvalidConfig, err)
	}
	return f, nil
}

// NewResolver builds a resolver rooted at root. When useDatePattern is
// false the pattern is ignored and not compiled.
func NewResolver(root string, useDatePattern bool, datePattern string) (*Resolver, error) {
	r := &Resolver{root: filepath.Clean(root)}
	if useDatePattern {
		f, err := CompilePattern(datePattern)
		if err != nil {
			return nil, err
		}
		r.pattern = f
	}
	return r, nil
}

// Root returns the destination root.
func (r *Resolver) Root() string {
	return r.root
}

// UsesDatePattern reports whether resolved paths carry a date folder.
func (r *Resolver) UsesDatePattern() bool {
	return r.pattern != nil
}

// Resolve returns root/label, or root/<date>/label where <date> is the
// file's modification time in UTC formatted with the date pattern.
func (r *Resolver) Resolve(label string, file types.FileCandidate) (string, error) {
	if r.pattern == nil {
		return filepath.Join(r.root, label), nil
	}

	info, err := os.Stat(file.Path)
	if err != nil {
		return "", errors.NewFileError("cannot read modification time", file.Path, errors.MetadataError, err)
	}
	return filepath.Join(r.root, r.FormatDate(info.ModTime()), label), nil
}

// FormatDate renders t in UTC with the configured pattern.
func (r *Resolver) FormatDate(t time.Time) string {
	if r.pattern == nil {
		return ""
	}
	return r.pattern.FormatString(t.UTC())
}
