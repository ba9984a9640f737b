package types

import "strings"

// SortRule maps a set of filename extensions and MIME types to a destination
// label. It is used within the application's configuration; list position
// decides which rule wins when several match.
type SortRule struct {
	Extensions  []string `yaml:"extensions"`  // Lowercase, dot-free extensions (e.g., "zip", "mp4").
	MimeTypes   []string `yaml:"mime_types"`  // MIME types matched against a detected hint (may be empty).
	Destination string   `yaml:"destination"` // Single folder name under the destination root (e.g., "archives").
}

// IsEmpty reports whether the rule can never match anything.
func (r SortRule) IsEmpty() bool {
	return len(r.Extensions) == 0 && len(r.MimeTypes) == 0
}

// String renders the rule the way the rules listing shows it.
func (r SortRule) String() string {
	var sb strings.Builder
	sb.WriteString(r.Destination)
	if len(r.Extensions) > 0 {
		sb.WriteString(" <- ")
		sb.WriteString(strings.Join(r.Extensions, ", "))
	}
	if len(r.MimeTypes) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(r.MimeTypes, ", "))
		sb.WriteString("]")
	}
	return sb.String()
}
