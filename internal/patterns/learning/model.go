// Package learning mines the history journal for files no rule matched and
// proposes rules that would have sorted them.
package learning

import (
	"time"

	"filesorter/pkg/types"
)

// PatternType says what a detected pattern groups files by.
type PatternType string

const (
	PatternExtension PatternType = "extension"
	PatternContent   PatternType = "content"
)

// DetectedPattern is a group of unmatched files sharing an extension or a
// sniffed MIME type.
type DetectedPattern struct {
	Type        PatternType
	Value       string // extension without dot, or MIME type
	Occurrences int
	Confidence  float64 // Occurrences over the number of files analyzed
	Examples    []string
	FirstSeen   time.Time
	LastSeen    time.Time
}

// Suggestion pairs a pattern with the rule that would have caught it.
type Suggestion struct {
	Pattern DetectedPattern
	Rule    types.SortRule
}

const maxExamples = 3

func (p *DetectedPattern) observe(source string, at time.Time) {
	p.Occurrences++
	if len(p.Examples) < maxExamples {
		p.Examples = append(p.Examples, source)
	}
	if p.FirstSeen.IsZero() || at.Before(p.FirstSeen) {
		p.FirstSeen = at
	}
	if at.After(p.LastSeen) {
		p.LastSeen = at
	}
}
