package learning

import (
	"context"
	"sort"
	"strings"
	"time"

	"filesorter/internal/history"
	"filesorter/internal/log"
	"filesorter/internal/mime"
	"filesorter/internal/rules"
	"filesorter/pkg/types"
)

// EntrySource is the part of the history store the engine reads.
type EntrySource interface {
	EntriesOfKind(ctx context.Context, kind types.OutcomeKind, since time.Time, limit int) ([]history.Entry, error)
}

// Engine turns journaled unmatched outcomes into rule suggestions.
type Engine struct {
	source   EntrySource
	config   AnalysisConfig
	detector mime.Detector
	now      func() time.Time
}

// NewEngine creates an engine reading from source. A nil detector disables
// content sampling regardless of config.
func NewEngine(source EntrySource, config AnalysisConfig, detector mime.Detector) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		source:   source,
		config:   config,
		detector: detector,
		now:      time.Now,
	}, nil
}

type sighting struct {
	first, last time.Time
}

// Suggest analyzes recent unmatched files and proposes rules for the groups
// that rs still does not cover. Each file counts once however many runs
// skipped it.
func (e *Engine) Suggest(ctx context.Context, rs *rules.RuleSet) ([]Suggestion, error) {
	since := e.now().AddDate(0, 0, -e.config.RecencyDays)
	entries, err := e.source.EntriesOfKind(ctx, types.OutcomeUnmatched, since, e.config.SampleLimit)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]*sighting)
	var order []string
	for _, entry := range entries {
		s, ok := seen[entry.Source]
		if !ok {
			s = &sighting{first: entry.RecordedAt, last: entry.RecordedAt}
			seen[entry.Source] = s
			order = append(order, entry.Source)
			continue
		}
		if entry.RecordedAt.Before(s.first) {
			s.first = entry.RecordedAt
		}
		if entry.RecordedAt.After(s.last) {
			s.last = entry.RecordedAt
		}
	}

	groups := make(map[string]*DetectedPattern)
	for _, source := range order {
		patternType, value, ok := e.classify(source, rs)
		if !ok {
			continue
		}
		key := string(patternType) + ":" + value
		p, exists := groups[key]
		if !exists {
			p = &DetectedPattern{Type: patternType, Value: value}
			groups[key] = p
		}
		s := seen[source]
		p.observe(source, s.first)
		if s.last.After(p.LastSeen) {
			p.LastSeen = s.last
		}
	}

	total := len(order)
	var suggestions []Suggestion
	for _, p := range groups {
		p.Confidence = float64(p.Occurrences) / float64(total)
		if p.Occurrences < e.config.MinOccurrences || p.Confidence < e.config.MinConfidence {
			continue
		}
		suggestions = append(suggestions, Suggestion{Pattern: *p})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		a, b := suggestions[i].Pattern, suggestions[j].Pattern
		if a.Occurrences != b.Occurrences {
			return a.Occurrences > b.Occurrences
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Value < b.Value
	})
	if e.config.MaxSuggestions > 0 && len(suggestions) > e.config.MaxSuggestions {
		suggestions = suggestions[:e.config.MaxSuggestions]
	}

	// Extension groups keep their own name; content groups yield on clashes.
	taken := make(map[string]bool)
	for _, sg := range suggestions {
		if sg.Pattern.Type == PatternExtension {
			taken[sg.Pattern.Value] = true
		}
	}
	for i := range suggestions {
		label := suggestions[i].Pattern.Value
		if suggestions[i].Pattern.Type == PatternContent {
			label = folderFor(suggestions[i].Pattern.Value, taken)
			taken[label] = true
		}
		suggestions[i].Rule = ruleFor(suggestions[i].Pattern, label)
	}

	log.LogWithFields(
		log.F("entries", len(entries)),
		log.F("files", total),
		log.F("suggestions", len(suggestions)),
	).Debug("Pattern analysis completed")

	return suggestions, nil
}

// classify groups a file by extension, or by sniffed MIME type when it has
// none. Files the current rules already match are left out.
func (e *Engine) classify(source string, rs *rules.RuleSet) (PatternType, string, bool) {
	if ext := rules.Extension(source); ext != "" {
		if _, matched := rs.Match(types.FileCandidate{Path: source}); matched {
			return "", "", false
		}
		return PatternExtension, ext, true
	}

	if !e.config.ContentSampling || e.detector == nil {
		return "", "", false
	}
	hint, err := e.detector.Detect(source)
	if err != nil {
		log.LogWithFields(log.F("path", source), log.F("error", err)).Debug("Skipping file that can no longer be sampled")
		return "", "", false
	}
	if hint == "" || hint == "application/octet-stream" {
		return "", "", false
	}
	if _, matched := rs.Match(types.FileCandidate{Path: source, MIMEHint: hint}); matched {
		return "", "", false
	}
	return PatternContent, hint, true
}

func ruleFor(p DetectedPattern, label string) types.SortRule {
	if p.Type == PatternExtension {
		return types.SortRule{
			Extensions:  []string{p.Value},
			MimeTypes:   []string{},
			Destination: label,
		}
	}
	return types.SortRule{
		Extensions:  []string{},
		MimeTypes:   []string{p.Value},
		Destination: label,
	}
}

// folderFor names the folder for a content group: the media type's usual
// extension, else its subtype without "x-" or "vnd." ("x-executable" becomes
// "executable"). A name already taken falls back to the full media type.
func folderFor(mediaType string, taken map[string]bool) string {
	label := mime.ExtensionFor(mediaType)
	if label == "" {
		top, sub, _ := strings.Cut(mediaType, "/")
		sub, _, _ = strings.Cut(sub, "+")
		label = strings.TrimPrefix(strings.TrimPrefix(sub, "x-"), "vnd.")
		if label == "" {
			label = top
		}
	}
	if taken[label] {
		label = strings.ReplaceAll(mediaType, "/", "-")
	}
	return label
}
