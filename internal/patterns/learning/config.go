package learning

import (
	"filesorter/internal/errors"
)

// AnalysisConfig tunes how unmatched files turn into rule suggestions.
type AnalysisConfig struct {
	// Minimum share of the analyzed unmatched files a group must cover.
	MinConfidence float64
	// Minimum number of unmatched files a group needs before it is suggested.
	MinOccurrences int
	// Only outcomes recorded within this many days are considered.
	RecencyDays int
	// Upper bound on the journal entries read per analysis.
	SampleLimit int
	// Upper bound on returned suggestions; 0 means no bound.
	MaxSuggestions int
	// Whether extensionless files still in place are sniffed for a MIME type.
	ContentSampling bool
}

// DefaultConfig returns the settings used by the rules suggest command.
func DefaultConfig() AnalysisConfig {
	return AnalysisConfig{
		MinConfidence:   0.05,
		MinOccurrences:  3,
		RecencyDays:     30,
		SampleLimit:     1000,
		MaxSuggestions:  5,
		ContentSampling: true,
	}
}

// Validate rejects settings the analysis cannot work with.
func (c AnalysisConfig) Validate() error {
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errors.NewConfigError("confidence threshold must be between 0 and 1", "min_confidence", errors.InvalidConfig, nil)
	}
	if c.MinOccurrences < 1 {
		return errors.NewConfigError("minimum occurrences must be at least 1", "min_occurrences", errors.InvalidConfig, nil)
	}
	if c.RecencyDays < 1 {
		return errors.NewConfigError("recency window must be at least 1 day", "recency_days", errors.InvalidConfig, nil)
	}
	if c.SampleLimit < 1 {
		return errors.NewConfigError("sample limit must be at least 1", "sample_limit", errors.InvalidConfig, nil)
	}
	if c.MaxSuggestions < 0 {
		return errors.NewConfigError("max suggestions cannot be negative", "max_suggestions", errors.InvalidConfig, nil)
	}
	return nil
}
