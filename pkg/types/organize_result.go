package types

// OutcomeKind classifies what happened to a single candidate.
type OutcomeKind int

const (
	// OutcomeMoved means the file now lives at Destination
	OutcomeMoved OutcomeKind = iota
	// OutcomeUnmatched means no rule applied and the file was left in place
	OutcomeUnmatched
	// OutcomeFailed means relocation was attempted and Cause explains why it stopped
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeMoved:
		return "moved"
	case OutcomeUnmatched:
		return "unmatched"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome holds the result of a relocation attempt for a single file.
type Outcome struct {
	Kind        OutcomeKind `json:"kind"`
	Source      string      `json:"source"`
	Destination string      `json:"destination,omitempty"`
	Cause       error       `json:"-"`
}

// Moved records a successful move.
func Moved(source, destination string) Outcome {
	return Outcome{Kind: OutcomeMoved, Source: source, Destination: destination}
}

// Unmatched records a file no rule applied to.
func Unmatched(source string) Outcome {
	return Outcome{Kind: OutcomeUnmatched, Source: source}
}

// Failed records a file that could not be relocated.
func Failed(source string, cause error) Outcome {
	return Outcome{Kind: OutcomeFailed, Source: source, Cause: cause}
}
