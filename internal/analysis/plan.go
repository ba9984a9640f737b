// Package analysis previews a sort without touching the filesystem.
package analysis

import (
	"os"
	"path/filepath"

	"filesorter/internal/destination"
	"filesorter/internal/errors"
	"filesorter/internal/log"
	"filesorter/internal/mime"
	"filesorter/internal/rules"
	"filesorter/pkg/types"
)

// Verdict is what a real run would most likely do with a file.
type Verdict int

const (
	// WouldMove means the file would be moved to Destination
	WouldMove Verdict = iota
	// WouldSkip means no rule matches the file
	WouldSkip
	// WouldConflict means a file already exists at Destination
	WouldConflict
	// WouldBlock means a component of Destination's directory exists but is not a directory
	WouldBlock
	// WouldFail means the destination could not be resolved; Cause says why
	WouldFail
)

func (v Verdict) String() string {
	switch v {
	case WouldMove:
		return "move"
	case WouldSkip:
		return "skip"
	case WouldConflict:
		return "conflict"
	case WouldBlock:
		return "blocked"
	case WouldFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Planned describes one candidate's expected fate.
type Planned struct {
	Verdict     Verdict
	Source      string
	Label       string // matched rule's folder, empty when skipped
	MIMEHint    string
	Destination string // full target path, empty when skipped or failed
	Cause       error
}

// Planner matches and resolves candidates the same way a Relocator does
// but never creates directories or moves files.
type Planner struct {
	rules    *rules.RuleSet
	resolver *destination.Resolver
	detector mime.Detector
}

// NewPlanner creates a planner. detector may be nil.
func NewPlanner(rs *rules.RuleSet, resolver *destination.Resolver, detector mime.Detector) *Planner {
	return &Planner{rules: rs, resolver: resolver, detector: detector}
}

// Plan returns one entry per candidate, in order.
func (p *Planner) Plan(candidates []types.FileCandidate) []Planned {
	plan := make([]Planned, 0, len(candidates))
	for _, c := range candidates {
		plan = append(plan, p.PlanOne(c))
	}
	return plan
}

// PlanOne previews a single candidate.
func (p *Planner) PlanOne(c types.FileCandidate) Planned {
	if c.MIMEHint == "" && p.detector != nil && p.rules.NeedsHint(c.Path) {
		if hint, err := p.detector.Detect(c.Path); err == nil {
			c.MIMEHint = hint
		}
	}

	rule, ok := p.rules.Match(c)
	if !ok {
		return Planned{Verdict: WouldSkip, Source: c.Path, MIMEHint: c.MIMEHint}
	}

	planned := Planned{Source: c.Path, Label: rule.Destination, MIMEHint: c.MIMEHint}
	dir, err := p.resolver.Resolve(rule.Destination, c)
	if err != nil {
		planned.Verdict = WouldFail
		planned.Cause = err
		return planned
	}
	planned.Destination = filepath.Join(dir, c.Name())

	if blocker := firstNonDir(dir); blocker != "" {
		planned.Verdict = WouldBlock
		planned.Cause = errors.NewFileError("path exists and is not a directory", blocker,
			errors.DestinationNotADirectory, nil)
		return planned
	}

	if _, err := os.Lstat(planned.Destination); err == nil {
		planned.Verdict = WouldConflict
		planned.Cause = errors.ErrDestinationExists
		return planned
	}

	planned.Verdict = WouldMove
	log.Debugf("Would move %s to %s", c.Path, planned.Destination)
	return planned
}

// firstNonDir returns the shallowest existing component of dir that is not
// a directory, or "" when every existing component is one.
func firstNonDir(dir string) string {
	dir = filepath.Clean(dir)
	var chain []string
	for p := dir; ; p = filepath.Dir(p) {
		chain = append(chain, p)
		if parent := filepath.Dir(p); parent == p {
			break
		}
	}
	for i := len(chain) - 1; i >= 0; i-- {
		info, err := os.Stat(chain[i])
		if err != nil {
			// Nothing below a missing component exists either.
			return ""
		}
		if !info.IsDir() {
			return chain[i]
		}
	}
	return ""
}

// Counts tallies a plan by verdict.
func Counts(plan []Planned) map[Verdict]int {
	counts := make(map[Verdict]int)
	for _, p := range plan {
		counts[p.Verdict]++
	}
	return counts
}
