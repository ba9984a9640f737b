package organize

import (
	"path/filepath"

	"filesorter/internal/destination"
	"filesorter/internal/errors"
	"filesorter/internal/log"
	"filesorter/internal/mime"
	"filesorter/internal/rules"
	"filesorter/pkg/types"
)

// Relocator classifies candidates and moves them under the destination root.
// It processes one file at a time, in input order, and holds no state that
// changes between files.
type Relocator struct {
	rules    *rules.RuleSet
	resolver *destination.Resolver
	detector mime.Detector
	observer func(types.Outcome)
}

// Option configures a Relocator.
type Option func(*Relocator)

// WithDetector fills in missing MIME hints. Detection only runs when a MIME
// rule could win over the extension match.
func WithDetector(d mime.Detector) Option {
	return func(r *Relocator) { r.detector = d }
}

// WithObserver is called with every outcome as soon as it is known.
func WithObserver(fn func(types.Outcome)) Option {
	return func(r *Relocator) { r.observer = fn }
}

// NewRelocator creates a Relocator over a rule set and resolver.
func NewRelocator(rs *rules.RuleSet, resolver *destination.Resolver, opts ...Option) *Relocator {
	r := &Relocator{rules: rs, resolver: resolver}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Relocate processes candidates in order and returns one outcome per file.
// Per-file failures are recorded as Failed outcomes. The returned error is
// non-nil only for the fatal class; the run stops there and the outcomes
// gathered so far, including the failing file, are returned with it.
func (r *Relocator) Relocate(candidates []types.FileCandidate) ([]types.Outcome, error) {
	log.Infof("Relocating %d files", len(candidates))
	outcomes := make([]types.Outcome, 0, len(candidates))
	for _, c := range candidates {
		outcome, err := r.RelocateOne(c)
		outcomes = append(outcomes, outcome)
		if err != nil {
			return outcomes, err
		}
	}
	return outcomes, nil
}

// RelocateOne matches, resolves, ensures the directory and moves a single
// file. Only a fatal error is returned; everything else is in the outcome.
func (r *Relocator) RelocateOne(c types.FileCandidate) (types.Outcome, error) {
	c = r.withHint(c)

	rule, ok := r.rules.Match(c)
	if !ok {
		log.Debugf("No rule matched %s", c.Path)
		return r.emit(types.Unmatched(c.Path)), nil
	}

	dir, err := r.resolver.Resolve(rule.Destination, c)
	if err != nil {
		log.LogWithError(err).Warn("Skipping file")
		return r.emit(types.Failed(c.Path, err)), nil
	}

	if err := EnsureDir(dir); err != nil {
		outcome := r.emit(types.Failed(c.Path, err))
		if errors.IsFatal(err) {
			return outcome, err
		}
		log.LogWithError(err).Warn("Skipping file")
		return outcome, nil
	}

	dest := filepath.Join(dir, c.Name())
	if err := MoveFile(c.Path, dest); err != nil {
		log.LogWithError(err).Warn("Skipping file")
		return r.emit(types.Failed(c.Path, err)), nil
	}

	return r.emit(types.Moved(c.Path, dest)), nil
}

func (r *Relocator) withHint(c types.FileCandidate) types.FileCandidate {
	if c.MIMEHint != "" || r.detector == nil || !r.rules.NeedsHint(c.Path) {
		return c
	}
	hint, err := r.detector.Detect(c.Path)
	if err != nil {
		log.LogWithError(err).Debug("No MIME hint")
		return c
	}
	c.MIMEHint = hint
	return c
}

func (r *Relocator) emit(o types.Outcome) types.Outcome {
	if r.observer != nil {
		r.observer(o)
	}
	return o
}
