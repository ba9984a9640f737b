package organize

import (
	"filesorter/pkg/types"
)

// Organizer defines the relocation operations used by the CLI and watch mode.
// This allows for dependency injection in tests and other parts of the application
type Organizer interface {
	// Relocate processes candidates in order, returning one outcome per file
	Relocate(candidates []types.FileCandidate) ([]types.Outcome, error)

	// RelocateOne processes a single candidate
	RelocateOne(candidate types.FileCandidate) (types.Outcome, error)
}

// Ensure Relocator implements the Organizer interface
var _ Organizer = (*Relocator)(nil)
