package connection

import (
	"errors"
	"fmt"

	"github.com/vanshika/profilegraph/internal/domain"
)

var (
	// ErrNoConnection reports that the target is not reachable from the source.
	// It is an expected outcome, not a fault.
	ErrNoConnection = errors.New("no connection found")

	// ErrSourceUnavailable reports that a neighbor lookup failed and the
	// resolution was aborted.
	ErrSourceUnavailable = errors.New("neighbor source unavailable")

	// ErrCanceled reports that the caller's context ended before the search
	// finished. It is returned joined with the context error.
	ErrCanceled = errors.New("connection search canceled")
)

// SourceError wraps a failed neighbor lookup with the profile being expanded.
type SourceError struct {
	ProfileID domain.ProfileID
	Err       error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("neighbors of profile %d: %v", e.ProfileID, e.Err)
}

// Unwrap exposes the underlying lookup failure.
func (e *SourceError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match ErrSourceUnavailable.
func (e *SourceError) Is(target error) bool {
	return target == ErrSourceUnavailable
}

func canceled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCanceled, cause)
}
