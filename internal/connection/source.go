package connection

import (
	"context"

	"github.com/vanshika/profilegraph/internal/domain"
)

// NeighborSource returns the profiles directly connected to a profile.
//
// Implementations must be read-only and safe for concurrent use. The returned
// order is significant: it decides which of several equally short connections
// the resolver reports. An unknown id and a profile without friends both yield
// an empty slice.
type NeighborSource interface {
	NeighborsOf(ctx context.Context, id domain.ProfileID) ([]domain.ProfileID, error)
}

// NeighborSourceFunc adapts a function to the NeighborSource interface.
type NeighborSourceFunc func(ctx context.Context, id domain.ProfileID) ([]domain.ProfileID, error)

// NeighborsOf implements NeighborSource.
func (f NeighborSourceFunc) NeighborsOf(ctx context.Context, id domain.ProfileID) ([]domain.ProfileID, error) {
	return f(ctx, id)
}
