// Package connection resolves the shortest chain of friends between two
// profiles using on-demand neighbor lookups.
package connection

import (
	"context"

	"github.com/vanshika/profilegraph/internal/domain"
)

// Connection lists the intermediate profiles between a source and a target,
// source side first.
//
// Two encodings are special: a self-connection is reported as the source id
// alone, and directly connected profiles are reported as the target id alone
// rather than an empty list.
type Connection []domain.ProfileID

// Resolver computes shortest connections over a NeighborSource. A Resolver
// holds no per-search state and may be shared between goroutines.
type Resolver struct {
	source NeighborSource
}

// NewResolver builds a Resolver that expands profiles through source.
func NewResolver(source NeighborSource) *Resolver {
	return &Resolver{source: source}
}

// FindShortestConnection runs a breadth-first search from source and returns
// the first shortest connection to target found under the source's neighbor
// order.
//
// It returns ErrNoConnection when target is unreachable, an error matching
// ErrSourceUnavailable when a lookup fails, and an error matching ErrCanceled
// when ctx ends first. Each profile is expanded at most once.
func (r *Resolver) FindShortestConnection(ctx context.Context, source, target domain.ProfileID) (Connection, error) {
	if source == target {
		return Connection{source}, nil
	}

	queue := newFrontier(source)
	visited := make(map[domain.ProfileID]struct{})

	for {
		idx, ok := queue.pop()
		if !ok {
			return nil, ErrNoConnection
		}

		current := queue.id(idx)
		if _, seen := visited[current]; seen {
			continue
		}
		visited[current] = struct{}{}

		if err := ctx.Err(); err != nil {
			return nil, canceled(err)
		}

		neighbors, err := r.source.NeighborsOf(ctx, current)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, canceled(ctxErr)
			}
			return nil, &SourceError{ProfileID: current, Err: err}
		}

		for _, neighbor := range neighbors {
			if neighbor == target {
				path := queue.connection(idx)
				if len(path) == 0 {
					return Connection{target}, nil
				}
				return path, nil
			}
			queue.push(neighbor, idx)
		}
	}
}
