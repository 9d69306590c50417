package domain

import (
	"fmt"
	"strings"
)

// Direction selects which side of a stored friend edge is exposed as a neighbor.
type Direction string

const (
	// DirectionOutgoing exposes only profile_id -> friend_id, matching how edges
	// are written.
	DirectionOutgoing Direction = "outgoing"
	// DirectionBoth exposes the edge from either endpoint.
	DirectionBoth Direction = "both"
)

// ParseDirection normalises a configured direction value. Empty input selects
// DirectionOutgoing.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(DirectionOutgoing):
		return DirectionOutgoing, nil
	case string(DirectionBoth), "symmetric":
		return DirectionBoth, nil
	default:
		return "", fmt.Errorf("unknown graph direction %q", raw)
	}
}
