package repository

import (
	"fmt"

	"github.com/vanshika/profilegraph/internal/domain"
)

func profileProperties(p domain.Profile) map[string]any {
	return map[string]any{
		"img":       p.Img,
		"firstName": p.FirstName,
		"lastName":  p.LastName,
		"phone":     p.Phone,
		"address":   p.Address,
		"city":      p.City,
		"state":     p.State,
		"zipcode":   p.Zipcode,
		"available": p.Available,
	}
}

func profileFromMap(m map[string]any) domain.Profile {
	return domain.Profile{
		ID:        domain.ProfileID(toInt64(m["id"])),
		Img:       toString(m["img"]),
		FirstName: toString(m["firstName"]),
		LastName:  toString(m["lastName"]),
		Phone:     toString(m["phone"]),
		Address:   toString(m["address"]),
		City:      toString(m["city"]),
		State:     toString(m["state"]),
		Zipcode:   toString(m["zipcode"]),
		Available: toBool(m["available"]),
	}
}

// uniqueIDs drops repeated ids, keeping the first occurrence so the store's
// ordering survives.
func uniqueIDs(ids []domain.ProfileID) []domain.ProfileID {
	seen := make(map[domain.ProfileID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func uniqueProfiles(profiles []domain.Profile) []domain.Profile {
	seen := make(map[domain.ProfileID]struct{}, len(profiles))
	out := profiles[:0]
	for _, p := range profiles {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	default:
		return false
	}
}
