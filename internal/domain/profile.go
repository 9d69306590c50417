package domain

import "strconv"

// ProfileID uniquely identifies a profile in the social graph.
type ProfileID int64

// String renders the identifier in base 10.
func (id ProfileID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseProfileID parses a base-10 profile identifier.
func ParseProfileID(raw string) (ProfileID, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return ProfileID(v), nil
}

// Profile aggregates the canonical profile record.
type Profile struct {
	ID        ProfileID `json:"id"`
	Img       string    `json:"img"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zipcode   string    `json:"zipcode"`
	Available bool      `json:"available"`
}

// Friendship is a stored friend edge. Stores keep it directed from ProfileID to
// FriendID; whether traversal honors the reverse direction is decided by the
// configured Direction.
type Friendship struct {
	ProfileID ProfileID `json:"profile_id"`
	FriendID  ProfileID `json:"friend_id"`
}
