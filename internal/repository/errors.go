package repository

import "errors"

var (
	// ErrProfileNotFound is returned when the requested profile does not exist.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrFriendshipNotFound is returned when removing an edge that is not stored.
	ErrFriendshipNotFound = errors.New("friendship not found")

	// ErrInvalidFriendship is returned for self edges or edges whose endpoints
	// are not both stored profiles.
	ErrInvalidFriendship = errors.New("invalid friendship")
)
