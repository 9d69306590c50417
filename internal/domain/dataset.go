package domain

// Dataset is a batch of profiles and friendships exchanged between the data
// generator and the ingestor. Friendship ids refer to Profile.ID values inside
// the same dataset, not to ids assigned by a store.
type Dataset struct {
	Profiles    []Profile    `json:"profiles"`
	Friendships []Friendship `json:"friendships"`
}
