package generator

// Config drives the synthetic data generator.
type Config struct {
	NumProfiles       int
	FriendsPerProfile int
	AvailableChance   float64
	Seed              int64
}

// DefaultConfig mirrors the seeder defaults: ten profiles with five sampled
// friends each.
func DefaultConfig() Config {
	return Config{
		NumProfiles:       10,
		FriendsPerProfile: 5,
		AvailableChance:   0.5,
		Seed:              42,
	}
}
