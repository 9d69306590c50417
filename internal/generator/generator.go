package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/vanshika/profilegraph/internal/domain"
)

// Generator produces synthetic profiles and friendships.
type Generator struct {
	cfg           Config
	rand          *rand.Rand
	nameFragments nameFragments
}

// New returns a configured Generator instance. Non-positive counts fall back
// to DefaultConfig; FriendsPerProfile is capped so sampling stays possible.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumProfiles <= 0 {
		cfg.NumProfiles = defaults.NumProfiles
	}
	if cfg.FriendsPerProfile < 0 {
		cfg.FriendsPerProfile = defaults.FriendsPerProfile
	}
	if cfg.FriendsPerProfile > cfg.NumProfiles {
		cfg.FriendsPerProfile = cfg.NumProfiles
	}
	if cfg.AvailableChance < 0 || cfg.AvailableChance > 1 {
		cfg.AvailableChance = defaults.AvailableChance
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:           cfg,
		rand:          rand.New(rand.NewSource(cfg.Seed)),
		nameFragments: defaultNameFragments(),
	}
}

// Generate synthesises profiles numbered 1..NumProfiles and, for each one,
// FriendsPerProfile distinct sampled friends. A sample that lands on the
// profile itself is dropped rather than redrawn, so some profiles end up with
// one friend fewer. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (domain.Dataset, error) {
	profiles := make([]domain.Profile, g.cfg.NumProfiles)
	for i := range profiles {
		if err := ctx.Err(); err != nil {
			return domain.Dataset{}, err
		}
		id := domain.ProfileID(i + 1)
		profiles[i] = domain.Profile{
			ID:        id,
			Img:       fmt.Sprintf("https://picsum.photos/seed/%d/200/200", id),
			FirstName: g.pick(g.nameFragments.first),
			LastName:  g.pick(g.nameFragments.last),
			Phone:     g.randomPhone(),
			Address:   g.randomStreet(),
			City:      g.pick(g.nameFragments.cities),
			State:     g.pick(g.nameFragments.states),
			Zipcode:   fmt.Sprintf("%05d", g.rand.Intn(99999)),
			Available: g.rand.Float64() < g.cfg.AvailableChance,
		}
	}

	friendships := make([]domain.Friendship, 0, len(profiles)*g.cfg.FriendsPerProfile)
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return domain.Dataset{}, err
		}
		for _, idx := range g.sample(len(profiles), g.cfg.FriendsPerProfile) {
			friend := profiles[idx].ID
			if friend == p.ID {
				continue
			}
			friendships = append(friendships, domain.Friendship{ProfileID: p.ID, FriendID: friend})
		}
	}

	return domain.Dataset{Profiles: profiles, Friendships: friendships}, nil
}

// sample returns k distinct indexes in [0, n) using a partial Fisher-Yates
// shuffle.
func (g *Generator) sample(n, k int) []int {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + g.rand.Intn(n-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k]
}

func (g *Generator) pick(options []string) string {
	return options[g.rand.Intn(len(options))]
}

func (g *Generator) randomPhone() string {
	return fmt.Sprintf("+1%03d%03d%04d", g.rand.Intn(900)+100, g.rand.Intn(900)+100, g.rand.Intn(10000))
}

func (g *Generator) randomStreet() string {
	return fmt.Sprintf("%d %s %s", g.rand.Intn(9999)+1,
		g.pick(g.nameFragments.streetNames),
		g.pick(g.nameFragments.streetSuffix))
}

type nameFragments struct {
	first        []string
	last         []string
	streetNames  []string
	streetSuffix []string
	cities       []string
	states       []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:        []string{"Jane", "John", "Alex", "Priya", "Liu", "Maria", "Omar", "Sofia", "Noah", "Emma", "Lucas", "Mia", "Ava", "Ethan", "Zara"},
		last:         []string{"Doe", "Smith", "Chen", "Patel", "Garcia", "Khan", "Kim", "Ivanov", "Nguyen", "Silva", "Brown", "Lee"},
		streetNames:  []string{"Market", "Mission", "Broadway", "Fifth", "Sunset", "Park", "Cedar", "Oak", "Pine", "Ash"},
		streetSuffix: []string{"St", "Ave", "Blvd", "Ln", "Rd", "Way"},
		cities:       []string{"San Francisco", "New York", "Seattle", "Austin", "Chicago", "Miami", "Denver", "Boston", "Los Angeles"},
		states:       []string{"CA", "NY", "WA", "TX", "IL", "FL", "CO", "MA"},
	}
}
