package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vanshika/profilegraph/internal/domain"
)

// MemoryRepository keeps profiles and friendships in process memory. It backs
// local development and tests and honors the same ordering rules as the
// persistent repositories.
type MemoryRepository struct {
	mu        sync.RWMutex
	direction domain.Direction
	nextID    domain.ProfileID
	profiles  map[domain.ProfileID]domain.Profile
	outgoing  map[domain.ProfileID][]domain.ProfileID
	incoming  map[domain.ProfileID][]domain.ProfileID
}

// NewMemory constructs an empty MemoryRepository.
func NewMemory(direction domain.Direction) *MemoryRepository {
	if direction == "" {
		direction = domain.DirectionOutgoing
	}
	return &MemoryRepository{
		direction: direction,
		profiles:  map[domain.ProfileID]domain.Profile{},
		outgoing:  map[domain.ProfileID][]domain.ProfileID{},
		incoming:  map[domain.ProfileID][]domain.ProfileID{},
	}
}

// Migrate is a no-op.
func (m *MemoryRepository) Migrate(context.Context) error {
	return nil
}

func (m *MemoryRepository) Create(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.profiles[p.ID] = p
	return p, nil
}

func (m *MemoryRepository) Get(ctx context.Context, id domain.ProfileID) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return domain.Profile{}, ErrProfileNotFound
	}
	return p, nil
}

func (m *MemoryRepository) List(ctx context.Context) ([]domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	profiles := make([]domain.Profile, 0, len(m.profiles))
	for _, p := range m.profiles {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
	return profiles, nil
}

func (m *MemoryRepository) Update(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; !ok {
		return domain.Profile{}, ErrProfileNotFound
	}
	m.profiles[p.ID] = p
	return p, nil
}

func (m *MemoryRepository) Delete(ctx context.Context, id domain.ProfileID) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return domain.Profile{}, ErrProfileNotFound
	}
	delete(m.profiles, id)
	for _, friend := range m.outgoing[id] {
		m.incoming[friend] = without(m.incoming[friend], id)
	}
	for _, friend := range m.incoming[id] {
		m.outgoing[friend] = without(m.outgoing[friend], id)
	}
	delete(m.outgoing, id)
	delete(m.incoming, id)
	return p, nil
}

func (m *MemoryRepository) AddFriend(ctx context.Context, profileID, friendID domain.ProfileID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if profileID == friendID {
		return fmt.Errorf("%w: profile %d cannot befriend itself", ErrInvalidFriendship, profileID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, okA := m.profiles[profileID]
	_, okB := m.profiles[friendID]
	if !okA || !okB {
		return fmt.Errorf("%w: profiles %d and %d must both exist", ErrInvalidFriendship, profileID, friendID)
	}
	for _, existing := range m.outgoing[profileID] {
		if existing == friendID {
			return nil
		}
	}
	m.outgoing[profileID] = append(m.outgoing[profileID], friendID)
	m.incoming[friendID] = append(m.incoming[friendID], profileID)
	return nil
}

func (m *MemoryRepository) RemoveFriend(ctx context.Context, profileID, friendID domain.ProfileID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.outgoing[profileID]) + len(m.outgoing[friendID])
	m.outgoing[profileID] = without(m.outgoing[profileID], friendID)
	m.incoming[friendID] = without(m.incoming[friendID], profileID)
	m.outgoing[friendID] = without(m.outgoing[friendID], profileID)
	m.incoming[profileID] = without(m.incoming[profileID], friendID)
	if len(m.outgoing[profileID])+len(m.outgoing[friendID]) == before {
		return ErrFriendshipNotFound
	}
	return nil
}

func (m *MemoryRepository) Friends(ctx context.Context, id domain.ProfileID) ([]domain.Profile, error) {
	ids, err := m.NeighborsOf(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	profiles := make([]domain.Profile, 0, len(ids))
	for _, friend := range ids {
		if p, ok := m.profiles[friend]; ok {
			profiles = append(profiles, p)
		}
	}
	return profiles, nil
}

func (m *MemoryRepository) NeighborsOf(ctx context.Context, id domain.ProfileID) ([]domain.ProfileID, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := append([]domain.ProfileID(nil), m.outgoing[id]...)
	if m.direction == domain.DirectionBoth {
		ids = append(ids, m.incoming[id]...)
	}
	return uniqueIDs(ids), nil
}

func (m *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryRepository) Close(context.Context) error {
	return nil
}

func without(ids []domain.ProfileID, drop domain.ProfileID) []domain.ProfileID {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
