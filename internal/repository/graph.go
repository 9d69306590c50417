package repository

import (
	"context"
	"fmt"

	"github.com/vanshika/profilegraph/internal/domain"
	"github.com/vanshika/profilegraph/internal/graph"
)

// GraphRepository stores profiles as :Profile nodes and friendships as
// directed [:FRIEND] relationships in Neo4j.
type GraphRepository struct {
	client    graph.Client
	direction domain.Direction
}

// NewGraph instantiates a GraphRepository backed by the supplied graph client.
func NewGraph(client graph.Client, direction domain.Direction) *GraphRepository {
	if direction == "" {
		direction = domain.DirectionOutgoing
	}
	return &GraphRepository{client: client, direction: direction}
}

// Migrate ensures profile ids are unique.
func (r *GraphRepository) Migrate(ctx context.Context) error {
	if _, err := r.client.ExecuteWrite(ctx, profileConstraintCypher, nil); err != nil {
		return fmt.Errorf("create profile constraint: %w", err)
	}
	return nil
}

// Create stores a new profile, assigning the next id from a sequence node.
func (r *GraphRepository) Create(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	res, err := r.client.ExecuteWrite(ctx, createProfileCypher, map[string]any{
		"props": profileProperties(p),
	})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	if len(res.Records) == 0 {
		return domain.Profile{}, fmt.Errorf("create profile: no id returned")
	}
	p.ID = domain.ProfileID(toInt64(res.Records[0]["id"]))
	return p, nil
}

// Get returns a single profile.
func (r *GraphRepository) Get(ctx context.Context, id domain.ProfileID) (domain.Profile, error) {
	res, err := r.client.ExecuteRead(ctx, getProfileCypher, map[string]any{"id": int64(id)})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile %d: %w", id, err)
	}
	return singleProfile(res)
}

// List returns all profiles ordered by id.
func (r *GraphRepository) List(ctx context.Context) ([]domain.Profile, error) {
	res, err := r.client.ExecuteRead(ctx, listProfilesCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profilesFromResult(res), nil
}

// Update overwrites the stored fields of an existing profile.
func (r *GraphRepository) Update(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	res, err := r.client.ExecuteWrite(ctx, updateProfileCypher, map[string]any{
		"id":    int64(p.ID),
		"props": profileProperties(p),
	})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("update profile %d: %w", p.ID, err)
	}
	return singleProfile(res)
}

// Delete removes a profile with all its friendships and returns it.
func (r *GraphRepository) Delete(ctx context.Context, id domain.ProfileID) (domain.Profile, error) {
	res, err := r.client.ExecuteWrite(ctx, deleteProfileCypher, map[string]any{"id": int64(id)})
	if err != nil {
		return domain.Profile{}, fmt.Errorf("delete profile %d: %w", id, err)
	}
	return singleProfile(res)
}

// AddFriend stores the edge profileID -> friendID. Adding an existing edge is a
// no-op.
func (r *GraphRepository) AddFriend(ctx context.Context, profileID, friendID domain.ProfileID) error {
	if profileID == friendID {
		return fmt.Errorf("%w: profile %d cannot befriend itself", ErrInvalidFriendship, profileID)
	}
	res, err := r.client.ExecuteWrite(ctx, addFriendCypher, map[string]any{
		"profileId": int64(profileID),
		"friendId":  int64(friendID),
	})
	if err != nil {
		return fmt.Errorf("add friend %d -> %d: %w", profileID, friendID, err)
	}
	if len(res.Records) == 0 || toInt64(res.Records[0]["linked"]) == 0 {
		return fmt.Errorf("%w: profiles %d and %d must both exist", ErrInvalidFriendship, profileID, friendID)
	}
	return nil
}

// RemoveFriend deletes the stored edges between two profiles in either
// orientation.
func (r *GraphRepository) RemoveFriend(ctx context.Context, profileID, friendID domain.ProfileID) error {
	res, err := r.client.ExecuteWrite(ctx, removeFriendCypher, map[string]any{
		"profileId": int64(profileID),
		"friendId":  int64(friendID),
	})
	if err != nil {
		return fmt.Errorf("remove friend %d -> %d: %w", profileID, friendID, err)
	}
	if len(res.Records) == 0 || toInt64(res.Records[0]["removed"]) == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

// Friends returns the neighbor profiles of id in traversal order.
func (r *GraphRepository) Friends(ctx context.Context, id domain.ProfileID) ([]domain.Profile, error) {
	query := outgoingFriendsCypher
	if r.direction == domain.DirectionBoth {
		query = bothFriendsCypher
	}
	res, err := r.client.ExecuteRead(ctx, query, map[string]any{"id": int64(id)})
	if err != nil {
		return nil, fmt.Errorf("friends of %d: %w", id, err)
	}
	return uniqueProfiles(profilesFromResult(res)), nil
}

// NeighborsOf returns the ids adjacent to id ordered by edge creation, outgoing
// edges first.
func (r *GraphRepository) NeighborsOf(ctx context.Context, id domain.ProfileID) ([]domain.ProfileID, error) {
	query := outgoingNeighborsCypher
	if r.direction == domain.DirectionBoth {
		query = bothNeighborsCypher
	}
	res, err := r.client.ExecuteRead(ctx, query, map[string]any{"id": int64(id)})
	if err != nil {
		return nil, fmt.Errorf("neighbors of %d: %w", id, err)
	}
	ids := make([]domain.ProfileID, 0, len(res.Records))
	for _, record := range res.Records {
		ids = append(ids, domain.ProfileID(toInt64(record["id"])))
	}
	return uniqueIDs(ids), nil
}

// Ping verifies the graph database is reachable.
func (r *GraphRepository) Ping(ctx context.Context) error {
	return r.client.VerifyConnectivity(ctx)
}

// Close releases the underlying driver.
func (r *GraphRepository) Close(ctx context.Context) error {
	return r.client.Close(ctx)
}

func singleProfile(res graph.Result) (domain.Profile, error) {
	profiles := profilesFromResult(res)
	if len(profiles) == 0 {
		return domain.Profile{}, ErrProfileNotFound
	}
	return profiles[0], nil
}

func profilesFromResult(res graph.Result) []domain.Profile {
	profiles := make([]domain.Profile, 0, len(res.Records))
	for _, record := range res.Records {
		m, ok := record["profile"].(map[string]any)
		if !ok {
			continue
		}
		profiles = append(profiles, profileFromMap(m))
	}
	return profiles
}

const profileConstraintCypher = `
CREATE CONSTRAINT profile_id IF NOT EXISTS
FOR (p:Profile) REQUIRE p.id IS UNIQUE
`

const createProfileCypher = `
MERGE (seq:Sequence {name: 'profile'})
SET seq.value = coalesce(seq.value, 0) + 1
WITH seq.value AS id
CREATE (p:Profile {id: id})
SET p += $props
RETURN p.id AS id
`

const getProfileCypher = `
MATCH (p:Profile {id: $id})
RETURN p{.*} AS profile
`

const listProfilesCypher = `
MATCH (p:Profile)
RETURN p{.*} AS profile
ORDER BY p.id
`

const updateProfileCypher = `
MATCH (p:Profile {id: $id})
SET p += $props
RETURN p{.*} AS profile
`

const deleteProfileCypher = `
MATCH (p:Profile {id: $id})
WITH p, p{.*} AS profile
DETACH DELETE p
RETURN profile
`

const addFriendCypher = `
MATCH (a:Profile {id: $profileId}), (b:Profile {id: $friendId})
MERGE (seq:Sequence {name: 'friend'})
SET seq.value = coalesce(seq.value, 0) + 1
WITH a, b, seq.value AS next
MERGE (a)-[r:FRIEND]->(b)
ON CREATE SET r.seq = next
RETURN count(r) AS linked
`

const removeFriendCypher = `
OPTIONAL MATCH (:Profile {id: $profileId})-[r:FRIEND]-(:Profile {id: $friendId})
DELETE r
RETURN count(r) AS removed
`

const outgoingNeighborsCypher = `
MATCH (:Profile {id: $id})-[r:FRIEND]->(f:Profile)
RETURN f.id AS id
ORDER BY r.seq
`

const bothNeighborsCypher = `
MATCH (p:Profile {id: $id})-[r:FRIEND]-(f:Profile)
RETURN f.id AS id, CASE WHEN startNode(r) = p THEN 0 ELSE 1 END AS side
ORDER BY side, r.seq
`

const outgoingFriendsCypher = `
MATCH (:Profile {id: $id})-[r:FRIEND]->(f:Profile)
RETURN f{.*} AS profile
ORDER BY r.seq
`

const bothFriendsCypher = `
MATCH (p:Profile {id: $id})-[r:FRIEND]-(f:Profile)
RETURN f{.*} AS profile, CASE WHEN startNode(r) = p THEN 0 ELSE 1 END AS side
ORDER BY side, r.seq
`
