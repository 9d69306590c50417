package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/profilegraph/internal/domain"
)

func TestGenerate_Deterministic(t *testing.T) {
	cfg := Config{NumProfiles: 25, FriendsPerProfile: 4, AvailableChance: 0.5, Seed: 7}

	first, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	second, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerate_Shape(t *testing.T) {
	cfg := Config{NumProfiles: 30, FriendsPerProfile: 5, Seed: 11}
	ds, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)

	require.Len(t, ds.Profiles, 30)
	for i, p := range ds.Profiles {
		assert.Equal(t, domain.ProfileID(i+1), p.ID)
		assert.NotEmpty(t, p.FirstName)
		assert.NotEmpty(t, p.LastName)
		assert.Len(t, p.Zipcode, 5)
	}

	perProfile := map[domain.ProfileID]map[domain.ProfileID]bool{}
	for _, f := range ds.Friendships {
		assert.NotEqual(t, f.ProfileID, f.FriendID, "no self edges")
		assert.True(t, f.FriendID >= 1 && f.FriendID <= 30)
		if perProfile[f.ProfileID] == nil {
			perProfile[f.ProfileID] = map[domain.ProfileID]bool{}
		}
		assert.False(t, perProfile[f.ProfileID][f.FriendID], "friends sampled without replacement")
		perProfile[f.ProfileID][f.FriendID] = true
	}
	for _, friends := range perProfile {
		assert.LessOrEqual(t, len(friends), 5)
		assert.GreaterOrEqual(t, len(friends), 4)
	}
}

func TestNew_ClampsFriendsToPopulation(t *testing.T) {
	ds, err := New(Config{NumProfiles: 3, FriendsPerProfile: 10, Seed: 1}).Generate(context.Background())
	require.NoError(t, err)
	// every profile samples all three ids and drops itself
	assert.Len(t, ds.Friendships, 6)
}

func TestGenerate_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultConfig()).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWriteReadDataset(t *testing.T) {
	dir := t.TempDir()
	ds, err := New(Config{NumProfiles: 8, FriendsPerProfile: 2, Seed: 3}).Generate(context.Background())
	require.NoError(t, err)

	require.NoError(t, WriteDataset(ds, dir))
	loaded, err := ReadDataset(dir)
	require.NoError(t, err)
	assert.Equal(t, ds, loaded)
}

func TestReadDataset_MissingProfiles(t *testing.T) {
	_, err := ReadDataset(t.TempDir())
	assert.ErrorIs(t, err, ErrMissingDataset)
}
