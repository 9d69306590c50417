package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/profilegraph/internal/domain"
	"github.com/vanshika/profilegraph/internal/logging"
	"github.com/vanshika/profilegraph/internal/repository"
)

type flakyWriter struct {
	*repository.MemoryRepository
	mu         sync.Mutex
	rejectName string
}

func (f *flakyWriter) Create(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	f.mu.Lock()
	reject := p.FirstName == f.rejectName
	f.mu.Unlock()
	if reject {
		return domain.Profile{}, errors.New("constraint violation")
	}
	return f.MemoryRepository.Create(ctx, p)
}

func dataset() domain.Dataset {
	return domain.Dataset{
		Profiles: []domain.Profile{
			{ID: 10, FirstName: "a"},
			{ID: 20, FirstName: "b"},
			{ID: 30, FirstName: "c"},
		},
		Friendships: []domain.Friendship{
			{ProfileID: 10, FriendID: 20},
			{ProfileID: 20, FriendID: 30},
		},
	}
}

func TestBulkIngestor_Ingest(t *testing.T) {
	repo := repository.NewMemory(domain.DirectionOutgoing)
	ingestor := NewBulkIngestor(repo, 2, logging.Discard())

	report, err := ingestor.Ingest(context.Background(), dataset())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Profiles)
	assert.Equal(t, 2, report.Friendships)
	require.Len(t, report.IDs, 3)

	ctx := context.Background()
	neighbors, err := repo.NeighborsOf(ctx, report.IDs[10])
	require.NoError(t, err)
	assert.Equal(t, []domain.ProfileID{report.IDs[20]}, neighbors)

	stored, err := repo.Get(ctx, report.IDs[30])
	require.NoError(t, err)
	assert.Equal(t, "c", stored.FirstName)
}

func TestBulkIngestor_PreservesDatasetOrder(t *testing.T) {
	const n = 20
	ds := domain.Dataset{}
	for i := 1; i <= n; i++ {
		ds.Profiles = append(ds.Profiles, domain.Profile{ID: domain.ProfileID(i), FirstName: fmt.Sprintf("p%d", i)})
	}
	for i := 2; i <= n; i++ {
		ds.Friendships = append(ds.Friendships, domain.Friendship{ProfileID: 1, FriendID: domain.ProfileID(i)})
	}
	for i := n; i >= 3; i-- {
		ds.Friendships = append(ds.Friendships, domain.Friendship{ProfileID: 2, FriendID: domain.ProfileID(i)})
	}

	repo := repository.NewMemory(domain.DirectionOutgoing)
	report, err := NewBulkIngestor(repo, 4, logging.Discard()).Ingest(context.Background(), ds)
	require.NoError(t, err)

	for i := 1; i <= n; i++ {
		assert.Equal(t, domain.ProfileID(i), report.IDs[domain.ProfileID(i)], "dataset id %d", i)
	}

	ctx := context.Background()
	for _, source := range []domain.ProfileID{1, 2} {
		var want []domain.ProfileID
		for _, f := range ds.Friendships {
			if f.ProfileID == source {
				want = append(want, report.IDs[f.FriendID])
			}
		}
		got, err := repo.NeighborsOf(ctx, report.IDs[source])
		require.NoError(t, err)
		assert.Equal(t, want, got, "neighbors of %d", source)
	}
}

func TestGroupBySource(t *testing.T) {
	groups := groupBySource([]domain.Friendship{
		{ProfileID: 2, FriendID: 3},
		{ProfileID: 1, FriendID: 4},
		{ProfileID: 2, FriendID: 1},
	})
	assert.Equal(t, [][]domain.Friendship{
		{{ProfileID: 2, FriendID: 3}, {ProfileID: 2, FriendID: 1}},
		{{ProfileID: 1, FriendID: 4}},
	}, groups)
	assert.Empty(t, groupBySource(nil))
}

func TestBulkIngestor_CollectsItemFailures(t *testing.T) {
	writer := &flakyWriter{MemoryRepository: repository.NewMemory(domain.DirectionOutgoing), rejectName: "b"}
	ingestor := NewBulkIngestor(writer, 3, logging.Discard())

	report, err := ingestor.Ingest(context.Background(), dataset())
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	// one rejected profile plus the two friendships touching it
	assert.Len(t, taskErr.Errors, 3)
	assert.Equal(t, 2, report.Profiles)
	assert.Equal(t, 0, report.Friendships)
}

func TestBulkIngestor_InvalidFriendshipIsReported(t *testing.T) {
	ds := dataset()
	ds.Friendships = append(ds.Friendships, domain.Friendship{ProfileID: 10, FriendID: 10})

	ingestor := NewBulkIngestor(repository.NewMemory(domain.DirectionOutgoing), 0, nil)
	report, err := ingestor.Ingest(context.Background(), ds)

	assert.ErrorIs(t, err, repository.ErrInvalidFriendship)
	assert.Equal(t, 2, report.Friendships)
}

func TestBulkIngestor_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ingestor := NewBulkIngestor(repository.NewMemory(domain.DirectionOutgoing), 2, logging.Discard())
	_, err := ingestor.Ingest(ctx, dataset())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBulkIngestor_EmptyDataset(t *testing.T) {
	ingestor := NewBulkIngestor(repository.NewMemory(domain.DirectionOutgoing), 2, logging.Discard())
	report, err := ingestor.Ingest(context.Background(), domain.Dataset{})
	require.NoError(t, err)
	assert.Zero(t, report.Profiles)
}

func TestTaskError_Message(t *testing.T) {
	single := &TaskError{Errors: []error{errors.New("x")}}
	assert.Equal(t, "x", single.Error())

	multi := &TaskError{Errors: []error{errors.New("x"), errors.New("y")}}
	assert.Equal(t, "multiple errors: x; y;", multi.Error())
}
