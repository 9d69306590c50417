package repository

import (
	"context"
	"fmt"

	"github.com/vanshika/profilegraph/internal/config"
	"github.com/vanshika/profilegraph/internal/domain"
	"github.com/vanshika/profilegraph/internal/graph"
)

// Store is the full method set shared by every repository implementation.
type Store interface {
	Migrate(ctx context.Context) error
	Create(ctx context.Context, p domain.Profile) (domain.Profile, error)
	Get(ctx context.Context, id domain.ProfileID) (domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	Update(ctx context.Context, p domain.Profile) (domain.Profile, error)
	Delete(ctx context.Context, id domain.ProfileID) (domain.Profile, error)
	AddFriend(ctx context.Context, profileID, friendID domain.ProfileID) error
	RemoveFriend(ctx context.Context, profileID, friendID domain.ProfileID) error
	Friends(ctx context.Context, id domain.ProfileID) ([]domain.Profile, error)
	NeighborsOf(ctx context.Context, id domain.ProfileID) ([]domain.ProfileID, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

var (
	_ Store = (*MemoryRepository)(nil)
	_ Store = (*SQLRepository)(nil)
	_ Store = (*GraphRepository)(nil)
)

// Open builds the repository selected by cfg.Store.Backend and runs Migrate
// when cfg.Store.AutoMigrate is set.
func Open(ctx context.Context, cfg config.Config) (Store, error) {
	direction := cfg.Connections.Direction

	var (
		store Store
		err   error
	)
	switch cfg.Store.Backend {
	case config.BackendMemory:
		store = NewMemory(direction)
	case config.BackendSQLite, config.BackendPostgres:
		opts := SQLOptions{
			Dialect:         DialectPostgres,
			DSN:             cfg.Store.DSN,
			MaxOpenConns:    cfg.Store.MaxOpenConns,
			MaxIdleConns:    cfg.Store.MaxIdleConns,
			ConnMaxLifetime: cfg.Store.ConnMaxLifetime,
			Direction:       direction,
		}
		if cfg.Store.Backend == config.BackendSQLite {
			opts.Dialect = DialectSQLite
			// SQLite serialises writers; a single connection also keeps
			// :memory: databases alive across calls.
			if opts.MaxOpenConns <= 0 {
				opts.MaxOpenConns = 1
			}
		}
		store, err = OpenSQL(ctx, opts)
	case config.BackendNeo4j:
		var client graph.Client
		client, err = graph.NewNeo4jClient(ctx, graph.Options{
			URI:            cfg.Graph.URI,
			Database:       cfg.Graph.Database,
			Username:       cfg.Graph.Username,
			Password:       cfg.Graph.Password,
			MaxConnections: cfg.Graph.MaxConnections,
			AcquireTimeout: cfg.Graph.AcquireTimeout,
		})
		if err == nil {
			store = NewGraph(client, direction)
		}
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Store.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("migrate %s store: %w", cfg.Store.Backend, err)
		}
	}
	return store, nil
}
