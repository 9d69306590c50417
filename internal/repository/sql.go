package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/vanshika/profilegraph/internal/domain"
)

// Dialect names a supported SQL backend. The value doubles as the
// database/sql driver name.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// SQLOptions configures OpenSQL.
type SQLOptions struct {
	Dialect         Dialect
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Direction       domain.Direction
}

// SQLRepository stores profiles in a `profiles` table and friendships in a
// `friends(profile_id, friend_id)` table. Statements use $n placeholders in
// ascending textual order, which both drivers accept.
type SQLRepository struct {
	db        *sql.DB
	dialect   Dialect
	direction domain.Direction
}

// OpenSQL opens and pings a database, then wraps it in an SQLRepository.
func OpenSQL(ctx context.Context, opts SQLOptions) (*SQLRepository, error) {
	if opts.DSN == "" {
		return nil, errors.New("database DSN is required")
	}
	if opts.Dialect != DialectSQLite && opts.Dialect != DialectPostgres {
		return nil, fmt.Errorf("unsupported sql dialect %q", opts.Dialect)
	}

	db, err := sql.Open(string(opts.Dialect), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Dialect, err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Dialect, err)
	}
	return NewSQL(db, opts.Dialect, opts.Direction), nil
}

// NewSQL wraps an existing database handle.
func NewSQL(db *sql.DB, dialect Dialect, direction domain.Direction) *SQLRepository {
	if direction == "" {
		direction = domain.DirectionOutgoing
	}
	return &SQLRepository{db: db, dialect: dialect, direction: direction}
}

// Migrate creates the tables when they do not exist yet.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	statements := sqliteSchema
	if r.dialect == DialectPostgres {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}
	return nil
}

// Create inserts a profile and returns it with its assigned id.
func (r *SQLRepository) Create(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, insertProfileSQL,
		p.Img, p.FirstName, p.LastName, p.Phone, p.Address, p.City, p.State, p.Zipcode, p.Available,
	).Scan(&id)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	p.ID = domain.ProfileID(id)
	return p, nil
}

// Get returns a single profile.
func (r *SQLRepository) Get(ctx context.Context, id domain.ProfileID) (domain.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, selectProfileSQL, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("get profile %d: %w", id, err)
	}
	return p, nil
}

// List returns all profiles ordered by id.
func (r *SQLRepository) List(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx, listProfilesSQL)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	profiles, err := scanProfiles(rows)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// Update overwrites the stored fields of an existing profile.
func (r *SQLRepository) Update(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	res, err := r.db.ExecContext(ctx, updateProfileSQL,
		p.Img, p.FirstName, p.LastName, p.Phone, p.Address, p.City, p.State, p.Zipcode, p.Available, int64(p.ID),
	)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("update profile %d: %w", p.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Profile{}, fmt.Errorf("update profile %d: %w", p.ID, err)
	}
	if affected == 0 {
		return domain.Profile{}, ErrProfileNotFound
	}
	return p, nil
}

// Delete removes a profile and every friendship touching it, returning the
// removed profile.
func (r *SQLRepository) Delete(ctx context.Context, id domain.ProfileID) (domain.Profile, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("delete profile %d: begin: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	p, err := scanProfile(tx.QueryRowContext(ctx, selectProfileSQL, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return domain.Profile{}, fmt.Errorf("delete profile %d: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, deleteProfileFriendsSQL, int64(id)); err != nil {
		return domain.Profile{}, fmt.Errorf("delete profile %d friendships: %w", id, err)
	}
	if _, err := tx.ExecContext(ctx, deleteProfileSQL, int64(id)); err != nil {
		return domain.Profile{}, fmt.Errorf("delete profile %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Profile{}, fmt.Errorf("delete profile %d: commit: %w", id, err)
	}
	return p, nil
}

// AddFriend stores the edge profileID -> friendID. Adding an existing edge is a
// no-op.
func (r *SQLRepository) AddFriend(ctx context.Context, profileID, friendID domain.ProfileID) error {
	if profileID == friendID {
		return fmt.Errorf("%w: profile %d cannot befriend itself", ErrInvalidFriendship, profileID)
	}

	var found int
	if err := r.db.QueryRowContext(ctx, countProfilesSQL, int64(profileID), int64(friendID)).Scan(&found); err != nil {
		return fmt.Errorf("add friend %d -> %d: %w", profileID, friendID, err)
	}
	if found != 2 {
		return fmt.Errorf("%w: profiles %d and %d must both exist", ErrInvalidFriendship, profileID, friendID)
	}

	if _, err := r.db.ExecContext(ctx, insertFriendSQL, int64(profileID), int64(friendID)); err != nil {
		return fmt.Errorf("add friend %d -> %d: %w", profileID, friendID, err)
	}
	return nil
}

// RemoveFriend deletes the stored edges between two profiles in either
// orientation.
func (r *SQLRepository) RemoveFriend(ctx context.Context, profileID, friendID domain.ProfileID) error {
	res, err := r.db.ExecContext(ctx, deleteFriendSQL, int64(profileID), int64(friendID))
	if err != nil {
		return fmt.Errorf("remove friend %d -> %d: %w", profileID, friendID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove friend %d -> %d: %w", profileID, friendID, err)
	}
	if affected == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

// Friends returns the neighbor profiles of id in traversal order.
func (r *SQLRepository) Friends(ctx context.Context, id domain.ProfileID) ([]domain.Profile, error) {
	query := outgoingFriendsSQL
	if r.direction == domain.DirectionBoth {
		query = bothFriendsSQL
	}
	rows, err := r.db.QueryContext(ctx, query, int64(id))
	if err != nil {
		return nil, fmt.Errorf("friends of %d: %w", id, err)
	}
	profiles, err := scanProfiles(rows)
	if err != nil {
		return nil, fmt.Errorf("friends of %d: %w", id, err)
	}
	return uniqueProfiles(profiles), nil
}

// NeighborsOf returns the ids adjacent to id ordered by edge insertion,
// outgoing edges first. Edges pointing at deleted profiles are skipped.
func (r *SQLRepository) NeighborsOf(ctx context.Context, id domain.ProfileID) ([]domain.ProfileID, error) {
	query := outgoingNeighborsSQL
	if r.direction == domain.DirectionBoth {
		query = bothNeighborsSQL
	}
	rows, err := r.db.QueryContext(ctx, query, int64(id))
	if err != nil {
		return nil, fmt.Errorf("neighbors of %d: %w", id, err)
	}
	defer rows.Close()

	var ids []domain.ProfileID
	for rows.Next() {
		var n int64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("neighbors of %d: %w", id, err)
		}
		ids = append(ids, domain.ProfileID(n))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("neighbors of %d: %w", id, err)
	}
	return uniqueIDs(ids), nil
}

// Ping verifies the database is reachable.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close releases the connection pool.
func (r *SQLRepository) Close(context.Context) error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (domain.Profile, error) {
	var (
		p  domain.Profile
		id int64
	)
	err := row.Scan(&id, &p.Img, &p.FirstName, &p.LastName, &p.Phone, &p.Address, &p.City, &p.State, &p.Zipcode, &p.Available)
	if err != nil {
		return domain.Profile{}, err
	}
	p.ID = domain.ProfileID(id)
	return p, nil
}

func scanProfiles(rows *sql.Rows) ([]domain.Profile, error) {
	defer rows.Close()
	profiles := []domain.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
