package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vanshika/profilegraph/internal/connection"
	"github.com/vanshika/profilegraph/internal/domain"
)

// ProfileRepository is the storage contract required by the profile service.
type ProfileRepository interface {
	Create(ctx context.Context, p domain.Profile) (domain.Profile, error)
	Get(ctx context.Context, id domain.ProfileID) (domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
	Update(ctx context.Context, p domain.Profile) (domain.Profile, error)
	Delete(ctx context.Context, id domain.ProfileID) (domain.Profile, error)
	AddFriend(ctx context.Context, profileID, friendID domain.ProfileID) error
	RemoveFriend(ctx context.Context, profileID, friendID domain.ProfileID) error
	Friends(ctx context.Context, id domain.ProfileID) ([]domain.Profile, error)
	NeighborsOf(ctx context.Context, id domain.ProfileID) ([]domain.ProfileID, error)
}

// ResolutionObserver receives the outcome of every shortest-connection search.
type ResolutionObserver interface {
	ObserveResolution(err error, elapsed time.Duration, size int)
}

// SourceDecorator wraps the neighbor source handed to the resolver.
type SourceDecorator func(connection.NeighborSource) connection.NeighborSource

// ErrInvalidProfileID is returned for ids that can never exist.
var ErrInvalidProfileID = errors.New("invalid profile id")

// ProfileService exposes profile management and connection lookups on top of
// a single repository.
type ProfileService struct {
	repo     ProfileRepository
	resolver *connection.Resolver
	timeout  time.Duration
	observer ResolutionObserver
	logger   *slog.Logger
	nowFn    func() time.Time
}

// Option customises a ProfileService.
type Option func(*options)

type options struct {
	timeout    time.Duration
	observer   ResolutionObserver
	logger     *slog.Logger
	decorators []SourceDecorator
}

// WithTimeout bounds every search. Zero leaves the caller's deadline alone.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithObserver reports search outcomes to obs.
func WithObserver(obs ResolutionObserver) Option {
	return func(o *options) { o.observer = obs }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithSourceDecorator wraps the repository before the resolver sees it.
func WithSourceDecorator(d SourceDecorator) Option {
	return func(o *options) { o.decorators = append(o.decorators, d) }
}

// NewProfileService constructs a ProfileService backed by repo.
func NewProfileService(repo ProfileRepository, opts ...Option) *ProfileService {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	var source connection.NeighborSource = repo
	for _, decorate := range o.decorators {
		source = decorate(source)
	}

	return &ProfileService{
		repo:     repo,
		resolver: connection.NewResolver(source),
		timeout:  o.timeout,
		observer: o.observer,
		logger:   o.logger.With("component", "profile_service"),
		nowFn:    time.Now,
	}
}

// CreateProfile stores a new profile; the repository assigns its id.
func (s *ProfileService) CreateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	p.ID = 0
	created, err := s.repo.Create(ctx, normalizeProfile(p))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("create profile: %w", err)
	}
	s.logger.Debug("profile created", "profileId", created.ID)
	return created, nil
}

// GetProfile returns a single profile.
func (s *ProfileService) GetProfile(ctx context.Context, id domain.ProfileID) (domain.Profile, error) {
	if id <= 0 {
		return domain.Profile{}, ErrInvalidProfileID
	}
	return s.repo.Get(ctx, id)
}

// ListProfiles returns every profile ordered by id.
func (s *ProfileService) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	return s.repo.List(ctx)
}

// UpdateProfile replaces all fields of an existing profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, p domain.Profile) (domain.Profile, error) {
	if p.ID <= 0 {
		return domain.Profile{}, ErrInvalidProfileID
	}
	return s.repo.Update(ctx, normalizeProfile(p))
}

// DeleteProfile removes a profile with its friendships and returns it.
func (s *ProfileService) DeleteProfile(ctx context.Context, id domain.ProfileID) (domain.Profile, error) {
	if id <= 0 {
		return domain.Profile{}, ErrInvalidProfileID
	}
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return domain.Profile{}, err
	}
	s.logger.Info("profile deleted", "profileId", id)
	return deleted, nil
}

// Friends lists the profiles adjacent to id under the configured direction.
func (s *ProfileService) Friends(ctx context.Context, id domain.ProfileID) ([]domain.Profile, error) {
	if id <= 0 {
		return nil, ErrInvalidProfileID
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Friends(ctx, id)
}

// AddFriend links profileID to friendID.
func (s *ProfileService) AddFriend(ctx context.Context, profileID, friendID domain.ProfileID) error {
	if profileID <= 0 || friendID <= 0 {
		return ErrInvalidProfileID
	}
	return s.repo.AddFriend(ctx, profileID, friendID)
}

// RemoveFriend drops the friendship between the two profiles.
func (s *ProfileService) RemoveFriend(ctx context.Context, profileID, friendID domain.ProfileID) error {
	if profileID <= 0 || friendID <= 0 {
		return ErrInvalidProfileID
	}
	return s.repo.RemoveFriend(ctx, profileID, friendID)
}

// ShortestConnection finds the shortest chain of friendships from source to
// target. The result keeps the resolver's encoding: [source] when both ids are
// equal, [target] for direct friends, otherwise only the intermediate ids.
func (s *ProfileService) ShortestConnection(ctx context.Context, source, target domain.ProfileID) (connection.Connection, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.nowFn()
	path, err := s.resolver.FindShortestConnection(ctx, source, target)
	elapsed := s.nowFn().Sub(start)

	if s.observer != nil {
		s.observer.ObserveResolution(err, elapsed, len(path))
	}

	switch {
	case err == nil:
		s.logger.Debug("connection resolved", "source", source, "target", target, "length", len(path), "elapsed", elapsed)
	case errors.Is(err, connection.ErrNoConnection):
		s.logger.Debug("no connection", "source", source, "target", target, "elapsed", elapsed)
	default:
		s.logger.Warn("connection lookup failed", "source", source, "target", target, "error", err)
	}
	return path, err
}
