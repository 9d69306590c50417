package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vanshika/profilegraph/internal/domain"
)

// TaskError accumulates multiple errors produced during bulk ingestion.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	b.WriteString("multiple errors:")
	for _, err := range e.Errors {
		b.WriteString(" ")
		b.WriteString(err.Error())
		b.WriteString(";")
	}
	return b.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

// IngestWriter is the subset of the repository used for bulk loads.
type IngestWriter interface {
	Create(ctx context.Context, p domain.Profile) (domain.Profile, error)
	AddFriend(ctx context.Context, profileID, friendID domain.ProfileID) error
}

// IngestReport summarises one ingestion run.
type IngestReport struct {
	Profiles    int
	Friendships int
	// IDs maps dataset profile ids to the ids assigned by the store.
	IDs map[domain.ProfileID]domain.ProfileID
}

// BulkIngestor loads generated datasets into a store using a bounded pool.
type BulkIngestor struct {
	writer  IngestWriter
	workers int
	logger  *slog.Logger
}

// NewBulkIngestor creates a new BulkIngestor with the provided concurrency.
func NewBulkIngestor(writer IngestWriter, workers int, logger *slog.Logger) *BulkIngestor {
	if workers <= 0 {
		workers = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BulkIngestor{
		writer:  writer,
		workers: workers,
		logger:  logger.With("component", "ingestor"),
	}
}

// Ingest writes every profile in dataset order, then every friendship with
// its endpoints translated to store ids. Friendships are grouped by source
// profile; groups load concurrently while each group keeps dataset order, so
// a profile's outgoing neighbors come back in the order they were generated.
// Per-item failures are collected into a *TaskError; cancellation stops the
// run and is returned as is.
func (bi *BulkIngestor) Ingest(ctx context.Context, ds domain.Dataset) (IngestReport, error) {
	report := IngestReport{IDs: make(map[domain.ProfileID]domain.ProfileID, len(ds.Profiles))}
	var (
		mu      sync.Mutex
		taskErr TaskError
	)
	record := func(err error) {
		mu.Lock()
		taskErr.Errors = append(taskErr.Errors, err)
		mu.Unlock()
	}

	// Stores assign ids on insert, so profiles go in one at a time.
	for _, in := range ds.Profiles {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		created, err := bi.writer.Create(ctx, in)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			record(fmt.Errorf("profile %s: %w", in.ID, err))
			continue
		}
		report.IDs[in.ID] = created.ID
		report.Profiles++
	}
	bi.logger.Info("profiles ingested", "count", report.Profiles, "failed", len(taskErr.Errors))

	groups := groupBySource(ds.Friendships)
	err := bi.run(ctx, len(groups), func(ctx context.Context, idx int) error {
		for _, f := range groups[idx] {
			from, okFrom := report.IDs[f.ProfileID]
			to, okTo := report.IDs[f.FriendID]
			if !okFrom || !okTo {
				record(fmt.Errorf("friendship %s->%s: endpoint was not ingested", f.ProfileID, f.FriendID))
				continue
			}
			if err := bi.writer.AddFriend(ctx, from, to); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				record(fmt.Errorf("friendship %s->%s: %w", f.ProfileID, f.FriendID, err))
				continue
			}
			mu.Lock()
			report.Friendships++
			mu.Unlock()
		}
		return nil
	})
	if err != nil {
		return report, err
	}
	bi.logger.Info("friendships ingested", "count", report.Friendships, "failed", len(taskErr.Errors))

	if len(taskErr.Errors) > 0 {
		return report, &taskErr
	}
	return report, nil
}

// groupBySource splits friendships by source profile, ordering groups by the
// first appearance of their source and keeping dataset order within each.
func groupBySource(friendships []domain.Friendship) [][]domain.Friendship {
	index := make(map[domain.ProfileID]int)
	var groups [][]domain.Friendship
	for _, f := range friendships {
		i, ok := index[f.ProfileID]
		if !ok {
			i = len(groups)
			index[f.ProfileID] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], f)
	}
	return groups
}

func (bi *BulkIngestor) run(ctx context.Context, total int, workerFn func(ctx context.Context, idx int) error) error {
	if total == 0 {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bi.workers)

	for i := 0; i < total; i++ {
		if gctx.Err() != nil {
			break
		}
		idx := i
		g.Go(func() error {
			return workerFn(gctx, idx)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// Cancellation may land between the last g.Go and Wait.
	return ctx.Err()
}
