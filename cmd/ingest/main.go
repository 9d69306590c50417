package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vanshika/profilegraph/internal/config"
	"github.com/vanshika/profilegraph/internal/generator"
	"github.com/vanshika/profilegraph/internal/logging"
	"github.com/vanshika/profilegraph/internal/repository"
	"github.com/vanshika/profilegraph/internal/service"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:])
	cancel()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	var (
		datasetDir = fs.String("dataset-dir", "./data", "Directory containing profiles.json and friendships.json")
		workers    = fs.Int("workers", 4, "Number of concurrent workers for ingestion")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.Logging).With("component", "ingest")

	dataset, err := generator.ReadDataset(*datasetDir)
	if err != nil {
		return fmt.Errorf("load dataset from %s: %w", *datasetDir, err)
	}
	if len(dataset.Profiles) == 0 {
		return fmt.Errorf("profiles dataset in %s is empty", *datasetDir)
	}

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("closing profile store failed", "error", err)
		}
	}()

	ingestor := service.NewBulkIngestor(store, *workers, logger)

	start := time.Now()
	logger.Info("ingesting dataset",
		"profiles", len(dataset.Profiles),
		"friendships", len(dataset.Friendships),
		"workers", *workers,
		"backend", cfg.Store.Backend,
	)
	report, err := ingestor.Ingest(ctx, dataset)
	if err != nil {
		var taskErr *service.TaskError
		if !errors.As(err, &taskErr) {
			return fmt.Errorf("ingestion aborted: %w", err)
		}
		logger.Warn("ingestion finished with item failures", "failed", len(taskErr.Errors), "error", err)
	}

	logger.Info("ingestion complete",
		"duration", time.Since(start).String(),
		"profiles", report.Profiles,
		"friendships", report.Friendships,
	)
	return nil
}
