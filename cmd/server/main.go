package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vanshika/profilegraph/internal/config"
	"github.com/vanshika/profilegraph/internal/logging"
	"github.com/vanshika/profilegraph/internal/metrics"
	"github.com/vanshika/profilegraph/internal/repository"
	"github.com/vanshika/profilegraph/internal/server"
	"github.com/vanshika/profilegraph/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("closing profile store failed", "error", err)
		}
	}()
	logger.Info("profile store ready",
		"backend", cfg.Store.Backend,
		"direction", cfg.Connections.Direction,
		"migrated", cfg.Store.AutoMigrate,
	)

	opts := []service.Option{
		service.WithTimeout(cfg.Connections.Timeout),
		service.WithLogger(logger),
	}
	deps := server.RouterDependencies{
		Health:           server.StoreHealthService{Store: store},
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
	}
	if cfg.HTTP.MetricsEnabled {
		registry := metrics.NewRegistry()
		m := metrics.NewMetrics(registry)
		opts = append(opts,
			service.WithObserver(m),
			service.WithSourceDecorator(m.InstrumentSource),
		)
		deps.Metrics = m
		deps.MetricsHandler = metrics.Handler(registry)
	}

	profileService := service.NewProfileService(store, opts...)
	deps.API = server.NewAPIHandlers(logger, profileService)

	srv := server.New(logger, cfg.HTTP, server.NewRouter(logger, deps))
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
