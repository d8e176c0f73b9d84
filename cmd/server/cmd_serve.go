package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"supermarket/backend/internal/config"
	domain "supermarket/backend/internal/domain/product"
	"supermarket/backend/internal/httpserver"
	"supermarket/backend/internal/infrastructure/memory"
	"supermarket/backend/internal/infrastructure/postgres"
	"supermarket/backend/internal/logging"
	"supermarket/backend/internal/telemetry"
	productusecase "supermarket/backend/internal/usecase/product"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (default command)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := boot()
	if err != nil {
		return err
	}
	log := logging.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(registry)

	productService := productusecase.NewService(repo, metrics)
	if _, err := productService.List(ctx); err != nil {
		logging.Warn(ctx).Err(err).Msg("could not seed product gauge")
	}
	server := httpserver.NewServer(cfg, productService, metrics)

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr()).Str("store", cfg.StoreDriver).Msg("HTTP server listening")
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		return err
	}
	log.Info().Msg("graceful shutdown completed")
	return nil
}

// boot loads configuration and initialises logging.
func boot() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := logging.Init(cfg.LogLevel, cfg.Development()); err != nil {
		return config.Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return cfg, nil
}

func openRepository(ctx context.Context, cfg config.Config) (domain.Repository, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		logging.Warn(ctx).Msg("using in-memory store; data is lost on restart")
		return memory.NewProductRepository(), func() {}, nil
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	return postgres.NewProductRepository(db.Pool), db.Close, nil
}
