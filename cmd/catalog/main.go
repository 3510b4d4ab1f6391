// Package main runs the store catalog HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "net/http/pprof"

	"github.com/abgdnv/storecatalog/internal/app"
	"github.com/abgdnv/storecatalog/internal/config"
	"github.com/abgdnv/storecatalog/internal/store"
	"github.com/abgdnv/storecatalog/pkg/bootstrap"
	pkgconfig "github.com/abgdnv/storecatalog/pkg/config"
	"github.com/abgdnv/storecatalog/pkg/config/configloader"
	"github.com/abgdnv/storecatalog/pkg/messaging"
	natsclient "github.com/abgdnv/storecatalog/pkg/nats"
	"golang.org/x/sync/errgroup"
)

const serviceName = "catalog"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("application run failed: %v", err)
		os.Exit(1)
	}
	log.Println("application stopped gracefully")
}

// run loads the configuration, prepares storage and messaging, seeds data and
// serves HTTP (and pprof when enabled) until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, cfgErr := configloader.Load[*config.Config](serviceName)
	if cfgErr != nil {
		return fmt.Errorf("failed to load configuration: %w", cfgErr)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	stores, closeStores, err := setupStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	publisher, closePublisher, err := setupPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	deps := app.SetupDependencies(stores, publisher, cfg.Auth.HashCost, logger)
	if err = app.Seed(ctx, deps, cfg); err != nil {
		return fmt.Errorf("failed to seed data: %w", err)
	}

	httpServer := app.SetupHttpServer(deps, cfg)
	pprofServer := &http.Server{Addr: cfg.PProf.Addr}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the HTTP server
	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	// gracefully shutdown HTTP server on context cancellation
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if cfg.PProf.Enabled {
		g.Go(func() error {
			logger.Info("Pprof server listening", slog.String("addr", pprofServer.Addr))
			if err := pprofServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("pprof server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down pprof server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Shutdown.Timeout)
			defer cancel()
			return pprofServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("errgroup encountered an error: %w", err)
	}
	return nil
}

// setupStores picks the persistence backend. The postgres driver migrates the
// schema first when database.migrate is set.
func setupStores(ctx context.Context, cfg *config.Config, logger *slog.Logger) (app.Stores, func(), error) {
	if cfg.Database.Driver == pkgconfig.DriverMemory {
		logger.Warn("Using in-memory stores, data is lost on exit")
		return app.MemoryStores(), func() {}, nil
	}

	if cfg.Database.Migrate {
		version, err := store.Migrate(cfg.Database.URL)
		if err != nil {
			return app.Stores{}, nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("Database schema is up to date", "version", version)
	}

	dbPool, err := bootstrap.NewDbPool(ctx, cfg.Database.URL, cfg.Database.Timeout)
	if err != nil {
		return app.Stores{}, nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}
	logger.Info("Successfully connected to the database!")
	return app.PgStores(dbPool), dbPool.Close, nil
}

// setupPublisher connects to NATS JetStream when enabled and falls back to a
// publisher that drops events.
func setupPublisher(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Publisher, func(), error) {
	if !cfg.NATS.Enabled {
		return messaging.NoopPublisher{}, func() {}, nil
	}

	nc, err := natsclient.NewClient(cfg.NATS.Url, cfg.NATS.Timeout)
	if err != nil {
		return nil, nil, err
	}
	js, err := natsclient.NewJetStreamContext(nc)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	streamCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
	defer cancel()
	if err = natsclient.EnsureProductStream(streamCtx, js, cfg.NATS.Stream); err != nil {
		nc.Close()
		return nil, nil, err
	}
	logger.Info("Publishing catalog events to NATS", "url", cfg.NATS.Url, "stream", cfg.NATS.Stream)

	drain := func() {
		if err := nc.Drain(); err != nil {
			logger.Warn("Failed to drain NATS connection", "error", err)
		}
	}
	return natsclient.NewNatsPublisher(js), drain, nil
}
