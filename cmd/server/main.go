package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-pos/internal/config"
	"github.com/diewo77/go-pos/internal/db"
	"github.com/diewo77/go-pos/internal/logging"
	"github.com/diewo77/go-pos/internal/policy"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

const shutdownTimeout = 10 * time.Second

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Auth.EphemeralSecret {
		logger.Warn().Msg("AUTH_SECRET not set, using a random key; sessions end when the process restarts")
	}
	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := dbConn.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := db.Migrate(dbConn, cfg.Database, cfg.App.Migrations); err != nil {
		return err
	}
	logger.Info().Bool("sql", cfg.App.Migrations).Msg("migrations completed")
	if *migrateOnlyFlag {
		return nil
	}

	seedOpts := db.SeedOptions{
		AdminEmail:    cfg.App.SeedEmail,
		AdminPassword: cfg.App.SeedPassword,
		AdminName:     cfg.App.SeedAdminName,
	}
	if cfg.App.Seed || *seedOnlyFlag {
		if err := db.Seed(ctx, dbConn, seedOpts); err != nil {
			return err
		}
		logger.Info().Msg("seeding completed")
	}
	if *seedOnlyFlag {
		return nil
	}

	app := NewApp(policy.NewRouterConfig(dbConn, cfg.Auth), logger)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("port", cfg.Server.Port).Bool("dev", cfg.App.Dev).Str("driver", cfg.Database.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped gracefully")
	return nil
}
