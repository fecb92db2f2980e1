// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api serves the Comicpass HTTP API.
//
// # Startup
//
//  1. JSON logger, switched to debug by DEBUG=true.
//  2. Environment config.
//  3. Postgres pool and Redis client.
//  4. Migrations.
//  5. Token verifier and domain wiring (see wire.go).
//  6. HTTP server until SIGINT/SIGTERM, then graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/comicpass/internal/api"
	"github.com/taibuivan/comicpass/internal/platform/config"
	"github.com/taibuivan/comicpass/internal/platform/constants"
	"github.com/taibuivan/comicpass/internal/platform/migration"
	pgstore "github.com/taibuivan/comicpass/internal/platform/postgres"
	redisstore "github.com/taibuivan/comicpass/internal/platform/redis"
	"github.com/taibuivan/comicpass/internal/platform/sec"
)

const (
	appName = "comicpass"

	// startupTimeout bounds connecting and migrating, so a wrong DSN fails
	// the rollout instead of hanging it.
	startupTimeout = 30 * time.Second
)

func main() {
	level := new(slog.LevelVar)
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).
		With(slog.String("app", appName))
	slog.SetDefault(log)

	if err := run(log, level); err != nil {
		log.Error("service_failed", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("service_stopped")
}

func run(log *slog.Logger, level *slog.LevelVar) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.Debug {
		level.Set(slog.LevelDebug)
	}
	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.Int64("chapter_price", cfg.ChapterPrice),
	)

	// Cancelled on SIGINT/SIGTERM; also stops the rate limiter's eviction loop.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startupCtx, cancelStartup := context.WithTimeout(ctx, startupTimeout)
	defer cancelStartup()

	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, pgstore.PoolOptions{
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		ApplicationName: appName,
	}, log)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn("redis_close_failed", slog.Any("error", err))
		}
	}()

	if err := migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log); err != nil {
		return err
	}

	// Tokens are minted by the identity service; this process only verifies them.
	verifier, err := sec.NewTokenVerifier(cfg.JWTPubKeyPath, constants.AuthIssuer)
	if err != nil {
		return fmt.Errorf("load token verification key: %w", err)
	}

	handlers := wire(cfg, pool, rdb, log)
	server := api.NewServer(ctx, cfg, log, verifier, handlers)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutdown_signal_received", slog.Duration("timeout", constants.ShutdownTimeout))
	}

	// In-flight purchases run on detached contexts and finish on their own;
	// Shutdown only waits for their responses to be written.
	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
