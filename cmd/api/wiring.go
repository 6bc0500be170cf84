package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/iamasit07/simpage/backend/internal/config"
	"github.com/iamasit07/simpage/backend/internal/repository"
	"github.com/iamasit07/simpage/backend/internal/repository/bolt"
	"github.com/iamasit07/simpage/backend/internal/repository/memory"
	"github.com/iamasit07/simpage/backend/internal/repository/redis"
	"github.com/iamasit07/simpage/backend/internal/service/cleanup"
)

func newLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// backend is an opened key-value store plus what the cleanup worker and
// shutdown need from it.
type backend struct {
	store   repository.Store
	sweeper cleanup.Sweeper
	close   func() error
}

func openBackend(ctx context.Context, cfg config.Storage, logger *slog.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.StoreRedis:
		client, err := redis.NewClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		store := redis.NewRedisStore(client)
		logger.Info("using redis store")
		return &backend{store: store, close: store.Close}, nil

	case config.StoreBolt:
		store, err := bolt.New(cfg.BoltPath, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		logger.Info("using bolt store", "path", cfg.BoltPath)
		return &backend{store: store, sweeper: store, close: store.Close}, nil

	case config.StoreMemory:
		logger.Warn("using in-memory store, sessions will not survive a restart")
		return &backend{store: memory.NewStore(nil), close: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Backend)
	}
}
