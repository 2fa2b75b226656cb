package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/janhq/surprise-api/internal/config"
	domain "github.com/janhq/surprise-api/internal/domain/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/cache"
	"github.com/janhq/surprise-api/internal/infrastructure/database"
	"github.com/janhq/surprise-api/internal/infrastructure/qrcode"
	repo "github.com/janhq/surprise-api/internal/infrastructure/repository/surprise"
	"github.com/janhq/surprise-api/internal/infrastructure/storage"
)

// provideRepository opens the record store selected by SURPRISE_RECORD_BACKEND
// and fronts it with Redis when REDIS_ADDR is set, or with an in-process LRU
// when SURPRISE_MEMORY_CACHE_SIZE is positive. The returned cleanup closes
// every connection that was opened.
func provideRepository(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Repository, func(), error) {
	var (
		base    domain.Repository
		closers []func() error
	)

	switch cfg.RecordBackend {
	case config.RecordBackendPostgres:
		db, err := database.Connect(database.ConfigFrom(cfg))
		if err != nil {
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		if err := database.AutoMigrate(ctx, db, log); err != nil {
			_ = database.Close(db)
			return nil, nil, fmt.Errorf("migrate database: %w", err)
		}
		closers = append(closers, func() error { return database.Close(db) })
		base = repo.NewPostgresRepository(db)
	case config.RecordBackendBolt:
		boltRepo, err := repo.NewBoltRepository(repo.BoltConfig{Path: cfg.BoltPath})
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, boltRepo.Close)
		base = boltRepo
	case config.RecordBackendMemory:
		log.Warn().Msg("using in-memory record store; surprises are lost on restart")
		base = repo.NewMemoryRepository()
	default:
		return nil, nil, fmt.Errorf("unsupported record backend %q", cfg.RecordBackend)
	}

	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Error().Err(err).Msg("close record store")
			}
		}
	}

	if cfg.MemoryCacheEnabled() {
		lru, err := cache.NewMemoryCache(cfg.MemoryCacheSize)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("create memory cache: %w", err)
		}
		return repo.NewCachedRepository(base, lru, cfg.RedisCacheTTL, log), cleanup, nil
	}
	if !cfg.CacheEnabled() {
		return base, cleanup, nil
	}

	redisClient, err := cache.NewRedisClient(ctx, cfg, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	closers = append(closers, redisClient.Close)
	return repo.NewCachedRepository(base, redisClient, cfg.RedisCacheTTL, log), cleanup, nil
}

// provideStorage creates the blob storage backend based on configuration.
func provideStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (domain.Storage, error) {
	return storage.New(ctx, cfg, log)
}

func provideQRGenerator(cfg *config.Config) domain.CodeImageEncoder {
	return qrcode.NewGenerator(cfg)
}
