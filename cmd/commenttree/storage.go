package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/levelupgamer/commenttree/internal/comment/storage"
	"github.com/levelupgamer/commenttree/internal/comment/storage/cached"
	"github.com/levelupgamer/commenttree/internal/comment/storage/inmemory"
	"github.com/levelupgamer/commenttree/internal/comment/storage/postgres"
	"github.com/levelupgamer/commenttree/internal/comment/storage/redisrepo"
	"github.com/levelupgamer/commenttree/internal/config"
)

type backend struct {
	kv      storage.KV
	redis   *redis.Client
	closers []func() error
}

func openStorage(ctx context.Context, cfg config.Config, log zerolog.Logger) (*backend, error) {
	b := &backend{}

	switch cfg.StorageDriver {
	case config.DriverRedis:
		st, err := redisrepo.New(ctx, cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, err
		}
		b.kv = st
		b.redis = st.Client()
		b.closers = append(b.closers, st.Close)

	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		repo := postgres.New(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		b.kv = repo
		b.closers = append(b.closers, db.Close)

	default:
		log.Warn().Msg("using in-memory storage, comments are lost on restart")
		b.kv = inmemory.New()
	}

	if cfg.CacheSize > 0 {
		c, err := cached.New(b.kv, cfg.CacheSize, cfg.CacheTTL)
		if err != nil {
			_ = b.close()
			return nil, err
		}
		b.kv = c
	}
	return b, nil
}

// redisClient returns the storage connection when redis is the driver, or
// dials REDIS_URL otherwise.
func (b *backend) redisClient(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if b.redis != nil {
		return b.redis, nil
	}
	st, err := redisrepo.New(ctx, cfg.RedisURL, "")
	if err != nil {
		return nil, err
	}
	b.redis = st.Client()
	b.closers = append(b.closers, st.Close)
	return b.redis, nil
}

func (b *backend) close() error {
	var errs error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && !errors.Is(err, redis.ErrClosed) {
			errs = multierr.Append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errs
}
