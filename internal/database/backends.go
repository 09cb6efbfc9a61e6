package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/edutrack-backend/internal/blob"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/repository"
	"github.com/stemsi/edutrack-backend/internal/store"
)

// UserStore is the account storage the selected backend provides.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, hash string) error
}

// Backends holds the connections and stores picked by STORE_BACKEND and
// FILE_BACKEND. Redis is always connected: sessions and the extraction
// queue live there whatever the document store is.
type Backends struct {
	Pool  *pgxpool.Pool // nil unless STORE_BACKEND=postgres
	Redis *redis.Client
	KV    store.KeyValueStore
	Users UserStore
	Files blob.Store
}

// Open connects the configured backends.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Backends, error) {
	rdb, err := NewRedisClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	b := &Backends{Redis: rdb}

	switch cfg.StoreBackend {
	case "postgres":
		pool, err := NewPostgresPool(ctx, cfg, log)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.Pool = pool
		b.KV = store.NewPostgresStore(pool)
		b.Users = repository.NewUserRepository(pool)
	case "redis":
		b.KV = store.NewRedisStore(rdb)
		b.Users = repository.NewKVUserRepository(b.KV)
	case "memory":
		log.Warn().Msg("Using in-memory store; data is lost on restart")
		b.KV = store.NewMemoryStore()
		b.Users = repository.NewKVUserRepository(b.KV)
	default:
		b.Close()
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	switch cfg.FileBackend {
	case "kv":
		b.Files = blob.NewKVStore(b.KV)
	case "s3":
		s3, err := blob.NewS3Store(cfg.S3)
		if err != nil {
			b.Close()
			return nil, err
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			b.Close()
			return nil, fmt.Errorf("ensure bucket: %w", err)
		}
		b.Files = s3
	default:
		b.Close()
		return nil, fmt.Errorf("unknown FILE_BACKEND %q", cfg.FileBackend)
	}

	log.Info().
		Str("store", cfg.StoreBackend).
		Str("files", cfg.FileBackend).
		Msg("Backends ready")
	return b, nil
}

// Close releases every open connection.
func (b *Backends) Close() {
	if b.Pool != nil {
		b.Pool.Close()
	}
	if b.Redis != nil {
		_ = b.Redis.Close()
	}
}
