package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/store"
)

// userRecord is the stored form of a user. model.User hides the hash from
// JSON, so it cannot be stored as is.
type userRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// KVUserRepository keeps accounts in the key-value store for deployments
// without PostgreSQL. Email uniqueness holds within one process.
type KVUserRepository struct {
	kv store.KeyValueStore
	mu sync.Mutex
}

// NewKVUserRepository creates a new KVUserRepository.
func NewKVUserRepository(kv store.KeyValueStore) *KVUserRepository {
	return &KVUserRepository{kv: kv}
}

// Create stores u under a fresh id and fills its timestamps.
func (r *KVUserRepository) Create(ctx context.Context, u *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := strings.ToLower(u.Email)
	if _, err := r.kv.Get(ctx, config.CacheKey.UserEmailKey(email)); err == nil {
		return ErrDuplicateEmail
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	now := time.Now().UTC()
	rec := userRecord{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := saveDocument(ctx, r.kv, config.CacheKey.UserKey(rec.ID), rec); err != nil {
		return err
	}
	if err := r.kv.Set(ctx, config.CacheKey.UserEmailKey(email), []byte(rec.ID)); err != nil {
		return err
	}

	u.ID, u.Email, u.CreatedAt, u.UpdatedAt = rec.ID, email, now, now
	return nil
}

// GetByEmail retrieves a user by their unique email.
func (r *KVUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := r.kv.Get(ctx, config.CacheKey.UserEmailKey(strings.ToLower(email)))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, string(id))
}

// GetByID retrieves a user by ID.
func (r *KVUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	var rec userRecord
	found, err := loadDocument(ctx, r.kv, config.CacheKey.UserKey(id), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return &model.User{
		ID:           rec.ID,
		Email:        rec.Email,
		Name:         rec.Name,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

// UpdatePassword replaces the stored hash.
func (r *KVUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return saveDocument(ctx, r.kv, config.CacheKey.UserKey(id), userRecord{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: hash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    time.Now().UTC(),
	})
}
