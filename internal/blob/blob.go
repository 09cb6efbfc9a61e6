// Package blob stores the raw bytes of uploaded marksheets.
package blob

import (
	"context"
	"errors"
	"fmt"

	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/store"
)

// ErrNotFound is returned when no payload exists for a file.
var ErrNotFound = errors.New("file payload not found")

// Store keeps one payload per (user, file) pair.
type Store interface {
	Put(ctx context.Context, userID, fileID, contentType string, data []byte) error
	Get(ctx context.Context, userID, fileID string) ([]byte, error)
	Delete(ctx context.Context, userID, fileID string) error
}

// KVStore keeps payloads in the key-value store next to the documents.
type KVStore struct {
	kv store.KeyValueStore
}

func NewKVStore(kv store.KeyValueStore) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) Put(ctx context.Context, userID, fileID, _ string, data []byte) error {
	if err := s.kv.Set(ctx, config.CacheKey.FilePayloadKey(userID, fileID), data); err != nil {
		return fmt.Errorf("put payload: %w", err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, userID, fileID string) ([]byte, error) {
	data, err := s.kv.Get(ctx, config.CacheKey.FilePayloadKey(userID, fileID))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get payload: %w", err)
	}
	return data, nil
}

func (s *KVStore) Delete(ctx context.Context, userID, fileID string) error {
	if err := s.kv.Delete(ctx, config.CacheKey.FilePayloadKey(userID, fileID)); err != nil {
		return fmt.Errorf("delete payload: %w", err)
	}
	return nil
}
