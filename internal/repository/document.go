package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stemsi/edutrack-backend/internal/store"
)

// loadDocument decodes the JSON value at key into v. A missing key leaves
// v untouched and reports found=false.
func loadDocument(ctx context.Context, kv store.KeyValueStore, key string, v any) (bool, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func saveDocument(ctx context.Context, kv store.KeyValueStore, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}
