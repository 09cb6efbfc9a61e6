package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/edutrack-backend/internal/store"
)

func TestKVStore(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	s := NewKVStore(kv)

	_, err := s.Get(ctx, "u1", "f1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "u1", "f1", "image/png", []byte{0x89, 'P', 'N', 'G'}))
	data, err := s.Get(ctx, "u1", "f1")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

	raw, err := kv.Get(ctx, "filePayload:u1:f1")
	require.NoError(t, err)
	assert.Equal(t, data, raw)

	_, err = s.Get(ctx, "u2", "f1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "u1", "f1"))
	_, err = s.Get(ctx, "u1", "f1")
	assert.ErrorIs(t, err, ErrNotFound)
}
