package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/edutrack-backend/internal/blob"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/store"
)

func TestOpen_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{RedisURL: "redis://" + mr.Addr() + "/0", StoreBackend: "redis", FileBackend: "kv"}

	b, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer b.Close()

	assert.Nil(t, b.Pool)
	assert.IsType(t, &store.RedisStore{}, b.KV)
	assert.IsType(t, &blob.KVStore{}, b.Files)

	u := &model.User{Email: "jane@example.com", Name: "Jane", PasswordHash: "h"}
	require.NoError(t, b.Users.Create(context.Background(), u))
	assert.True(t, mr.Exists("user:"+u.ID))
}

func TestOpen_UnknownBackends(t *testing.T) {
	mr := miniredis.RunT(t)

	_, err := Open(context.Background(), &config.Config{RedisURL: "redis://" + mr.Addr(), StoreBackend: "etcd", FileBackend: "kv"}, zerolog.Nop())
	assert.ErrorContains(t, err, "STORE_BACKEND")

	_, err = Open(context.Background(), &config.Config{RedisURL: "redis://" + mr.Addr(), StoreBackend: "memory", FileBackend: "ftp"}, zerolog.Nop())
	assert.ErrorContains(t, err, "FILE_BACKEND")
}
