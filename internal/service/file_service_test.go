package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/edutrack-backend/internal/config"
)

func TestFileService_Upload(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	data := pngBytes(t, 32)

	file, err := env.files.Upload(ctx, "u1", "sem1.png", "image/png", data)
	require.NoError(t, err)
	assert.NotEmpty(t, file.ID)
	assert.Equal(t, "image/png", file.ContentType)
	assert.Equal(t, int64(len(data)), file.Size)

	got, payload, err := env.files.Open(ctx, "u1", file.ID)
	require.NoError(t, err)
	assert.Equal(t, "sem1.png", got.Name)
	assert.Equal(t, data, payload)

	usage, err := env.files.Usage(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), usage.UsedBytes)
	assert.Equal(t, 1, usage.FileCount)
	assert.Equal(t, env.cfg.MaxUserStorageBytes, usage.LimitBytes)

	_, err = env.files.Get(ctx, "u2", file.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFileService_AcceptsDeclaredParamsAndPDF(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	file, err := env.files.Upload(ctx, "u1", "sem1.pdf", "application/pdf", pdfBytes)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.False(t, IsImage(file.ContentType))

	_, err = env.files.Upload(ctx, "u1", "sem2.png", "image/png; name=sem2.png", pngBytes(t, 8))
	assert.NoError(t, err)
}

func TestFileService_RejectsTypes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.files.Upload(ctx, "u1", "notes.txt", "text/plain", []byte("hello"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = env.files.Upload(ctx, "u1", "fake.png", "image/png", []byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedFileType)

	_, err = env.files.Upload(ctx, "u1", "empty.png", "image/png", nil)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestFileService_Limits(t *testing.T) {
	ctx := context.Background()
	data := pngBytes(t, 32)
	size := int64(len(data))

	env := newTestEnv(t, func(c *config.Config) {
		c.MaxFileBytes = size
		c.MaxUserStorageBytes = 2 * size
	})

	_, err := env.files.Upload(ctx, "u1", "big.png", "image/png", append(data, 0))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = env.files.Upload(ctx, "u1", "a.png", "image/png", data)
	require.NoError(t, err)
	_, err = env.files.Upload(ctx, "u1", "b.png", "image/png", data)
	require.NoError(t, err)
	_, err = env.files.Upload(ctx, "u1", "c.png", "image/png", data)
	assert.ErrorIs(t, err, ErrStorageQuotaExceeded)

	// quota is per user
	_, err = env.files.Upload(ctx, "u2", "a.png", "image/png", data)
	assert.NoError(t, err)
}

func TestFileService_Delete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	file, err := env.files.Upload(ctx, "u1", "sem1.png", "image/png", pngBytes(t, 8))
	require.NoError(t, err)

	assert.ErrorIs(t, env.files.Delete(ctx, "u2", file.ID), ErrFileNotFound)
	require.NoError(t, env.files.Delete(ctx, "u1", file.ID))

	_, _, err = env.files.Open(ctx, "u1", file.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
	assert.ErrorIs(t, env.files.Delete(ctx, "u1", file.ID), ErrFileNotFound)

	files, err := env.files.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, files)
}
