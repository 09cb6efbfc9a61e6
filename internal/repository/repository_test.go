package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/store"
)

func TestSemesterRepository_PerUserCollections(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	repo := NewSemesterRepository(kv)

	empty, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, repo.Save(ctx, "u1", []model.Semester{{ID: "a", Name: "Semester 1"}, {ID: "b", Name: "Semester 2"}}))
	require.NoError(t, repo.Save(ctx, "u2", []model.Semester{{ID: "c", Name: "Semester 1"}}))

	got, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	raw, err := kv.Get(ctx, "semesterData:u2")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"c"`)

	require.NoError(t, repo.Save(ctx, "u1", nil))
	_, err = kv.Get(ctx, "semesterData:u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSemesterRepository_CorruptDocument(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, "semesterData:u1", []byte("{not json")))

	_, err := NewSemesterRepository(kv).List(ctx, "u1")
	assert.Error(t, err)
}

func TestFileRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(store.NewMemoryStore())

	files := []model.StoredFile{{ID: "f1", Name: "sem1.png", Size: 1024, UploadedAt: time.Now().UTC()}}
	require.NoError(t, repo.Save(ctx, "u1", files))

	got, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "sem1.png", got[0].Name)
	assert.Equal(t, int64(1024), got[0].Size)

	other, err := repo.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestExtractionJobRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewExtractionJobRepository(store.NewMemoryStore())

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	job := &model.ExtractionJob{ID: "j1", OwnerID: "u1", FileID: "f1", Status: model.ExtractionQueued}
	require.NoError(t, repo.Save(ctx, job))

	got, err := repo.Get(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, model.ExtractionQueued, got.Status)
	assert.Equal(t, "f1", got.FileID)

	require.NoError(t, repo.Delete(ctx, "j1"))
	_, err = repo.Get(ctx, "j1")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestKVUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewKVUserRepository(store.NewMemoryStore())

	u := &model.User{Email: "Jane@Example.com", Name: "Jane", PasswordHash: "hash-1"}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "jane@example.com", u.Email)

	err := repo.Create(ctx, &model.User{Email: "JANE@example.com", Name: "Other"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	got, err := repo.GetByEmail(ctx, "jane@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "hash-1", got.PasswordHash)

	require.NoError(t, repo.UpdatePassword(ctx, u.ID, "hash-2"))
	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-2", got.PasswordHash)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
