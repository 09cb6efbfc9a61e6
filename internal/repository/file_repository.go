package repository

import (
	"context"

	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/store"
)

// FileRepository keeps the metadata index of each user's uploads.
type FileRepository struct {
	kv store.KeyValueStore
}

// NewFileRepository creates a new FileRepository.
func NewFileRepository(kv store.KeyValueStore) *FileRepository {
	return &FileRepository{kv: kv}
}

func (r *FileRepository) List(ctx context.Context, userID string) ([]model.StoredFile, error) {
	files := make([]model.StoredFile, 0)
	if _, err := loadDocument(ctx, r.kv, config.CacheKey.UploadedFilesKey(userID), &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (r *FileRepository) Save(ctx context.Context, userID string, files []model.StoredFile) error {
	if len(files) == 0 {
		return r.kv.Delete(ctx, config.CacheKey.UploadedFilesKey(userID))
	}
	return saveDocument(ctx, r.kv, config.CacheKey.UploadedFilesKey(userID), files)
}
