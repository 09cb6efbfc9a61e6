package repository

import (
	"context"

	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/store"
)

// SemesterRepository keeps each user's semesters as one ordered JSON
// collection.
type SemesterRepository struct {
	kv store.KeyValueStore
}

// NewSemesterRepository creates a new SemesterRepository.
func NewSemesterRepository(kv store.KeyValueStore) *SemesterRepository {
	return &SemesterRepository{kv: kv}
}

// List returns the user's semesters in insertion order.
func (r *SemesterRepository) List(ctx context.Context, userID string) ([]model.Semester, error) {
	semesters := make([]model.Semester, 0)
	if _, err := loadDocument(ctx, r.kv, config.CacheKey.SemesterDataKey(userID), &semesters); err != nil {
		return nil, err
	}
	return semesters, nil
}

// Save replaces the user's whole collection.
func (r *SemesterRepository) Save(ctx context.Context, userID string, semesters []model.Semester) error {
	if len(semesters) == 0 {
		return r.kv.Delete(ctx, config.CacheKey.SemesterDataKey(userID))
	}
	return saveDocument(ctx, r.kv, config.CacheKey.SemesterDataKey(userID), semesters)
}
