package repository

import (
	"context"
	"errors"

	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/store"
)

var ErrJobNotFound = errors.New("extraction job not found")

// ExtractionJobRepository stores extraction jobs by id.
type ExtractionJobRepository struct {
	kv store.KeyValueStore
}

// NewExtractionJobRepository creates a new ExtractionJobRepository.
func NewExtractionJobRepository(kv store.KeyValueStore) *ExtractionJobRepository {
	return &ExtractionJobRepository{kv: kv}
}

func (r *ExtractionJobRepository) Get(ctx context.Context, id string) (*model.ExtractionJob, error) {
	job := &model.ExtractionJob{}
	found, err := loadDocument(ctx, r.kv, config.CacheKey.ExtractionJobKey(id), job)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (r *ExtractionJobRepository) Save(ctx context.Context, job *model.ExtractionJob) error {
	return saveDocument(ctx, r.kv, config.CacheKey.ExtractionJobKey(job.ID), job)
}

func (r *ExtractionJobRepository) Delete(ctx context.Context, id string) error {
	return r.kv.Delete(ctx, config.CacheKey.ExtractionJobKey(id))
}
