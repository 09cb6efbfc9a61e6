package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/edutrack-backend/internal/aggregate"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/extraction"
	"github.com/stemsi/edutrack-backend/internal/metrics"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/recognizer"
	"github.com/stemsi/edutrack-backend/internal/repository"
)

// Sentinel errors for extraction jobs.
var (
	ErrJobNotFound         = errors.New("extraction job not found")
	ErrRecognitionDisabled = errors.New("image recognition is not configured")
)

// ExtractionService turns recognized text into marksheet data, either
// synchronously or through queued jobs over uploaded files.
type ExtractionService struct {
	extractor *extraction.Extractor
	engine    *aggregate.Engine
	ocr       recognizer.Recognizer
	files     *FileService
	jobs      *repository.ExtractionJobRepository
	rdb       *redis.Client
	log       zerolog.Logger
}

// NewExtractionService creates a new ExtractionService. ocr may be nil, in
// which case only text extraction is available.
func NewExtractionService(
	extractor *extraction.Extractor,
	engine *aggregate.Engine,
	ocr recognizer.Recognizer,
	files *FileService,
	jobs *repository.ExtractionJobRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *ExtractionService {
	return &ExtractionService{
		extractor: extractor,
		engine:    engine,
		ocr:       ocr,
		files:     files,
		jobs:      jobs,
		rdb:       rdb,
		log:       log.With().Str("component", "extraction_service").Logger(),
	}
}

// ExtractText runs extraction over text recognized elsewhere.
func (s *ExtractionService) ExtractText(text string, confidence float64) model.ExtractionOutcome {
	return s.outcome("text", s.extractor.Extract(text, confidence))
}

// CreateJob queues recognition of one of the user's files.
func (s *ExtractionService) CreateJob(ctx context.Context, userID, fileID string) (*model.ExtractionJob, error) {
	if s.ocr == nil {
		return nil, ErrRecognitionDisabled
	}
	if _, err := s.files.Get(ctx, userID, fileID); err != nil {
		return nil, err
	}

	job := &model.ExtractionJob{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		FileID:    fileID,
		Status:    model.ExtractionQueued,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("save job: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.ExtractionQueue, job.ID).Err(); err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}

	s.log.Info().Str("job_id", job.ID).Str("file_id", fileID).Msg("Extraction job queued")
	return job, nil
}

// GetJob returns a job owned by userID.
func (s *ExtractionService) GetJob(ctx context.Context, userID, jobID string) (*model.ExtractionJob, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	if job.OwnerID != userID {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Subscribe opens the event channel of a job. Every message is the JSON of
// the job after a status change.
func (s *ExtractionService) Subscribe(ctx context.Context, jobID string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.CacheKey.ExtractionJobChannel(jobID))
}

// ProcessJob runs recognition and extraction for a queued job. Failures of
// the recognition engine end the job as failed; they are not returned.
func (s *ExtractionService) ProcessJob(ctx context.Context, jobID string) error {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("get job: %w", err)
	}
	if job.Status.Terminal() {
		return nil
	}

	started := time.Now().UTC()
	job.Status = model.ExtractionProcessing
	job.StartedAt = &started
	if err := s.update(ctx, job); err != nil {
		return err
	}

	outcome, runErr := s.run(ctx, job)
	finished := time.Now().UTC()
	job.FinishedAt = &finished

	switch {
	case runErr != nil:
		job.Status = model.ExtractionFailed
		job.Error = runErr.Error()
		metrics.ExtractionsTotal.WithLabelValues("image", "failed", "").Inc()
		s.log.Warn().Err(runErr).Str("job_id", job.ID).Msg("Extraction job failed")
	case outcome.Accepted:
		job.Status = model.ExtractionAccepted
		job.Outcome = &outcome
	default:
		job.Status = model.ExtractionRejected
		job.Outcome = &outcome
	}

	// The job's own context may already be cancelled; the final state must
	// still be recorded.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return s.update(saveCtx, job)
}

func (s *ExtractionService) run(ctx context.Context, job *model.ExtractionJob) (model.ExtractionOutcome, error) {
	file, data, err := s.files.Open(ctx, job.OwnerID, job.FileID)
	if err != nil {
		return model.ExtractionOutcome{}, fmt.Errorf("open file: %w", err)
	}
	if !IsImage(file.ContentType) {
		return s.outcome("image", extraction.UnsupportedFileType(file.ContentType)), nil
	}
	if s.ocr == nil {
		return model.ExtractionOutcome{}, ErrRecognitionDisabled
	}

	start := time.Now()
	rec, err := s.ocr.Recognize(ctx, data)
	metrics.RecognitionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return model.ExtractionOutcome{}, fmt.Errorf("recognize: %w", err)
	}

	return s.outcome("image", s.extractor.Extract(rec.Text, rec.Confidence)), nil
}

// outcome converts a result, attaches the SGPA of accepted subjects and
// records metrics.
func (s *ExtractionService) outcome(source string, res extraction.Result) model.ExtractionOutcome {
	out := extraction.Outcome(res)
	if out.Reason != string(extraction.ReasonUnsupportedFileType) {
		metrics.ExtractionConfidence.Observe(res.Score())
	}

	if out.Accepted {
		sgpa := s.engine.SGPA(out.Subjects)
		out.SGPA = &sgpa
		metrics.ExtractionsTotal.WithLabelValues(source, "accepted", "").Inc()
		metrics.ExtractedSubjects.Observe(float64(len(out.Subjects)))
	} else {
		metrics.ExtractionsTotal.WithLabelValues(source, "rejected", out.Reason).Inc()
	}
	return out
}

// update saves the job and announces its new state.
func (s *ExtractionService) update(ctx context.Context, job *model.ExtractionJob) error {
	if err := s.jobs.Save(ctx, job); err != nil {
		return fmt.Errorf("save job: %w", err)
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.ExtractionJobChannel(job.ID), raw).Err(); err != nil {
		s.log.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to publish job update")
	}
	return nil
}
