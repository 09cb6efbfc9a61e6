package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/metrics"
)

const ExtractionPollTimeout = 1 * time.Second

// JobProcessor runs one queued extraction job.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

// ExtractionWorker consumes extraction_queue with a fixed number of
// concurrent loops. Jobs still queued at shutdown stay in Redis and are
// picked up on the next start.
type ExtractionWorker struct {
	jobs       JobProcessor
	rdb        *redis.Client
	loops      int
	jobTimeout time.Duration
	log        zerolog.Logger
}

// NewExtractionWorker creates a new ExtractionWorker. Each job gets at most
// jobTimeout to finish.
func NewExtractionWorker(jobs JobProcessor, rdb *redis.Client, loops int, jobTimeout time.Duration, log zerolog.Logger) *ExtractionWorker {
	if loops < 1 {
		loops = 1
	}
	return &ExtractionWorker{
		jobs:       jobs,
		rdb:        rdb,
		loops:      loops,
		jobTimeout: jobTimeout,
		log:        log.With().Str("component", "extraction_worker").Logger(),
	}
}

// Start runs the worker loops and blocks until ctx is cancelled and every
// in-flight job has finished. Call in a goroutine.
func (w *ExtractionWorker) Start(ctx context.Context) {
	w.log.Info().Int("loops", w.loops).Msg("Worker started")

	var wg sync.WaitGroup
	for i := 0; i < w.loops; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()

	w.log.Info().Msg("Worker stopped")
}

func (w *ExtractionWorker) loop(ctx context.Context, id int) {
	log := w.log.With().Int("loop", id).Logger()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Loop stopping")
			return
		default:
			w.processNext(ctx, log)
		}
	}
}

func (w *ExtractionWorker) processNext(ctx context.Context, log zerolog.Logger) {
	// BLPop blocks until an item is available or the poll timeout passes.
	result, err := w.rdb.BLPop(ctx, ExtractionPollTimeout, config.WorkerKey.ExtractionQueue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			log.Error().Err(err).Msg("BLPop error")
			// avoid a hot loop while Redis is unreachable
			time.Sleep(ExtractionPollTimeout)
		}
		return
	}
	if len(result) < 2 {
		return
	}
	jobID := result[1]

	if depth, err := w.rdb.LLen(ctx, config.WorkerKey.ExtractionQueue).Result(); err == nil {
		metrics.ExtractionQueueDepth.Set(float64(depth))
	}

	// A popped job runs to completion even when shutdown starts meanwhile.
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.jobTimeout)
	defer cancel()

	start := time.Now()
	if err := w.jobs.ProcessJob(jobCtx, jobID); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("Failed to process extraction job")
		return
	}
	log.Debug().Str("job_id", jobID).Dur("took", time.Since(start)).Msg("Extraction job processed")
}
