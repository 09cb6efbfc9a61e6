package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu   sync.Mutex
	seen []string
	fail map[string]bool
}

func (p *recordingProcessor) ProcessJob(ctx context.Context, jobID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("job context has no deadline")
	}
	p.seen = append(p.seen, jobID)
	if p.fail[jobID] {
		return errors.New("boom")
	}
	return nil
}

func (p *recordingProcessor) processed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.seen...)
}

func TestExtractionWorker_ConsumesQueue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	proc := &recordingProcessor{fail: map[string]bool{"job-2": true}}
	w := NewExtractionWorker(proc, rdb, 2, time.Minute, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(stopped)
	}()

	require.NoError(t, rdb.RPush(context.Background(), "extraction_queue", "job-1", "job-2", "job-3").Err())

	assert.Eventually(t, func() bool { return len(proc.processed()) == 3 }, 5*time.Second, 20*time.Millisecond)
	assert.ElementsMatch(t, []string{"job-1", "job-2", "job-3"}, proc.processed())

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}

	n, err := rdb.LLen(context.Background(), "extraction_queue").Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestNewExtractionWorker_AtLeastOneLoop(t *testing.T) {
	w := NewExtractionWorker(&recordingProcessor{}, nil, 0, time.Second, zerolog.Nop())
	assert.Equal(t, 1, w.loops)
}
