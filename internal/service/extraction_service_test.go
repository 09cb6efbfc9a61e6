package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/edutrack-backend/internal/extraction"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/recognizer"
	"github.com/stemsi/edutrack-backend/internal/repository"
)

const marksheetText = "Name: Jane Doe\nSemester 3\nCS201 Data Structures 4 A+\nCS202 Operating Systems 3 U\n"

func TestExtractionService_ExtractText(t *testing.T) {
	env := newTestEnv(t)

	out := env.extraction.ExtractText(marksheetText, 75)
	require.True(t, out.Accepted)
	require.NotNil(t, out.Header)
	assert.Equal(t, "Jane Doe", out.Header.StudentName)
	assert.Len(t, out.Subjects, 2)
	require.NotNil(t, out.SGPA)
	assert.Equal(t, 9.0, *out.SGPA)

	rej := env.extraction.ExtractText(marksheetText, 40)
	assert.False(t, rej.Accepted)
	assert.Equal(t, string(extraction.ReasonLowConfidence), rej.Reason)
	assert.Equal(t, marksheetText, rej.RawText)
	assert.Nil(t, rej.SGPA)
}

func TestExtractionService_CreateJob(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	file, err := env.files.Upload(ctx, "u1", "sem3.png", "image/png", pngBytes(t, 16))
	require.NoError(t, err)

	job, err := env.extraction.CreateJob(ctx, "u1", file.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExtractionQueued, job.Status)

	queued, err := env.mr.List("extraction_queue")
	require.NoError(t, err)
	assert.Equal(t, []string{job.ID}, queued)

	got, err := env.extraction.GetJob(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, file.ID, got.FileID)

	_, err = env.extraction.GetJob(ctx, "u2", job.ID)
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = env.extraction.CreateJob(ctx, "u2", file.ID)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestExtractionService_CreateJobWithoutRecognizer(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	svc := NewExtractionService(extraction.New(extraction.DefaultConfig()), env.engine, nil, env.files,
		repository.NewExtractionJobRepository(env.kv), env.rdb, zerolog.Nop())

	_, err := svc.CreateJob(ctx, "u1", "any")
	assert.ErrorIs(t, err, ErrRecognitionDisabled)

	out := svc.ExtractText(marksheetText, 90)
	assert.True(t, out.Accepted)
}

func TestExtractionService_ProcessJobAccepted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.ocr.rec = recognizer.Recognition{Text: marksheetText, Confidence: 88, Lines: 4}

	file, err := env.files.Upload(ctx, "u1", "sem3.png", "image/png", pngBytes(t, 16))
	require.NoError(t, err)
	job, err := env.extraction.CreateJob(ctx, "u1", file.ID)
	require.NoError(t, err)

	sub := env.extraction.Subscribe(ctx, job.ID)
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)
	events := sub.Channel()

	require.NoError(t, env.extraction.ProcessJob(ctx, job.ID))

	done, err := env.extraction.GetJob(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExtractionAccepted, done.Status)
	require.NotNil(t, done.Outcome)
	assert.Equal(t, 88.0, done.Outcome.Confidence)
	require.NotNil(t, done.Outcome.SGPA)
	assert.Equal(t, 9.0, *done.Outcome.SGPA)
	assert.NotNil(t, done.StartedAt)
	assert.NotNil(t, done.FinishedAt)

	var statuses []model.ExtractionStatus
	for len(statuses) < 2 {
		select {
		case msg := <-events:
			var ev model.ExtractionJob
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			statuses = append(statuses, ev.Status)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for job events, got %v", statuses)
		}
	}
	assert.Equal(t, []model.ExtractionStatus{model.ExtractionProcessing, model.ExtractionAccepted}, statuses)

	// terminal jobs are not processed twice
	require.NoError(t, env.extraction.ProcessJob(ctx, job.ID))
	assert.Equal(t, 1, env.ocr.calls)
}

func TestExtractionService_ProcessJobRejectsPDF(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	file, err := env.files.Upload(ctx, "u1", "sem3.pdf", "application/pdf", pdfBytes)
	require.NoError(t, err)
	job, err := env.extraction.CreateJob(ctx, "u1", file.ID)
	require.NoError(t, err)

	require.NoError(t, env.extraction.ProcessJob(ctx, job.ID))

	done, err := env.extraction.GetJob(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExtractionRejected, done.Status)
	require.NotNil(t, done.Outcome)
	assert.Equal(t, string(extraction.ReasonUnsupportedFileType), done.Outcome.Reason)
	assert.Zero(t, env.ocr.calls)
}

func TestExtractionService_ProcessJobLowConfidence(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.ocr.rec = recognizer.Recognition{Text: marksheetText, Confidence: 41.5}

	file, err := env.files.Upload(ctx, "u1", "sem3.png", "image/png", pngBytes(t, 16))
	require.NoError(t, err)
	job, err := env.extraction.CreateJob(ctx, "u1", file.ID)
	require.NoError(t, err)

	require.NoError(t, env.extraction.ProcessJob(ctx, job.ID))

	done, err := env.extraction.GetJob(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExtractionRejected, done.Status)
	assert.Equal(t, string(extraction.ReasonLowConfidence), done.Outcome.Reason)
	assert.Equal(t, marksheetText, done.Outcome.RawText)
}

func TestExtractionService_ProcessJobFailures(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.ocr.err = recognizer.ErrUnavailable

	file, err := env.files.Upload(ctx, "u1", "sem3.png", "image/png", pngBytes(t, 16))
	require.NoError(t, err)
	job, err := env.extraction.CreateJob(ctx, "u1", file.ID)
	require.NoError(t, err)

	require.NoError(t, env.extraction.ProcessJob(ctx, job.ID))
	done, err := env.extraction.GetJob(ctx, "u1", job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExtractionFailed, done.Status)
	assert.Contains(t, done.Error, recognizer.ErrUnavailable.Error())
	assert.Nil(t, done.Outcome)

	// a cancelled context still records the final state
	env.ocr.err = nil
	second, err := env.extraction.CreateJob(ctx, "u1", file.ID)
	require.NoError(t, err)
	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	require.NoError(t, env.extraction.ProcessJob(cancelled, second.ID))
	done, err = env.extraction.GetJob(ctx, "u1", second.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ExtractionFailed, done.Status)
	assert.Contains(t, done.Error, context.Canceled.Error())
}

func TestExtractionService_ProcessUnknownJob(t *testing.T) {
	env := newTestEnv(t)
	assert.Error(t, env.extraction.ProcessJob(context.Background(), "missing"))
}
