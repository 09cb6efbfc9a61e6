package model

import "time"

// ExtractionStatus is the state of an asynchronous extraction job.
type ExtractionStatus string

const (
	ExtractionQueued     ExtractionStatus = "queued"
	ExtractionProcessing ExtractionStatus = "processing"
	ExtractionAccepted   ExtractionStatus = "accepted"
	ExtractionRejected   ExtractionStatus = "rejected"
	ExtractionFailed     ExtractionStatus = "failed"
)

// Terminal reports whether no further transition can happen.
func (s ExtractionStatus) Terminal() bool {
	return s == ExtractionAccepted || s == ExtractionRejected || s == ExtractionFailed
}

// ExtractionOutcome is the serialized form of an extraction result.
// Accepted outcomes carry Header and Subjects; rejected ones carry Reason,
// Message and RawText.
type ExtractionOutcome struct {
	Accepted   bool            `json:"accepted"`
	Confidence float64         `json:"confidence"`
	Header     *HeaderInfo     `json:"header,omitempty"`
	Subjects   []SubjectRecord `json:"subjects,omitempty"`
	SGPA       *float64        `json:"sgpa,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Message    string          `json:"message,omitempty"`
	RawText    string          `json:"raw_text,omitempty"`
}

// ExtractionJob tracks recognition of one uploaded file.
type ExtractionJob struct {
	ID         string             `json:"id"`
	OwnerID    string             `json:"owner_id"`
	FileID     string             `json:"file_id"`
	Status     ExtractionStatus   `json:"status"`
	Outcome    *ExtractionOutcome `json:"outcome,omitempty"`
	Error      string             `json:"error,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	StartedAt  *time.Time         `json:"started_at,omitempty"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
}

// ExtractTextRequest runs extraction over text recognized elsewhere.
type ExtractTextRequest struct {
	Text       string  `json:"text" binding:"max=200000"`
	Confidence float64 `json:"confidence" binding:"min=0,max=100"`
}

// CreateExtractionRequest queues recognition of an uploaded file.
type CreateExtractionRequest struct {
	FileID string `json:"file_id" binding:"required,uuid"`
}
