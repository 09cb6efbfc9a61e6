package extraction

import (
	"fmt"

	"github.com/stemsi/edutrack-backend/internal/model"
)

// Reason explains why an extraction was rejected.
type Reason string

const (
	ReasonLowConfidence       Reason = "low-confidence"
	ReasonUnparseable         Reason = "unparseable"
	ReasonUnsupportedFileType Reason = "unsupported-file-type"
)

// Result is either Accepted or Rejected.
type Result interface {
	isResult()
	// Score is the recognition confidence the result was produced with.
	Score() float64
}

// Accepted carries a header and subjects that passed validation.
type Accepted struct {
	Confidence float64
	Header     model.HeaderInfo
	Subjects   []model.SubjectRecord
}

// Rejected carries the reason, a message fit for the user and the raw text
// so it can be shown during manual entry.
type Rejected struct {
	Confidence float64
	Reason     Reason
	Message    string
	RawText    string
}

func (Accepted) isResult() {}
func (Rejected) isResult() {}

func (a Accepted) Score() float64 { return a.Confidence }
func (r Rejected) Score() float64 { return r.Confidence }

func lowConfidence(confidence float64, raw string) Rejected {
	return Rejected{
		Confidence: confidence,
		Reason:     ReasonLowConfidence,
		Message:    fmt.Sprintf("Low confidence detection (%.1f%%). Please upload a clearer image or try manual entry.", confidence),
		RawText:    raw,
	}
}

func unparseable(confidence float64, raw string) Rejected {
	return Rejected{
		Confidence: confidence,
		Reason:     ReasonUnparseable,
		Message:    "Could not extract marksheet data accurately. Please verify the image quality or try manual entry.",
		RawText:    raw,
	}
}

// UnsupportedFileType rejects a file the recognition path cannot read,
// such as a PDF. It is produced by callers before recognition runs.
func UnsupportedFileType(contentType string) Rejected {
	return Rejected{
		Reason:  ReasonUnsupportedFileType,
		Message: fmt.Sprintf("Files of type %s cannot be read automatically. Please enter the marksheet manually.", contentType),
	}
}

// Outcome converts a result to its stored and wire form.
func Outcome(r Result) model.ExtractionOutcome {
	switch v := r.(type) {
	case Accepted:
		header := v.Header
		return model.ExtractionOutcome{
			Accepted:   true,
			Confidence: v.Confidence,
			Header:     &header,
			Subjects:   v.Subjects,
		}
	case Rejected:
		return model.ExtractionOutcome{
			Confidence: v.Confidence,
			Reason:     string(v.Reason),
			Message:    v.Message,
			RawText:    v.RawText,
		}
	}
	return model.ExtractionOutcome{}
}
