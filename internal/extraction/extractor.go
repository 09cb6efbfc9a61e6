package extraction

import (
	"github.com/stemsi/edutrack-backend/internal/grade"
)

// DefaultConfidenceThreshold is the lowest recognition confidence, on a
// 0-100 scale, whose text is parsed at all.
const DefaultConfidenceThreshold = 60.0

// Config holds the tunables of an Extractor.
type Config struct {
	ConfidenceThreshold float64
	Table               *grade.Table
}

// DefaultConfig returns a threshold of 60 and the default grade table.
func DefaultConfig() Config {
	return Config{
		ConfidenceThreshold: DefaultConfidenceThreshold,
		Table:               grade.Default(),
	}
}

// Extractor decides whether recognized text describes a usable marksheet.
// It holds no mutable state and is safe for concurrent use.
type Extractor struct {
	threshold float64
	subjects  *SubjectParser
}

// New builds an Extractor. A nil table falls back to the default one.
func New(cfg Config) *Extractor {
	if cfg.Table == nil {
		cfg.Table = grade.Default()
	}
	return &Extractor{
		threshold: cfg.ConfidenceThreshold,
		subjects:  NewSubjectParser(cfg.Table),
	}
}

// Threshold returns the configured confidence gate.
func (e *Extractor) Threshold() float64 { return e.threshold }

// Extract parses rawText recognized with the given confidence.
// Text below the threshold is rejected without parsing. Parsed text is
// accepted only when it names a semester, a student and at least one
// subject.
func (e *Extractor) Extract(rawText string, confidence float64) Result {
	// written so that NaN is rejected too
	if !(confidence >= e.threshold) {
		return lowConfidence(confidence, rawText)
	}

	lines := SplitLines(rawText)
	header := ExtractHeader(lines)
	subjects := e.subjects.Parse(lines)

	hasSemester := header.SemesterNumber != nil || header.SemesterLine != ""
	if !hasSemester || header.StudentName == "" || len(subjects) == 0 {
		return unparseable(confidence, rawText)
	}

	return Accepted{
		Confidence: confidence,
		Header:     header,
		Subjects:   subjects,
	}
}
