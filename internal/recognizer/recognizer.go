// Package recognizer talks to the text-recognition engine that reads
// marksheet images.
package recognizer

import (
	"context"
	"errors"
)

var (
	ErrEmptyImage   = errors.New("empty image")
	ErrInvalidImage = errors.New("image could not be decoded")
	ErrUnavailable  = errors.New("recognition service unavailable")
)

// Recognition is the text read from one image and the engine's confidence
// in it on a 0-100 scale.
type Recognition struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Lines      int     `json:"lines"`
}

// Recognizer reads text from an image. Implementations must return when
// ctx is cancelled.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte) (Recognition, error)
}
