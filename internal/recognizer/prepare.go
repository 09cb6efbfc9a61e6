package recognizer

import (
	"bytes"
	"fmt"

	"github.com/disintegration/imaging"
)

// Prepare decodes a JPEG or PNG, applies its EXIF orientation, converts it
// to grayscale and scales it down to at most maxWidth pixels wide. The
// result is PNG encoded. A maxWidth of 0 disables scaling.
func Prepare(data []byte, maxWidth int) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	gray := imaging.Grayscale(img)
	if maxWidth > 0 && gray.Bounds().Dx() > maxWidth {
		gray = imaging.Resize(gray, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode prepared image: %w", err)
	}
	return buf.Bytes(), nil
}
