package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// HTTPRecognizer sends images to a pogo-compatible OCR server
// (POST /ocr/image, multipart field "image").
type HTTPRecognizer struct {
	baseURL  string
	client   *http.Client
	maxWidth int
	log      zerolog.Logger
}

// NewHTTPRecognizer creates a client for the OCR server at baseURL.
func NewHTTPRecognizer(baseURL string, timeout time.Duration, maxWidth int, log zerolog.Logger) *HTTPRecognizer {
	return &HTTPRecognizer{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		maxWidth: maxWidth,
		log:      log.With().Str("component", "ocr_client").Logger(),
	}
}

type ocrResponse struct {
	OCR struct {
		Width   int         `json:"width"`
		Height  int         `json:"height"`
		Regions []ocrRegion `json:"regions"`
	} `json:"ocr"`
}

type ocrRegion struct {
	Box struct {
		X int `json:"X"`
		Y int `json:"Y"`
		W int `json:"W"`
		H int `json:"H"`
	} `json:"box"`
	Text          string  `json:"text"`
	RecConfidence float64 `json:"rec_confidence"`
}

// Recognize prepares the image, posts it and turns the returned regions
// into lines of text.
func (r *HTTPRecognizer) Recognize(ctx context.Context, image []byte) (Recognition, error) {
	prepared, err := Prepare(image, r.maxWidth)
	if err != nil {
		return Recognition{}, err
	}

	body, contentType, err := multipartImage(prepared)
	if err != nil {
		return Recognition{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/ocr/image?format=json", body)
	if err != nil {
		return Recognition{}, fmt.Errorf("build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Recognition{}, ctxErr
		}
		return Recognition{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Recognition{}, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Recognition{}, fmt.Errorf("decode ocr response: %w", err)
	}

	rec := assemble(out.OCR.Regions)
	r.log.Debug().
		Int("regions", len(out.OCR.Regions)).
		Int("lines", rec.Lines).
		Float64("confidence", rec.Confidence).
		Dur("took", time.Since(start)).
		Msg("Image recognized")
	return rec, nil
}

// Ping checks that the OCR server answers its health endpoint.
func (r *HTTPRecognizer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	return nil
}

func multipartImage(data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "marksheet.png")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// assemble groups regions into rows by vertical overlap, orders each row
// left to right and joins cells with two spaces so column gaps survive.
// Confidence is the mean region confidence weighted by text length, scaled
// to 0-100.
func assemble(regions []ocrRegion) Recognition {
	kept := make([]ocrRegion, 0, len(regions))
	for _, rg := range regions {
		if strings.TrimSpace(rg.Text) != "" {
			kept = append(kept, rg)
		}
	}
	if len(kept) == 0 {
		return Recognition{}
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Box.Y != kept[j].Box.Y {
			return kept[i].Box.Y < kept[j].Box.Y
		}
		return kept[i].Box.X < kept[j].Box.X
	})

	var rows [][]ocrRegion
	rowBottom := 0
	for _, rg := range kept {
		center := rg.Box.Y + rg.Box.H/2
		if len(rows) > 0 && center <= rowBottom {
			rows[len(rows)-1] = append(rows[len(rows)-1], rg)
			rowBottom = max(rowBottom, rg.Box.Y+rg.Box.H)
			continue
		}
		rows = append(rows, []ocrRegion{rg})
		rowBottom = rg.Box.Y + rg.Box.H
	}

	var (
		lines    = make([]string, 0, len(rows))
		weighted float64
		chars    int
	)
	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool { return row[i].Box.X < row[j].Box.X })
		cells := make([]string, len(row))
		for i, rg := range row {
			text := strings.TrimSpace(rg.Text)
			cells[i] = text
			weighted += rg.RecConfidence * float64(len(text))
			chars += len(text)
		}
		lines = append(lines, strings.Join(cells, "  "))
	}

	return Recognition{
		Text:       strings.Join(lines, "\n"),
		Confidence: weighted / float64(chars) * 100,
		Lines:      len(lines),
	}
}

