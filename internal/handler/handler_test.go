package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/edutrack-backend/internal/aggregate"
	"github.com/stemsi/edutrack-backend/internal/blob"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/extraction"
	"github.com/stemsi/edutrack-backend/internal/handler"
	"github.com/stemsi/edutrack-backend/internal/recognizer"
	"github.com/stemsi/edutrack-backend/internal/repository"
	"github.com/stemsi/edutrack-backend/internal/router"
	"github.com/stemsi/edutrack-backend/internal/service"
	"github.com/stemsi/edutrack-backend/internal/store"
	"github.com/stemsi/edutrack-backend/internal/validator"
)

const marksheetText = "Name: Jane Doe\nSemester 3\nCS201 Data Structures 4 A+\nCS202 Operating Systems 3 U\n"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Setup(nil)
}

type stubRecognizer struct {
	rec recognizer.Recognition
}

func (s stubRecognizer) Recognize(ctx context.Context, _ []byte) (recognizer.Recognition, error) {
	if err := ctx.Err(); err != nil {
		return recognizer.Recognition{}, err
	}
	return s.rec, nil
}

type apiEnv struct {
	router     *gin.Engine
	mr         *miniredis.Miniredis
	extraction *service.ExtractionService
}

// envelope mirrors response.Response with a raw data field.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code   string            `json:"code"`
		Fields map[string]string `json:"fields"`
	} `json:"error"`
	Metadata struct {
		RequestID string `json:"request_id"`
	} `json:"metadata"`
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{
		GinMode:             gin.TestMode,
		JWTSecret:           "handler-test-secret",
		JWTExpiry:           time.Hour,
		BcryptCost:          bcrypt.MinCost,
		ConfidenceThreshold: extraction.DefaultConfidenceThreshold,
		MaxFileBytes:        1 << 20,
		MaxUserStorageBytes: 4 << 20,
		AuthRateLimit:       1000,
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := zerolog.Nop()
	kv := store.NewMemoryStore()
	engine := aggregate.NewEngine(nil)
	semRepo := repository.NewSemesterRepository(kv)

	authService := service.NewAuthService(cfg, repository.NewKVUserRepository(kv), rdb, log)
	fileService := service.NewFileService(cfg, repository.NewFileRepository(kv), blob.NewKVStore(kv), log)
	semesterService := service.NewSemesterService(semRepo, fileService, engine, log)
	extractionService := service.NewExtractionService(
		extraction.New(extraction.Config{ConfidenceThreshold: cfg.ConfidenceThreshold}),
		engine,
		stubRecognizer{rec: recognizer.Recognition{Text: marksheetText, Confidence: 91, Lines: 4}},
		fileService,
		repository.NewExtractionJobRepository(kv),
		rdb, log,
	)

	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Semester:   handler.NewSemesterHandler(semesterService, service.NewExportService(semRepo, engine, log)),
		File:       handler.NewFileHandler(fileService, cfg.MaxFileBytes),
		Extraction: handler.NewExtractionHandler(extractionService),
		Analytics:  handler.NewAnalyticsHandler(service.NewAnalyticsService(semRepo, engine)),
		WS:         handler.NewWSHandler(extractionService, log, nil),
		System:     handler.NewSystemHandler(rdb, nil, log),
	}

	return &apiEnv{
		router:     router.SetupRouter(ctx, authService, handlers, cfg, log),
		mr:         mr,
		extraction: extractionService,
	}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.serve(t, req)
}

func (e *apiEnv) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

// register creates an account and returns its bearer token.
func (e *apiEnv) register(t *testing.T, email string) string {
	t.Helper()
	w, env := e.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "name": "Jane Doe", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (e *apiEnv) upload(t *testing.T, token, name, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*7 + y*13) % 251)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
