package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/edutrack-backend/internal/aggregate"
	"github.com/stemsi/edutrack-backend/internal/blob"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/extraction"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/recognizer"
	"github.com/stemsi/edutrack-backend/internal/repository"
	"github.com/stemsi/edutrack-backend/internal/store"
)

type testEnv struct {
	cfg        *config.Config
	kv         *store.MemoryStore
	mr         *miniredis.Miniredis
	rdb        *redis.Client
	engine     *aggregate.Engine
	semRepo    *repository.SemesterRepository
	files      *FileService
	semesters  *SemesterService
	analytics  *AnalyticsService
	exporter   *ExportService
	extraction *ExtractionService
	ocr        *fakeRecognizer
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:           "test-secret",
		JWTExpiry:           time.Hour,
		BcryptCost:          bcrypt.MinCost,
		ConfidenceThreshold: extraction.DefaultConfidenceThreshold,
		MaxFileBytes:        10 << 20,
		MaxUserStorageBytes: 50 << 20,
	}
}

func newTestEnv(t *testing.T, tweak ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, fn := range tweak {
		fn(cfg)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := zerolog.Nop()
	kv := store.NewMemoryStore()
	engine := aggregate.NewEngine(nil)
	semRepo := repository.NewSemesterRepository(kv)
	files := NewFileService(cfg, repository.NewFileRepository(kv), blob.NewKVStore(kv), log)
	ocr := &fakeRecognizer{}

	extractor := extraction.New(extraction.Config{ConfidenceThreshold: cfg.ConfidenceThreshold})

	return &testEnv{
		cfg:        cfg,
		kv:         kv,
		mr:         mr,
		rdb:        rdb,
		engine:     engine,
		semRepo:    semRepo,
		files:      files,
		semesters:  NewSemesterService(semRepo, files, engine, log),
		analytics:  NewAnalyticsService(semRepo, engine),
		exporter:   NewExportService(semRepo, engine, log),
		extraction: NewExtractionService(extractor, engine, ocr, files, repository.NewExtractionJobRepository(kv), rdb, log),
		ocr:        ocr,
	}
}

// fakeRecognizer returns a fixed recognition and counts calls.
type fakeRecognizer struct {
	rec   recognizer.Recognition
	err   error
	calls int
}

func (f *fakeRecognizer) Recognize(ctx context.Context, _ []byte) (recognizer.Recognition, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return recognizer.Recognition{}, err
	}
	return f.rec, f.err
}

// pngBytes renders a small noisy image so the encoded size is not trivial.
func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8((x*31 + y*17) % 251)})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func subject(code, name string, credits int, g string) model.SubjectInput {
	return model.SubjectInput{Code: code, Name: name, Credits: credits, Grade: g}
}

// seedSemesters saves the two-semester record used by the analytics tests.
func seedSemesters(t *testing.T, env *testEnv, userID string) []*model.Semester {
	t.Helper()
	ctx := context.Background()

	first, err := env.semesters.Create(ctx, userID, model.CreateSemesterRequest{
		Name: "Semester 1", AcademicYear: "2022-23", SemesterNumber: 1, StudentName: "Jane Doe",
		Subjects: []model.SubjectInput{
			subject("CS201", "Data Structures", 4, "A+"),
			subject("CS202", "Operating Systems", 3, "U"),
			subject("MA101", "Mathematics", 4, "B"),
		},
	})
	require.NoError(t, err)

	second, err := env.semesters.Create(ctx, userID, model.CreateSemesterRequest{
		Name: "Semester 2", AcademicYear: "2022-23", SemesterNumber: 2, StudentName: "Jane Doe",
		Subjects: []model.SubjectInput{
			subject("CS301", "Networks", 3, "O"),
			subject("MA102", "Mathematics", 4, "A"),
		},
	})
	require.NoError(t, err)

	return []*model.Semester{first, second}
}
