package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/edutrack-backend/internal/aggregate"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/database"
	"github.com/stemsi/edutrack-backend/internal/extraction"
	"github.com/stemsi/edutrack-backend/internal/grade"
	"github.com/stemsi/edutrack-backend/internal/handler"
	"github.com/stemsi/edutrack-backend/internal/logger"
	"github.com/stemsi/edutrack-backend/internal/recognizer"
	"github.com/stemsi/edutrack-backend/internal/repository"
	"github.com/stemsi/edutrack-backend/internal/router"
	"github.com/stemsi/edutrack-backend/internal/service"
	"github.com/stemsi/edutrack-backend/internal/validator"
	"github.com/stemsi/edutrack-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting EduTrack Backend")

	// ─── Grading Core ──────────────────────────────────────────────────
	table := grade.Default()
	engine := aggregate.NewEngine(table)
	extractor := extraction.New(extraction.Config{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		Table:               table,
	})

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup(table)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect Backends ──────────────────────────────────────────────
	backends, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open backends")
	}
	defer backends.Close()
	rdb := backends.Redis

	// ─── Initialize Repositories ───────────────────────────────────────
	semesterRepo := repository.NewSemesterRepository(backends.KV)
	fileRepo := repository.NewFileRepository(backends.KV)
	jobRepo := repository.NewExtractionJobRepository(backends.KV)

	// ─── Recognition Engine ────────────────────────────────────────────
	checks := map[string]handler.Check{}
	if backends.Pool != nil {
		checks["postgres"] = backends.Pool.Ping
	}

	var ocr recognizer.Recognizer
	if cfg.OCRURL != "" {
		client := recognizer.NewHTTPRecognizer(cfg.OCRURL, cfg.OCRTimeout, cfg.OCRMaxImageWidth, log)
		ocr = client
		checks["ocr"] = client.Ping
		log.Info().Str("url", cfg.OCRURL).Msg("Image extraction enabled")
	} else {
		log.Warn().Msg("OCR_URL not set; image extraction jobs are disabled")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, backends.Users, rdb, log)
	fileService := service.NewFileService(cfg, fileRepo, backends.Files, log)
	semesterService := service.NewSemesterService(semesterRepo, fileService, engine, log)
	extractionService := service.NewExtractionService(extractor, engine, ocr, fileService, jobRepo, rdb, log)
	analyticsService := service.NewAnalyticsService(semesterRepo, engine)
	exportService := service.NewExportService(semesterRepo, engine, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Semester:   handler.NewSemesterHandler(semesterService, exportService),
		File:       handler.NewFileHandler(fileService, cfg.MaxFileBytes),
		Extraction: handler.NewExtractionHandler(extractionService),
		Analytics:  handler.NewAnalyticsHandler(analyticsService),
		WS:         handler.NewWSHandler(extractionService, log, cfg.AllowedOrigins),
		System:     handler.NewSystemHandler(rdb, checks, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	if ocr != nil {
		// A job may wait on one full OCR round trip plus file I/O.
		extractionWorker := worker.NewExtractionWorker(extractionService, rdb, cfg.ExtractionWorkers, 2*cfg.OCRTimeout, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			extractionWorker.Start(workerCtx)
		}()
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, authService, handlers, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop pulling jobs and let in-flight ones finish. Queued jobs stay
	// in Redis for the next start.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
