package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

// SystemHandler reports process health and exposes Prometheus metrics.
type SystemHandler struct {
	rdb       *redis.Client
	checks    map[string]Check
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler. Redis is always checked;
// extra checks (the Postgres pool, the OCR engine) are added by name.
func NewSystemHandler(rdb *redis.Client, checks map[string]Check, log zerolog.Logger) *SystemHandler {
	all := map[string]Check{
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}
	for name, check := range checks {
		all[name] = check
	}
	return &SystemHandler{
		rdb:       rdb,
		checks:    all,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status          string            `json:"status"`
	Uptime          string            `json:"uptime"`
	Dependencies    map[string]string `json:"dependencies"`
	Goroutines      int               `json:"goroutines"`
	HeapAlloc       uint64            `json:"heap_alloc"`
	NumGC           uint32            `json:"num_gc"`
	GoVersion       string            `json:"go_version"`
	ExtractionQueue int64             `json:"extraction_queue"`
}

// Health godoc
// GET /health
// Returns 200 while every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	report := healthReport{
		Status:       "ok",
		Uptime:       formatDuration(time.Since(h.startTime)),
		Dependencies: make(map[string]string, len(h.checks)),
		Goroutines:   runtime.NumGoroutine(),
		GoVersion:    runtime.Version(),
	}

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Warn().Err(err).Str("dependency", name).Msg("Health check failed")
			report.Dependencies[name] = "down"
			report.Status = "degraded"
			continue
		}
		report.Dependencies[name] = "up"
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	report.HeapAlloc = ms.HeapAlloc
	report.NumGC = ms.NumGC
	report.ExtractionQueue, _ = h.rdb.LLen(ctx, config.WorkerKey.ExtractionQueue).Result()

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, report)
}

// Metrics godoc
// GET /metrics
func (h *SystemHandler) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
