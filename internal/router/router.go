package router

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/handler"
	"github.com/stemsi/edutrack-backend/internal/middleware"
	"github.com/stemsi/edutrack-backend/internal/response"
	"github.com/stemsi/edutrack-backend/internal/service"
)

// fileCacheSeconds is how long clients may reuse a downloaded marksheet.
// Stored files are immutable; only deletion changes them.
const fileCacheSeconds = 3600

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Semester   *handler.SemesterHandler
	File       *handler.FileHandler
	Extraction *handler.ExtractionHandler
	Analytics  *handler.AnalyticsHandler
	WS         *handler.WSHandler
	System     *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// ctx bounds background work such as rate limiter cleanup.
func SetupRouter(
	ctx context.Context,
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.MaxMultipartMemory = cfg.MaxFileBytes + 1<<20

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so access logs and error envelopes carry it.
	router.Use(response.RequestIDMiddleware(log))
	router.Use(middleware.AccessLog())
	router.Use(middleware.Metrics())
	router.Use(middleware.Brotli())

	router.GET("/health", handlers.System.Health)
	router.GET("/metrics", handlers.System.Metrics())

	requireJWT := middleware.RequireJWT(authService)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	authLimiter := middleware.NewRateLimiter(ctx, cfg.AuthRateLimit, time.Minute)

	auth := router.Group("/api/v1/auth")
	auth.Use(authLimiter.Middleware(), middleware.NoStore())
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)

		auth.POST("/logout", requireJWT, handlers.Auth.Logout)
		auth.GET("/me", requireJWT, handlers.Auth.Me)
	}

	// ─── 2. User API (JWT + Session) ───────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(requireJWT)
	{
		semesters := api.Group("/semesters", middleware.NoStore())
		{
			semesters.GET("", handlers.Semester.ListSemesters)
			semesters.POST("", handlers.Semester.CreateSemester)
			semesters.GET("/export", handlers.Semester.ExportTranscript)
			semesters.GET("/:id", handlers.Semester.GetSemester)
			semesters.PUT("/:id", handlers.Semester.UpdateSemester)
			semesters.DELETE("/:id", handlers.Semester.DeleteSemester)
			semesters.PUT("/:id/subjects", handlers.Semester.ReplaceSubjects)
			semesters.POST("/:id/subjects", handlers.Semester.AddSubject)
			semesters.PUT("/:id/subjects/:subject_id", handlers.Semester.UpdateSubject)
			semesters.DELETE("/:id/subjects/:subject_id", handlers.Semester.RemoveSubject)
		}

		files := api.Group("/files")
		{
			files.GET("", middleware.NoStore(), handlers.File.ListFiles)
			files.POST("", handlers.File.UploadFile)
			files.GET("/usage", middleware.NoStore(), handlers.File.Usage)
			files.GET("/:id", middleware.CacheControl(fileCacheSeconds), handlers.File.DownloadFile)
			files.DELETE("/:id", handlers.File.DeleteFile)
		}

		extractions := api.Group("/extractions", middleware.NoStore())
		{
			extractions.POST("/text", handlers.Extraction.ExtractText)
			extractions.POST("", handlers.Extraction.CreateJob)
			extractions.GET("/:job_id", handlers.Extraction.GetJob)
		}

		analytics := api.Group("/analytics", middleware.NoStore())
		{
			analytics.GET("/summary", handlers.Analytics.Summary)
			analytics.GET("/grades", handlers.Analytics.Grades)
			analytics.GET("/subjects", handlers.Analytics.Subjects)
			analytics.GET("/trend", handlers.Analytics.Trend)
			analytics.POST("/sgpa", handlers.Analytics.PreviewSGPA)
		}
	}

	// ─── 3. WebSocket Group (Query Token Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/extractions/:job_id/stream", handlers.WS.JobStream)
	}

	return router
}
