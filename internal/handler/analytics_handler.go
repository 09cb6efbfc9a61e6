package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/edutrack-backend/internal/middleware"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/response"
	"github.com/stemsi/edutrack-backend/internal/service"
	"github.com/stemsi/edutrack-backend/internal/validator"
)

// AnalyticsHandler serves dashboard statistics.
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Summary godoc
// GET /api/v1/analytics/summary
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.analyticsService.Summary(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// Grades godoc
// GET /api/v1/analytics/grades
func (h *AnalyticsHandler) Grades(c *gin.Context) {
	grades, err := h.analyticsService.Grades(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"grades": grades})
}

// Subjects godoc
// GET /api/v1/analytics/subjects
func (h *AnalyticsHandler) Subjects(c *gin.Context) {
	ranking, err := h.analyticsService.Subjects(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, ranking)
}

// Trend godoc
// GET /api/v1/analytics/trend
func (h *AnalyticsHandler) Trend(c *gin.Context) {
	trend, err := h.analyticsService.Trend(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"trend": trend})
}

// PreviewSGPA godoc
// POST /api/v1/analytics/sgpa
// Computes the SGPA of subjects still under review.
func (h *AnalyticsHandler) PreviewSGPA(c *gin.Context) {
	var req model.SGPAPreviewRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}
	response.Success(c, http.StatusOK, h.analyticsService.PreviewSGPA(req.Subjects))
}
