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

// ExtractionHandler handles marksheet extraction endpoints.
type ExtractionHandler struct {
	extractionService *service.ExtractionService
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(extractionService *service.ExtractionService) *ExtractionHandler {
	return &ExtractionHandler{extractionService: extractionService}
}

// ExtractText godoc
// POST /api/v1/extractions/text
// Runs extraction over text recognized on the client. A rejected outcome
// is still a 200: rejection is a result, not an error.
func (h *ExtractionHandler) ExtractText(c *gin.Context) {
	var req model.ExtractTextRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	response.Success(c, http.StatusOK, h.extractionService.ExtractText(req.Text, req.Confidence))
}

// CreateJob godoc
// POST /api/v1/extractions
// Queues recognition of an uploaded file. Progress is polled on
// GET /api/v1/extractions/:job_id or streamed over WebSocket.
func (h *ExtractionHandler) CreateJob(c *gin.Context) {
	var req model.CreateExtractionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	job, err := h.extractionService.CreateJob(c.Request.Context(), middleware.UserID(c), req.FileID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, job)
}

// GetJob godoc
// GET /api/v1/extractions/:job_id
func (h *ExtractionHandler) GetJob(c *gin.Context) {
	jobID, ok := uuidParam(c, "job_id")
	if !ok {
		return
	}

	job, err := h.extractionService.GetJob(c.Request.Context(), middleware.UserID(c), jobID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, job)
}
