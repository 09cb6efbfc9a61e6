package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/edutrack-backend/internal/middleware"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/response"
	"github.com/stemsi/edutrack-backend/internal/service"
	"github.com/stemsi/edutrack-backend/internal/validator"
)

// SemesterHandler handles semester and subject endpoints.
type SemesterHandler struct {
	semesterService *service.SemesterService
	exportService   *service.ExportService
}

// NewSemesterHandler creates a new SemesterHandler.
func NewSemesterHandler(semesterService *service.SemesterService, exportService *service.ExportService) *SemesterHandler {
	return &SemesterHandler{semesterService: semesterService, exportService: exportService}
}

// ListSemesters godoc
// GET /api/v1/semesters?q=&student=&group=student
// Lists semesters in insertion order, or grouped by student name.
func (h *SemesterHandler) ListSemesters(c *gin.Context) {
	var filter model.SemesterFilter
	if fields := validator.BindQuery(c, &filter); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	semesters, err := h.semesterService.List(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		fail(c, err)
		return
	}

	if c.Query("group") == "student" {
		response.Success(c, http.StatusOK, gin.H{"groups": h.semesterService.GroupByStudent(semesters)})
		return
	}
	response.Success(c, http.StatusOK, gin.H{"semesters": semesters})
}

// CreateSemester godoc
// POST /api/v1/semesters
func (h *SemesterHandler) CreateSemester(c *gin.Context) {
	var req model.CreateSemesterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sem, err := h.semesterService.Create(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, sem)
}

// GetSemester godoc
// GET /api/v1/semesters/:id
func (h *SemesterHandler) GetSemester(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	sem, err := h.semesterService.Get(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sem)
}

// UpdateSemester godoc
// PUT /api/v1/semesters/:id
// Edits header fields; subjects are untouched.
func (h *SemesterHandler) UpdateSemester(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.UpdateSemesterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sem, err := h.semesterService.Update(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sem)
}

// DeleteSemester godoc
// DELETE /api/v1/semesters/:id
// Removes the semester and its source file.
func (h *SemesterHandler) DeleteSemester(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.semesterService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// ReplaceSubjects godoc
// PUT /api/v1/semesters/:id/subjects
func (h *SemesterHandler) ReplaceSubjects(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.ReplaceSubjectsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sem, err := h.semesterService.ReplaceSubjects(c.Request.Context(), middleware.UserID(c), id, req.Subjects)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sem)
}

// AddSubject godoc
// POST /api/v1/semesters/:id/subjects
func (h *SemesterHandler) AddSubject(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req model.SubjectInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sem, err := h.semesterService.AddSubject(c.Request.Context(), middleware.UserID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, sem)
}

// UpdateSubject godoc
// PUT /api/v1/semesters/:id/subjects/:subject_id
func (h *SemesterHandler) UpdateSubject(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	subjectID, ok := uuidParam(c, "subject_id")
	if !ok {
		return
	}

	var req model.SubjectInput
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sem, err := h.semesterService.UpdateSubject(c.Request.Context(), middleware.UserID(c), id, subjectID, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sem)
}

// RemoveSubject godoc
// DELETE /api/v1/semesters/:id/subjects/:subject_id
func (h *SemesterHandler) RemoveSubject(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	subjectID, ok := uuidParam(c, "subject_id")
	if !ok {
		return
	}

	sem, err := h.semesterService.RemoveSubject(c.Request.Context(), middleware.UserID(c), id, subjectID)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sem)
}

// ExportTranscript godoc
// GET /api/v1/semesters/export
// Downloads every semester as an .xlsx workbook.
func (h *SemesterHandler) ExportTranscript(c *gin.Context) {
	data, err := h.exportService.Transcript(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("transcript-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, service.TranscriptContentType, data)
}
