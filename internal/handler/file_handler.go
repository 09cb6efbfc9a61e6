package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/edutrack-backend/internal/middleware"
	"github.com/stemsi/edutrack-backend/internal/response"
	"github.com/stemsi/edutrack-backend/internal/service"
)

// multipartOverhead is the room left for multipart framing and form fields
// on top of the file size limit.
const multipartOverhead = 1 << 20

// FileHandler handles marksheet file endpoints.
type FileHandler struct {
	fileService  *service.FileService
	maxFileBytes int64
}

// NewFileHandler creates a new FileHandler.
func NewFileHandler(fileService *service.FileService, maxFileBytes int64) *FileHandler {
	return &FileHandler{fileService: fileService, maxFileBytes: maxFileBytes}
}

// UploadFile godoc
// POST /api/v1/files
// Stores a PDF, JPG or PNG marksheet sent as multipart field "file".
func (h *FileHandler) UploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileBytes+multipartOverhead)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
			return
		}
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	if header.Size > h.maxFileBytes {
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		fail(c, fmt.Errorf("read upload: %w", err))
		return
	}

	stored, err := h.fileService.Upload(c.Request.Context(), middleware.UserID(c),
		header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, stored)
}

// ListFiles godoc
// GET /api/v1/files
func (h *FileHandler) ListFiles(c *gin.Context) {
	files, err := h.fileService.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"files": files})
}

// DownloadFile godoc
// GET /api/v1/files/:id
// Streams the stored payload with its original name.
func (h *FileHandler) DownloadFile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	file, data, err := h.fileService.Open(c.Request.Context(), middleware.UserID(c), id)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.Name}))
	c.Data(http.StatusOK, file.ContentType, data)
}

// DeleteFile godoc
// DELETE /api/v1/files/:id
func (h *FileHandler) DeleteFile(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), middleware.UserID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// Usage godoc
// GET /api/v1/files/usage
func (h *FileHandler) Usage(c *gin.Context) {
	usage, err := h.fileService.Usage(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, usage)
}
