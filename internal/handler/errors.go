package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stemsi/edutrack-backend/internal/response"
	"github.com/stemsi/edutrack-backend/internal/service"
)

// serviceErrors maps service sentinels to their HTTP form.
var serviceErrors = []struct {
	err    error
	status int
	code   response.ErrCode
}{
	{service.ErrInvalidCredentials, http.StatusUnauthorized, response.ErrInvalidCredentials},
	{service.ErrEmailTaken, http.StatusConflict, response.ErrEmailTaken},
	{service.ErrSemesterNotFound, http.StatusNotFound, response.ErrSemesterNotFound},
	{service.ErrSubjectNotFound, http.StatusNotFound, response.ErrSubjectNotFound},
	{service.ErrUnknownGrade, http.StatusBadRequest, response.ErrUnknownGrade},
	{service.ErrInvalidCredits, http.StatusBadRequest, response.ErrInvalidCredits},
	{service.ErrInvalidSubject, http.StatusBadRequest, response.ErrInvalidSubject},
	{service.ErrFileNotFound, http.StatusNotFound, response.ErrFileNotFound},
	{service.ErrEmptyFile, http.StatusBadRequest, response.ErrFileRequired},
	{service.ErrUnsupportedFileType, http.StatusUnsupportedMediaType, response.ErrUnsupportedFile},
	{service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, response.ErrFileTooLarge},
	{service.ErrStorageQuotaExceeded, http.StatusRequestEntityTooLarge, response.ErrQuotaExceeded},
	{service.ErrJobNotFound, http.StatusNotFound, response.ErrJobNotFound},
	{service.ErrRecognitionDisabled, http.StatusServiceUnavailable, response.ErrRecognitionDisabled},
}

// fail writes the response for a service error. Unknown errors are logged
// and reported as internal.
func fail(c *gin.Context, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			response.Fail(c, m.status, m.code)
			return
		}
	}
	response.Logger(c).Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
}

// uuidParam returns the named path parameter when it is a UUID. Otherwise
// it writes an INVALID_ID response and reports false.
func uuidParam(c *gin.Context, name string) (string, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return "", false
	}
	return id.String(), true
}
