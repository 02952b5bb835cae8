package middlewares

import (
	"SurgiFlow/apperrors"
	"SurgiFlow/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HttpError logs an error and writes an HTTP error response to the client.
func HttpError(c *gin.Context, log *logger.Logger, message string, status int, err error) {
	if status >= http.StatusInternalServerError {
		log.Error("request failed", "status", status, "path", c.FullPath(), "error", err)
	} else {
		log.Debug("request rejected", "status", status, "path", c.FullPath(), "error", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// StatusFor maps an application error kind to an HTTP status.
func StatusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindBadRequest, apperrors.KindTemplateMissing, apperrors.KindBadTemplate:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// RespondError writes err with the status that matches its kind.
func RespondError(c *gin.Context, log *logger.Logger, err error) {
	HttpError(c, log, apperrors.Message(err), StatusFor(err), err)
}
