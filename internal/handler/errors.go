package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/queue-buddy/internal/domain"
	"github.com/prohmpiriya/queue-buddy/internal/metrics"
	"github.com/prohmpiriya/queue-buddy/pkg/response"
)

// Error codes
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeValidationError = "VALIDATION_ERROR"
	CodeServiceNotFound = "SERVICE_NOT_FOUND"
	CodeSessionNotFound = "SESSION_NOT_FOUND"
	CodeNoTicket        = "NO_TICKET"
	CodeInternalError   = "INTERNAL_ERROR"
)

// invalidRequest answers a binding failure
func invalidRequest(c *gin.Context, err error) {
	response.Error(c, http.StatusBadRequest, CodeInvalidRequest, "invalid request", err.Error())
}

// writeDomainError converts domain errors to HTTP responses
func writeDomainError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidServiceReference):
		response.Error(c, http.StatusNotFound, CodeServiceNotFound, err.Error(), "")
	case errors.Is(err, domain.ErrSessionNotFound):
		response.Error(c, http.StatusNotFound, CodeSessionNotFound, err.Error(), "")
	case errors.Is(err, domain.ErrNoActiveTicket):
		response.Error(c, http.StatusNotFound, CodeNoTicket, err.Error(), "")
	case domain.IsValidationError(err):
		response.Error(c, http.StatusBadRequest, CodeValidationError, err.Error(), "")
	default:
		metrics.RecordError("internal", operation)
		response.Error(c, http.StatusInternalServerError, CodeInternalError, "internal server error", "")
	}
}
