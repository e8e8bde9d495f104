package interfaces

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"hiring-pipeline/domain"
)

// httpStatus maps pipeline errors onto response codes.
func httpStatus(err error) int {
	var (
		validationErr *domain.ValidationError
		stateErr      *domain.InvalidStateError
		extractionErr *domain.ExtractionError
		evaluationErr *domain.EvaluationError
	)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &stateErr):
		return http.StatusConflict
	case errors.As(err, &extractionErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &evaluationErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error response for a pipeline error. Internal failures
// are logged with detail but answered with a generic body.
func (h *HTTPHandler) fail(c *gin.Context, err error) {
	status := httpStatus(err)
	if status == http.StatusInternalServerError {
		h.Log.Error("request failed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
