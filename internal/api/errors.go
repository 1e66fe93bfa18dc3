package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medemi-triage-server/internal/domain"
	"github.com/medemi-triage-server/internal/middleware"
	"github.com/medemi-triage-server/internal/report"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  *domain.TriageError      `json:"error"`
	Fields []*domain.ValidationError `json:"fields,omitempty"`
}

// classify maps a service error onto an HTTP status and error code.
func classify(err error) (int, string, string) {
	var verrs domain.ValidationErrors
	var verr *domain.ValidationError

	switch {
	case errors.As(err, &verrs), errors.As(err, &verr):
		return http.StatusUnprocessableEntity, domain.ErrValidation, "Request failed validation"
	case errors.Is(err, domain.ErrEmptyNarrative):
		return http.StatusBadRequest, domain.ErrInvalidInput, domain.ErrEmptyNarrative.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.ErrNotFoundCode, "Resource not found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, domain.ErrStorage, "Resource already exists, retry shortly"
	case errors.Is(err, domain.ErrSessionComplete),
		errors.Is(err, domain.ErrNoPendingQuestion),
		errors.Is(err, domain.ErrInvalidStage):
		return http.StatusConflict, domain.ErrSessionState, "Operation not allowed in the current session stage"
	case errors.Is(err, report.ErrFontUnavailable):
		return http.StatusServiceUnavailable, domain.ErrUnavailable, "Report rendering is not available"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, domain.ErrUnavailable, "Request timed out"
	default:
		return http.StatusInternalServerError, domain.ErrInternalServer, "Internal server error"
	}
}

// respondError writes the error envelope. Internal errors are logged and
// their details withheld from the client.
func (s *Server) respondError(c *gin.Context, err error) {
	status, code, message := classify(err)
	requestID := middleware.GetCorrelationID(c)

	body := ErrorResponse{Error: domain.NewTriageError(code, message, "", requestID)}
	if status < http.StatusInternalServerError {
		body.Error.Details = err.Error()
	} else {
		s.logger.WithError(err).WithField("correlation_id", requestID).Error("Request failed")
	}

	var verrs domain.ValidationErrors
	var verr *domain.ValidationError
	if errors.As(err, &verrs) {
		body.Fields = verrs
	} else if errors.As(err, &verr) {
		body.Fields = []*domain.ValidationError{verr}
	}

	c.AbortWithStatusJSON(status, body)
}

// respondBadRequest reports an unparseable request body.
func (s *Server) respondBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
		Error: domain.NewTriageError(domain.ErrInvalidInput, "Invalid request body", err.Error(), middleware.GetCorrelationID(c)),
	})
}
