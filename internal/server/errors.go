package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	billdomain "github.com/techverse/billdesk/internal/bill/domain"
	"github.com/techverse/billdesk/internal/company"
)

var (
	ErrNotFound        = errors.New("not_found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrTooManyRequests = errors.New("too_many_requests")
)

// ValidationError is a request-shaped failure with a field hint.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string { return e.Code }

func newValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

func invalidRequestError() *ValidationError {
	return newValidationError("", "invalid_request", "malformed request body")
}

// AbortWithError maps domain errors onto HTTP responses. Validation
// failures carry their snake_case code; everything unexpected is a
// plain 500 so internals never leak.
func AbortWithError(c *gin.Context, err error) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validation})
		return
	}

	switch {
	case isBillValidationError(err), isCompanyValidationError(err):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": err.Error()}})
	case errors.Is(err, billdomain.ErrBillNotFound), errors.Is(err, ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "not_found"}})
	case errors.Is(err, ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"code": "unauthorized"}})
	case errors.Is(err, ErrTooManyRequests):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": gin.H{"code": "too_many_requests"}})
	case errors.Is(err, billdomain.ErrPersistenceFailed):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "persistence_failed"}})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": gin.H{"code": "internal_error"}})
	}
}

func isBillValidationError(err error) bool {
	switch {
	case errors.Is(err, billdomain.ErrInvalidCustomerName),
		errors.Is(err, billdomain.ErrInvalidItemDescription),
		errors.Is(err, billdomain.ErrInvalidItemPrice),
		errors.Is(err, billdomain.ErrMissingItems),
		errors.Is(err, billdomain.ErrInvalidInvoiceNumber),
		errors.Is(err, billdomain.ErrInvalidDate),
		errors.Is(err, billdomain.ErrTotalMismatch),
		errors.Is(err, billdomain.ErrInvalidBillID):
		return true
	default:
		return false
	}
}

func isCompanyValidationError(err error) bool {
	switch {
	case errors.Is(err, company.ErrInvalidName),
		errors.Is(err, company.ErrInvalidPhone),
		errors.Is(err, company.ErrInvalidEmail):
		return true
	default:
		return false
	}
}
