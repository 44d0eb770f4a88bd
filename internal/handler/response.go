package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dispatch/internal/repository"
	"dispatch/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrServiceNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidRiderID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidPoints),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrDistanceTooFar),
		errors.Is(err, service.ErrCashNotAccepted):
		return http.StatusBadRequest

	// The rider cannot fund the trip
	case errors.Is(err, service.ErrInsufficientCredit):
		return http.StatusPaymentRequired

	// Conflict errors - lost races and undocumented transitions
	case errors.Is(err, service.ErrAlreadyTaken),
		errors.Is(err, service.ErrTransitionNotAllowed),
		errors.Is(err, service.ErrCancellationNotAllowed),
		errors.Is(err, service.ErrNotWaitingForReview):
		return http.StatusConflict

	// Forbidden/Business rule errors
	case errors.Is(err, service.ErrNotAssignedDriver):
		return http.StatusForbidden

	// Service unavailable
	case errors.Is(err, service.ErrRegionUnsupported),
		errors.Is(err, service.ErrNoServiceInRegion):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
