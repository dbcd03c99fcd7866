package api

import (
	"errors"
	"net/http"

	service "github.com/okian/wxgrid/internal/app"
	"github.com/okian/wxgrid/internal/domain/failure"
)

// Sentinel kinds for API errors.
var (
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrPayloadTooLarge  = errors.New("payload too large")
)

// statusFor maps an error to its HTTP status and response code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge, "payload_too_large"
	case errors.Is(err, ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed, "method_not_allowed"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, service.ErrBusy):
		return http.StatusServiceUnavailable, "busy"
	}

	switch failure.KindOf(err) {
	case failure.ErrSchema:
		return http.StatusUnprocessableEntity, failure.Label(err)
	case failure.ErrInvalidInput, failure.ErrUnsupported:
		return http.StatusBadRequest, failure.Label(err)
	default:
		return http.StatusInternalServerError, failure.Label(err)
	}
}
