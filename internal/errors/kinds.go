package errors

import (
	"errors"
	"net/http"
)

// Core error kinds. Services wrap these with %w so transport code can map
// them to status codes with errors.Is.
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrIneligibleVehicle = errors.New("vehicle is not in the qualifying set")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid reservation state transition")
	ErrLookupUnavailable = errors.New("destination lookup unavailable")
	ErrNotFound          = errors.New("not found")
)

// StatusCode maps an error to the HTTP status code the API should answer with.
func StatusCode(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrIneligibleVehicle):
		return http.StatusConflict
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrLookupUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
