package handler

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/showroom/pkg/binder"
)

var ErrNilResponse = errors.New("handler returned nil response")

// HTTPError is an error with a status code and a stable machine-readable code.
type HTTPError struct {
	Status int
	Code   string
}

func (e HTTPError) Error() string {
	return e.Code
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(status int, code string) HTTPError {
	return HTTPError{Status: status, Code: code}
}

var (
	ErrBadRequest            = HTTPError{Status: http.StatusBadRequest, Code: "BAD_REQUEST"}
	ErrUnauthorized          = HTTPError{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED"}
	ErrForbidden             = HTTPError{Status: http.StatusForbidden, Code: "FORBIDDEN"}
	ErrNotFound              = HTTPError{Status: http.StatusNotFound, Code: "NOT_FOUND"}
	ErrConflict              = HTTPError{Status: http.StatusConflict, Code: "CONFLICT"}
	ErrRequestEntityTooLarge = HTTPError{Status: http.StatusRequestEntityTooLarge, Code: "REQUEST_TOO_LARGE"}
	ErrUnsupportedMediaType  = HTTPError{Status: http.StatusUnsupportedMediaType, Code: "UNSUPPORTED_MEDIA_TYPE"}
	ErrUnprocessableEntity   = HTTPError{Status: http.StatusUnprocessableEntity, Code: "VALIDATION_FAILED"}
	ErrInternalServerError   = HTTPError{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR"}
	ErrServiceUnavailable    = HTTPError{Status: http.StatusServiceUnavailable, Code: "SERVICE_UNAVAILABLE"}
)

// PayloadError is implemented by errors that carry their own response body.
// The payload must include an "error" key.
type PayloadError interface {
	error
	StatusCode() int
	Payload() map[string]any
}

func errorsJoinBadRequest(err error) error {
	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return errors.Join(ErrUnsupportedMediaType, err)
	case errors.Is(err, binder.ErrRequestTooLarge):
		return errors.Join(ErrRequestEntityTooLarge, err)
	default:
		var httpErr HTTPError
		if errors.As(err, &httpErr) {
			return err
		}
		return errors.Join(ErrBadRequest, err)
	}
}
