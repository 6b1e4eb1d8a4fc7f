package server

import (
	"errors"
	"net/http"

	"github.com/esimov/jfda"
	"github.com/gofiber/fiber/v2"
)

// httpError is an error carrying the HTTP status it is reported with.
type httpError struct {
	Code int
	Err  error
}

func (e *httpError) Error() string {
	return e.Err.Error()
}

func (e *httpError) Unwrap() error {
	return e.Err
}

func newHTTPError(code int, msg string) error {
	return &httpError{Code: code, Err: errors.New(msg)}
}

var (
	errTooManyRequests = newHTTPError(http.StatusTooManyRequests, "too many requests")
	errMissingImage    = newHTTPError(http.StatusBadRequest, "missing image file")
)

// statusOf maps an error returned by a handler to its HTTP status code.
func statusOf(err error) int {
	var he *httpError
	if errors.As(err, &he) {
		return he.Code
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Code
	}

	switch {
	case errors.Is(err, jfda.ErrConfig):
		return http.StatusBadRequest
	case errors.Is(err, jfda.ErrDecode):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, jfda.ErrScoring):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
