package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnavailable        = errors.New("server unavailable")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("invalid input")
	ErrConflict           = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrServer             = errors.New("server error")

	// ErrSessionExpired is returned by the transport when a refresh after
	// a 401 fails. The local session has been cleared by then.
	ErrSessionExpired = errors.New("session expired")
)

// APIError is a non-2xx answer decoded from the server's error body.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error is the server's message with the status, or the status alone.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Status)
	}
	return fmt.Sprintf("%s (http %d)", e.Message, e.Status)
}

// Unwrap maps the status to one of the package sentinels.
func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest:
		return ErrValidation
	case e.Status == http.StatusUnauthorized && e.Code == "INVALID_CREDENTIALS":
		return ErrInvalidCredentials
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusForbidden:
		return ErrForbidden
	case e.Status == http.StatusNotFound:
		return ErrNotFound
	case e.Status == http.StatusConflict:
		return ErrConflict
	case e.Status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return nil
	}
}
