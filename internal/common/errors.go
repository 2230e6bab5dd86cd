package common

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated    = errors.New("not authenticated")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation failed")
	ErrUpstream           = errors.New("model request failed")
	ErrConfiguration      = errors.New("model credentials are missing")
)

// Numeric codes carried in the error envelope.
const (
	CodeValidation         = 10001
	CodeDuplicateUsername  = 10003
	CodeUnauthenticated    = 40101
	CodeInvalidCredentials = 40102
	CodeNotFound           = 40401
	CodeInternal           = 50001
	CodeUpstream           = 50002
	CodeConfiguration      = 50003
)

// StatusOf returns the HTTP status and envelope code for err.
func StatusOf(err error) (int, int) {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, ErrDuplicateUsername):
		return http.StatusBadRequest, CodeDuplicateUsername
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, CodeUnauthenticated
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized, CodeInvalidCredentials
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, ErrConfiguration):
		return http.StatusInternalServerError, CodeConfiguration
	case errors.Is(err, ErrUpstream):
		return http.StatusInternalServerError, CodeUpstream
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}
