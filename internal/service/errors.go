package service

import "errors"

// Sentinel errors returned by the services.  Callers wrap them with detail
// using fmt.Errorf("...: %w") and match with errors.Is; handlers map each to
// an HTTP status.
var (
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrInvalidAction = errors.New("invalid action")
	ErrInvalidFormat = errors.New("invalid qr format")
)
