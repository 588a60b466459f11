package models

import "errors"

// Error kinds shared by the store, service and HTTP layers.
// Callers wrap them with fmt.Errorf("...: %w", Err...) and match with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("invalid or expired token")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)
