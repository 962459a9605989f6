package service

import "errors"

// Error taxonomy shared by every service. Business failures wrap one of these
// sentinels with %w; handlers translate them with errors.Is into 4xx
// responses. Anything else surfaces as a 500.
var (
	// ErrValidation marks malformed or out-of-bound input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks an attempt to create an edge that already exists.
	ErrConflict = errors.New("already exists")
	// ErrNotFound marks an unknown id, code, or missing edge.
	ErrNotFound = errors.New("not found")
	// ErrPermission marks a caller mutating a resource they do not own.
	ErrPermission = errors.New("permission denied")
)
