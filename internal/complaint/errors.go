package complaint

import "errors"

// Error taxonomy surfaced to callers. Handlers map these onto HTTP status
// codes; anything else is an internal error reported generically.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("complaint not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
)
