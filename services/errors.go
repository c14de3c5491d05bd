package services

import (
	"github.com/pkg/errors"
)

// Error taxonomy for the triage subsystem. Validation and authorization
// errors are local and deterministic; ErrStoreUnavailable is the only
// retryable class.
var (
	ErrInvalidStatus    = errors.New("invalid status value")
	ErrTerminalState    = errors.New("issue is in a terminal state")
	ErrMissingField     = errors.New("department and zone are required")
	ErrUnauthorized     = errors.New("role lacks assignment capability")
	ErrNotFound         = errors.New("issue not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)
