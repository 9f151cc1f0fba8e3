package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found, or is
// inactive where the operation requires an active one.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is in a state that does not allow the operation.
var ErrConflict = errors.New("resource state conflict")

// ErrForbidden indicates that the actor is not authorized for the action.
var ErrForbidden = errors.New("action forbidden")

// ErrConcurrency indicates a lock wait on an account row exceeded the configured timeout.
var ErrConcurrency = errors.New("concurrent access timeout")

// ErrInternal indicates an unexpected, non-recoverable failure (e.g. lost store connection).
var ErrInternal = errors.New("internal error")
