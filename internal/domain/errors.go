package domain

import (
	"errors"
)

var (
	// ErrInvalidIdentifier signals a malformed story identifier, detected before any store access.
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrNotFound signals a well-formed identifier that matches no story.
	ErrNotFound = errors.New("not found")
	// ErrValidation signals a request field that violates the story schema.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidQuery signals an empty or oversized search query.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrStoreUnavailable signals that the backing database could not serve the operation.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrSearchUnavailable signals that a search (or an embedding needed by a write) could not be computed.
	ErrSearchUnavailable = errors.New("search unavailable")
	// ErrProviderUnavailable signals a terminal embedding provider failure.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")
	// ErrRateLimited signals a transient embedding provider rejection (HTTP 429).
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict signals that a record changed between read and guarded write.
	ErrConflict = errors.New("concurrent modification")

	// ErrOperationFailed is the uniform outcome of a failed mutation.
	ErrOperationFailed = errors.New("operation failed")
)

// OperationError is the client-facing failure of a story operation.
// Message is safe to show to callers; Err keeps the underlying cause for logs
// and for kind classification via errors.Is.
type OperationError struct {
	Op      string
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Message
	}
	return e.Op + ": " + e.Message + ": " + e.Err.Error()
}

// Unwrap exposes both the uniform ErrOperationFailed kind and the cause.
func (e *OperationError) Unwrap() []error {
	return []error{ErrOperationFailed, e.Err}
}

// NewOperationError wraps err as a failed operation with a human-readable message.
func NewOperationError(op, message string, err error) error {
	return &OperationError{Op: op, Message: message, Err: err}
}

// PublicMessage returns the message a client may see for err.
// Errors that carry no OperationError get a generic message.
func PublicMessage(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) && opErr.Message != "" {
		return opErr.Message
	}
	for _, s := range []error{
		ErrInvalidIdentifier, ErrNotFound, ErrValidation, ErrInvalidQuery,
		ErrSearchUnavailable, ErrStoreUnavailable,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}
