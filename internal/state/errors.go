// internal/state/errors.go
package state

import "errors"

// Sentinel errors for store operations. Callers match them with errors.Is.
var (
	// ErrNotFound reports that a session id is absent from storage.
	ErrNotFound = errors.New("session not found")
	// ErrKeyNotFound reports that a storage key does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrStorage wraps underlying I/O failures.
	ErrStorage = errors.New("storage failure")
	// ErrDecode reports a malformed persisted or imported document.
	ErrDecode = errors.New("decode failed")
	// ErrInvalid reports input outside the accepted domain.
	ErrInvalid = errors.New("invalid input")
)
