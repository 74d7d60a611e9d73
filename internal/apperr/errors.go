// Package apperr defines the error taxonomy surfaced at the engine
// boundary. Callers classify with the Is* helpers instead of string
// matching; everything wraps the underlying cause for %w chains.
package apperr

import "errors"

// NetworkError covers transport failures, timeouts and non-2xx responses
// from the remote news API.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}

func (e *NetworkError) Unwrap() error { return e.Err }

func NewNetwork(op string, err error) *NetworkError {
	return &NetworkError{Op: op, Err: err}
}

// DecodeError covers malformed JSON or an unexpected response shape.
// It is handled exactly like a NetworkError: reported, never fatal.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}

func (e *DecodeError) Unwrap() error { return e.Err }

func NewDecode(op string, err error) *DecodeError {
	return &DecodeError{Op: op, Err: err}
}

// ValidationError covers rejected input, e.g. an empty article ID where
// one is required.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// StorageError covers IO and serialization failures in the local store.
// Corrupt persisted data is NOT a StorageError: the store resolves that
// by treating the collection as empty.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}

func (e *StorageError) Unwrap() error { return e.Err }

func NewStorage(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func IsNetwork(err error) bool {
	var t *NetworkError
	return errors.As(err, &t)
}

func IsDecode(err error) bool {
	var t *DecodeError
	return errors.As(err, &t)
}

func IsValidation(err error) bool {
	var t *ValidationError
	return errors.As(err, &t)
}

func IsStorage(err error) bool {
	var t *StorageError
	return errors.As(err, &t)
}
