// Package common defines shared constants and sentinel errors used across
// ClassKeeper components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Capture/save errors (bad input, rejected before any I/O).
	ErrValidation      = errors.New("validation error")
	ErrPayloadTooLarge = errors.New("payload too large")

	// Local persistence errors (disk exhaustion, corruption).
	ErrStorageFailure = errors.New("local storage failure")

	// Remote I/O errors (recoverable by retry on the next drain).
	ErrSyncFailure = errors.New("sync failure")

	// Identity errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
)
