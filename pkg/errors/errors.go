package locker_errors

import (
	"errors"
	"time"
)

// Common errors
var (
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrInvalidState  = errors.New("invalid state for requested transition")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrRateLimited   = errors.New("rate limited")

	// ErrDecryption is deliberately generic: wrong password and corrupt
	// ciphertext must be indistinguishable to the caller.
	ErrDecryption = errors.New("incorrect master password")
)

// NowPtr returns a pointer to current time
func NowPtr() *time.Time {
	now := time.Now()
	return &now
}
