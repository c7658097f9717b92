package model

import "errors"

var (
	// ErrNotFound is returned when a requested resource or key does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the backend rejects the presented credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the backend refuses an authenticated request.
	ErrForbidden = errors.New("forbidden")
	// ErrNetwork is returned when no response was received from the backend.
	ErrNetwork = errors.New("network error")
	// ErrNoRefreshToken is returned when a refresh is requested without a stored refresh token.
	ErrNoRefreshToken = errors.New("no refresh token available")
	// ErrInvalidQuantity is returned when a cart quantity is below one.
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// IsAuthFailure reports whether err means the stored credentials are no longer accepted.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
