package auth

import "errors"

var (
	// ErrEmailExists is returned when registering an already-registered email
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials is returned for a bad email/password pair
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned for a missing, malformed or expired JWT
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrUserNotFound is returned when a user id is unknown
	ErrUserNotFound = errors.New("user not found")
)
