package auth

import "errors"

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidUserID   = errors.New("invalid user id")
	ErrInvalidRole     = errors.New("invalid role")
	ErrForbidden       = errors.New("insufficient role")
)
