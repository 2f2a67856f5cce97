package auth

import "errors"

// Authentication and authorization failures. Handlers map each of these to a
// fixed status code and a generic message.
var (
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformed          = errors.New("malformed token")
	ErrInvalidSignature   = errors.New("invalid token signature")
	ErrExpired            = errors.New("token expired")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrForbiddenRole      = errors.New("forbidden for role")
)
