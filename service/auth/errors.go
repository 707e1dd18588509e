package auth

import (
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("no active account found with the given credentials")
	ErrInvalidToken       = errors.New("token is invalid or expired")
	ErrWrongTokenType     = errors.New("token has wrong type")
	ErrMissingSecret      = errors.New("token secret must not be empty")
	ErrHashingFailed      = errors.New("hashing the password failed")
)

// IsAuthenticationError reports whether err means the caller could not be authenticated.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrWrongTokenType)
}
