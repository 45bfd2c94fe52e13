package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid client secret")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrClientNotAllowed   = errors.New("client is not allowed to use this endpoint")
)
