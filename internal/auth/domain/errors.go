package domain

import "errors"

var (
	ErrMissingToken    = errors.New("missing authorization token")
	ErrInvalidToken    = errors.New("invalid token")
	ErrUnauthenticated = errors.New("user not authenticated")
)
