package authtoken

import "errors"

var (
	ErrMissingSigningKey = errors.New("authtoken: missing signing key")
	ErrInvalidToken      = errors.New("authtoken: invalid token")
	ErrInvalidSignature  = errors.New("authtoken: invalid signature")
	ErrTokenExpired      = errors.New("authtoken: token expired")
	ErrInvalidSubject    = errors.New("authtoken: subject is not a valid user ID")
)
