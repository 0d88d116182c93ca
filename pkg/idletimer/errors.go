package idletimer

import "errors"

var (
	ErrInvalidTimeout      = errors.New("idletimer: timeout must be positive")
	ErrInvalidWarning      = errors.New("idletimer: warning window must be non-negative and shorter than the timeout")
	ErrInvalidTickInterval = errors.New("idletimer: tick interval must be positive")
)
