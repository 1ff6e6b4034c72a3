package route

import "errors"

var (
	// ErrAllPathsFailed is returned when every candidate path query errored
	ErrAllPathsFailed = errors.New("all candidate paths failed")
	ErrInvalidAmount  = errors.New("amount in must be positive")
)
