package token

import "errors"

var (
	ErrUnknownToken  = errors.New("token not found")
	ErrInvalidAmount = errors.New("invalid amount")
)
