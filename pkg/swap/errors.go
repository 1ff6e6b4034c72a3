package swap

import "errors"

var (
	ErrNoQuote    = errors.New("no quote to execute")
	ErrNoSigner   = errors.New("no signer configured")
	ErrZeroAmount = errors.New("amount must be positive")
)
