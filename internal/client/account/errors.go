package account

import "errors"

// Account repository errors
var (
	// ErrNotFound indicates that the account, default user or token-matched session does not exist
	ErrNotFound = errors.New("account not found")

	// ErrDuplicate indicates an attempt to add an account key that already exists
	ErrDuplicate = errors.New("account already exists")

	// ErrInvalidAccount indicates malformed account info (empty identifier or tokens, bad expiry)
	ErrInvalidAccount = errors.New("invalid account info")
)
