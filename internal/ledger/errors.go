package ledger

import "errors"

// Sentinel errors for the caller-facing taxonomy. Store failures are
// not sentinels; they are wrapped with %w and propagate as-is.
var (
	// ErrInvalidKey means the account key is not a positive integer.
	ErrInvalidKey = errors.New("account key must be a positive integer")

	// ErrInvalidAmount means the amount is non-positive, exceeds the
	// per-operation credit cap, or is not a multiple of the debit unit.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrBalanceLimitExceeded means a credit would push the balance
	// above MaxBalance.
	ErrBalanceLimitExceeded = errors.New("balance limit exceeded")

	// ErrInsufficientFunds means a debit exceeds the current balance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownKind means the operation kind is neither CREDIT nor DEBIT.
	ErrUnknownKind = errors.New("unknown operation kind")
)
