// Package core holds the error taxonomy shared by the settlement packages.
// Every failure an operation can report wraps exactly one of these sentinels,
// so hosts can classify outcomes with errors.Is without string matching.
package core

import "errors"

var (
	// ErrValidation covers malformed input: non-positive amounts or prices,
	// unknown sides, identical maker/taker ids.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when the caller is not allowed to act on
	// the target, e.g. cancelling someone else's order.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrState covers operations against records in the wrong state: missing
	// orders, terminal orders, same-side execution, violated price limits.
	ErrState = errors.New("invalid state")

	// ErrInsufficientFunds is returned when a balance or an order's remaining
	// lock cannot cover the requested amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
)
