// Package errs defines the run-wide error taxonomy as sentinel values
// usable with errors.Is. Callers wrap them with plain
// fmt.Errorf("...: %w", err) rather than a third-party errors library.
package errs

import "errors"

var (
	// ErrConfig marks invalid configuration; fatal to the run.
	ErrConfig = errors.New("config error")

	// ErrValidation marks an instruction that violates a structural
	// invariant (asset mismatch in a bracket, zero size, ...). The
	// offending instruction is rejected; the run continues.
	ErrValidation = errors.New("validation error")

	// ErrInsufficientBuyingPower is handled locally by rejecting the
	// order; it never propagates out of the broker.
	ErrInsufficientBuyingPower = errors.New("insufficient buying power")

	// ErrUnknownRate marks an exchange-rate conversion failure; it
	// surfaces as a run failure.
	ErrUnknownRate = errors.New("unknown exchange rate")

	// ErrClosedChannel is expected at end-of-feed; swallowed by the
	// kernel.
	ErrClosedChannel = errors.New("channel closed")
)
