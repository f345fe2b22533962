package pairing

import "errors"

// Pairing setup errors.
var (
	// ErrInvalidCostParams indicates invalid key-stretching parameters.
	// Parameters are rejected before any stretching work begins.
	ErrInvalidCostParams = errors.New("pairing: invalid cost parameters")

	// ErrInvalidLength indicates an invalid password or salt length.
	ErrInvalidLength = errors.New("pairing: invalid length")

	// ErrDerivation indicates an internal invariant violation during
	// scalar or point derivation. Given in-range inputs this is
	// unreachable, but it is surfaced rather than retried: a silent
	// retry would break determinism.
	ErrDerivation = errors.New("pairing: derivation invariant violated")

	// ErrInvalidStrategy indicates an unknown verifier construction
	// strategy.
	ErrInvalidStrategy = errors.New("pairing: unknown verifier strategy")

	// ErrInvalidRecord indicates a malformed verifier record.
	ErrInvalidRecord = errors.New("pairing: invalid verifier record")
)
