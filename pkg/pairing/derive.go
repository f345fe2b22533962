// Package pairing implements PairLink pairing-password setup: stretching a
// low-entropy password into two high-entropy P-256 scalars and turning
// them into a publicly shareable verifier.
//
// The derivation is fully deterministic: the same (password, salt, cost
// parameters) always yields the same scalars and the same verifier. All
// randomness lives in password and salt generation, which happens once at
// the pairing-setup boundary.
package pairing

import (
	"fmt"
	"math/big"

	"golang.org/x/crypto/scrypt"

	"github.com/pairlink-protocol/pairlink-go/pkg/crypto"
)

// CostParams holds the scrypt cost parameters for password stretching.
// They are supplied by external configuration and validated before any
// stretching work begins.
type CostParams struct {
	// CPUCost is the scrypt N parameter. Must be a power of two > 1.
	CPUCost int

	// BlockSize is the scrypt r parameter.
	BlockSize int

	// Parallelism is the scrypt p parameter.
	Parallelism int

	// OutputLen is the stretched output length in bytes. Must be even;
	// the output is split into two equal halves.
	OutputLen int
}

// DefaultCostParams are the production stretching parameters.
var DefaultCostParams = CostParams{
	CPUCost:     32768,
	BlockSize:   8,
	Parallelism: 1,
	OutputLen:   64,
}

// Validate checks the cost parameters. Invalid parameters are rejected
// here, never silently clamped.
func (p CostParams) Validate() error {
	if p.CPUCost < 2 || p.CPUCost&(p.CPUCost-1) != 0 {
		return fmt.Errorf("%w: CPU cost %d must be a power of two greater than one",
			ErrInvalidCostParams, p.CPUCost)
	}
	if p.BlockSize < 1 {
		return fmt.Errorf("%w: block size %d must be positive", ErrInvalidCostParams, p.BlockSize)
	}
	if p.Parallelism < 1 {
		return fmt.Errorf("%w: parallelism %d must be positive", ErrInvalidCostParams, p.Parallelism)
	}
	if p.OutputLen < 2 || p.OutputLen%2 != 0 {
		return fmt.Errorf("%w: output length %d must be even and positive",
			ErrInvalidCostParams, p.OutputLen)
	}
	return nil
}

// DeriveScalars stretches (password, salt) into the two pairing scalars
// (w0, w1).
//
// The stretched output is split into two equal halves, each interpreted
// as a big-endian unsigned integer and reduced modulo (n-1) plus one,
// where n is the P-256 group order. Both results therefore lie in
// [1, n-1] and are never zero.
//
// The stretching step is intentionally CPU- and memory-expensive; callers
// that need cancellation should wrap the call with their own timeout
// policy.
func DeriveScalars(password, salt []byte, params CostParams) (w0, w1 *big.Int, err error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}

	stretched, err := scrypt.Key(password, salt, params.CPUCost, params.BlockSize, params.Parallelism, params.OutputLen)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidCostParams, err)
	}
	defer Wipe(stretched)

	half := params.OutputLen / 2
	w0 = reduceToScalar(stretched[:half])
	w1 = reduceToScalar(stretched[half:])
	return w0, w1, nil
}

// reduceToScalar maps an arbitrary byte string into [1, n-1]:
// value mod (n-1), plus one.
func reduceToScalar(buf []byte) *big.Int {
	nMinusOne := new(big.Int).Sub(crypto.P256Order(), big.NewInt(1))
	v := new(big.Int).SetBytes(buf)
	v.Mod(v, nMinusOne)
	v.Add(v, big.NewInt(1))
	return v
}
