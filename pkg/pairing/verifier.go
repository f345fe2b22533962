package pairing

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/pairlink-protocol/pairlink-go/pkg/crypto"
)

// Strategy selects how the verifier point L is constructed from w1.
//
// The two strategies exist for protocol-version compatibility. Their
// outputs are NOT interchangeable: StrategyKeyPair encodes L without the
// uncompressed-form tag byte, StrategyScalarMult with it. Mixing
// strategies between the pairing side and the verification side is a
// protocol bug, not a compatible choice.
type Strategy int

const (
	// StrategyKeyPair derives an EC key pair whose private scalar is w1
	// and takes the public point's raw coordinates (X || Y, 64 bytes,
	// no tag byte) as L.
	StrategyKeyPair Strategy = iota + 1

	// StrategyScalarMult computes L = w1 * G directly and encodes it in
	// uncompressed form (0x04 || X || Y, 65 bytes).
	StrategyScalarMult
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyKeyPair:
		return "keypair"
	case StrategyScalarMult:
		return "scalarmult"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Verifier is the publicly shareable pairing verifier record.
//
// W0 must be treated as secret equivalent to the password; L and Salt are
// not secret. The record is exchanged with the peer that later proves
// password possession.
type Verifier struct {
	// W0 is the verifier secret scalar, lowercase hex, fixed 64-char
	// width matching the P-256 scalar size.
	W0 string `cbor:"w0"`

	// L is the verifier point, lowercase hex. 130 chars (tagged) for
	// StrategyScalarMult, 128 chars (raw X || Y) for StrategyKeyPair.
	L string `cbor:"l"`

	// Salt is the plaintext salt the scalars were derived with.
	Salt []byte `cbor:"salt"`

	// Strategy records which construction produced L, so the verifying
	// side uses the matching interpretation.
	Strategy Strategy `cbor:"strategy"`
}

// BuildVerifier constructs the verifier record from the derived scalars.
//
// w0 and w1 must lie in [1, n-1]; DeriveScalars guarantees this, but the
// range is checked again here and a violation reported as ErrDerivation
// rather than silently retried.
func BuildVerifier(w0, w1 *big.Int, salt []byte, strategy Strategy) (*Verifier, error) {
	if err := checkScalar(w0); err != nil {
		return nil, fmt.Errorf("w0: %w", err)
	}
	if err := checkScalar(w1); err != nil {
		return nil, fmt.Errorf("w1: %w", err)
	}

	var encodedL []byte
	switch strategy {
	case StrategyKeyPair:
		kp, err := crypto.KeyPairFromScalar(w1)
		if err != nil {
			return nil, fmt.Errorf("%w: key pair construction: %v", ErrDerivation, err)
		}
		// Strip the 0x04 tag: this strategy encodes raw X || Y.
		encodedL = kp.PublicKey()[1:]

	case StrategyScalarMult:
		x, y := crypto.ScalarBaseMult(w1)
		encodedL = crypto.EncodePoint(x, y)

	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidStrategy, int(strategy))
	}

	w0Buf := make([]byte, crypto.P256ScalarSizeBytes)
	w0.FillBytes(w0Buf)
	defer Wipe(w0Buf)

	return &Verifier{
		W0:       hex.EncodeToString(w0Buf),
		L:        hex.EncodeToString(encodedL),
		Salt:     append([]byte(nil), salt...),
		Strategy: strategy,
	}, nil
}

// Point returns L decoded to affine coordinates, applying the encoding
// rules of the record's strategy.
func (v *Verifier) Point() (x, y *big.Int, err error) {
	raw, err := hex.DecodeString(v.L)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: L is not valid hex", ErrInvalidRecord)
	}

	switch v.Strategy {
	case StrategyKeyPair:
		if len(raw) != crypto.P256RawPointSizeBytes {
			return nil, nil, fmt.Errorf("%w: L must be %d bytes for %s, got %d",
				ErrInvalidRecord, crypto.P256RawPointSizeBytes, v.Strategy, len(raw))
		}
		tagged := append([]byte{0x04}, raw...)
		return crypto.DecodePoint(tagged)

	case StrategyScalarMult:
		if len(raw) != crypto.P256PublicKeySizeBytes {
			return nil, nil, fmt.Errorf("%w: L must be %d bytes for %s, got %d",
				ErrInvalidRecord, crypto.P256PublicKeySizeBytes, v.Strategy, len(raw))
		}
		return crypto.DecodePoint(raw)

	default:
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidStrategy, int(v.Strategy))
	}
}

// W0Scalar returns the w0 secret as a big integer. Treat the result as
// secret material; wipe derived buffers after use.
func (v *Verifier) W0Scalar() (*big.Int, error) {
	raw, err := hex.DecodeString(v.W0)
	if err != nil || len(raw) != crypto.P256ScalarSizeBytes {
		return nil, fmt.Errorf("%w: w0 must be %d hex-encoded bytes",
			ErrInvalidRecord, crypto.P256ScalarSizeBytes)
	}
	return new(big.Int).SetBytes(raw), nil
}

// checkScalar verifies 1 <= k <= n-1.
func checkScalar(k *big.Int) error {
	if k == nil || k.Sign() <= 0 || k.Cmp(crypto.P256Order()) >= 0 {
		return ErrDerivation
	}
	return nil
}
