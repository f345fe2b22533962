package crypto

import (
	"crypto/ecdh"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
)

// P-256 size constants. All pairing and channel operations are fixed to
// the NIST P-256 (secp256r1) curve.
const (
	// P256ScalarSizeBytes is the size of a P-256 scalar / private key.
	P256ScalarSizeBytes = 32

	// P256CoordinateSizeBytes is the size of one affine coordinate.
	P256CoordinateSizeBytes = 32

	// P256PublicKeySizeBytes is the uncompressed public key size.
	// Format: 0x04 || X (32 bytes) || Y (32 bytes) = 65 bytes
	P256PublicKeySizeBytes = 65

	// P256RawPointSizeBytes is the size of a point encoded without the
	// uncompressed-form tag byte: X (32 bytes) || Y (32 bytes).
	P256RawPointSizeBytes = 64

	// uncompressedTag is the leading byte of an uncompressed point.
	uncompressedTag = 0x04
)

// Key material errors.
var (
	// ErrInvalidKey indicates malformed or off-curve key material.
	ErrInvalidKey = errors.New("crypto: invalid key material")

	// ErrInvalidScalar indicates a scalar outside the valid range [1, n-1].
	ErrInvalidScalar = errors.New("crypto: scalar out of range")
)

// p256 is the P-256 curve used for point arithmetic.
var p256 = elliptic.P256()

// P256Order returns the order n of the P-256 base-point subgroup.
// The returned value must not be modified by callers.
func P256Order() *big.Int {
	return p256.Params().N
}

// KeyPair holds a P-256 private scalar and its public point.
type KeyPair struct {
	private *ecdh.PrivateKey
}

// PublicKey returns the public key in uncompressed form (65 bytes).
// Format: 0x04 || X (32 bytes) || Y (32 bytes)
func (kp *KeyPair) PublicKey() []byte {
	return kp.private.PublicKey().Bytes()
}

// PrivateKey returns the private scalar as a 32-byte big-endian value.
// Callers holding ephemeral keys should wipe the returned buffer after use.
func (kp *KeyPair) PrivateKey() []byte {
	return kp.private.Bytes()
}

// GenerateKeyPair generates a fresh random P-256 key pair.
//
// Key pairs used for session key agreement are single-use: an ephemeral
// private key must not be reused across multiple ECDH operations. This is
// a caller discipline requirement and is not enforced here.
func GenerateKeyPair() (*KeyPair, error) {
	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key pair: %w", err)
	}
	return &KeyPair{private: priv}, nil
}

// KeyPairFromScalar constructs a key pair whose private key is exactly the
// given scalar. No randomness source is involved: the same scalar always
// yields the same key pair, which is what deterministic verifier
// derivation requires.
//
// The scalar must lie in [1, n-1] where n is the curve order.
func KeyPairFromScalar(k *big.Int) (*KeyPair, error) {
	if k == nil || k.Sign() <= 0 || k.Cmp(p256.Params().N) >= 0 {
		return nil, ErrInvalidScalar
	}

	buf := make([]byte, P256ScalarSizeBytes)
	k.FillBytes(buf)

	priv, err := ecdh.P256().NewPrivateKey(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScalar, err)
	}
	return &KeyPair{private: priv}, nil
}

// ECDH computes the Diffie-Hellman shared secret between our private key
// and the peer's public key.
//
// The peer key must be a 65-byte uncompressed point on P-256; off-curve
// points, the point at infinity, and malformed encodings are rejected
// with ErrInvalidKey before any computation.
//
// Returns the X-coordinate of the shared point as a 32-byte big-endian
// value, zero-padded to the coordinate width. The raw secret must never be
// used directly as a symmetric key; pass it through DeriveSessionKey.
func ECDH(kp *KeyPair, peerPublicKey []byte) ([]byte, error) {
	if err := ValidatePublicKey(peerPublicKey); err != nil {
		return nil, err
	}

	peer, err := ecdh.P256().NewPublicKey(peerPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	secret, err := kp.private.ECDH(peer)
	if err != nil {
		return nil, fmt.Errorf("%w: ECDH failed: %v", ErrInvalidKey, err)
	}
	return secret, nil
}

// ValidatePublicKey checks that a public key is a well-formed uncompressed
// encoding of a point on P-256.
func ValidatePublicKey(publicKey []byte) error {
	if len(publicKey) != P256PublicKeySizeBytes {
		return fmt.Errorf("%w: public key must be %d bytes, got %d",
			ErrInvalidKey, P256PublicKeySizeBytes, len(publicKey))
	}
	if publicKey[0] != uncompressedTag {
		return fmt.Errorf("%w: public key must be in uncompressed form (0x04 tag)", ErrInvalidKey)
	}

	x := new(big.Int).SetBytes(publicKey[1 : 1+P256CoordinateSizeBytes])
	y := new(big.Int).SetBytes(publicKey[1+P256CoordinateSizeBytes:])

	if x.Sign() == 0 && y.Sign() == 0 {
		return fmt.Errorf("%w: point at infinity", ErrInvalidKey)
	}
	if !p256.IsOnCurve(x, y) {
		return fmt.Errorf("%w: point is not on the P-256 curve", ErrInvalidKey)
	}
	return nil
}

// ScalarBaseMult computes k * G in affine coordinates, where G is the
// P-256 generator. The scalar is reduced to its 32-byte big-endian form
// before multiplication.
func ScalarBaseMult(k *big.Int) (x, y *big.Int) {
	buf := make([]byte, P256ScalarSizeBytes)
	k.FillBytes(buf)
	return p256.ScalarBaseMult(buf)
}

// EncodePoint encodes an affine point in uncompressed form:
// 0x04 || X || Y, each coordinate zero-padded to 32 bytes.
func EncodePoint(x, y *big.Int) []byte {
	out := make([]byte, P256PublicKeySizeBytes)
	out[0] = uncompressedTag
	x.FillBytes(out[1 : 1+P256CoordinateSizeBytes])
	y.FillBytes(out[1+P256CoordinateSizeBytes:])
	return out
}

// EncodePointRaw encodes an affine point without the tag byte:
// X || Y, each coordinate zero-padded to 32 bytes.
func EncodePointRaw(x, y *big.Int) []byte {
	out := make([]byte, P256RawPointSizeBytes)
	x.FillBytes(out[:P256CoordinateSizeBytes])
	y.FillBytes(out[P256CoordinateSizeBytes:])
	return out
}

// DecodePoint parses a 65-byte uncompressed point and verifies that it
// lies on the curve. Points parsed from untrusted input must go through
// this check before use.
func DecodePoint(data []byte) (x, y *big.Int, err error) {
	if err := ValidatePublicKey(data); err != nil {
		return nil, nil, err
	}
	x = new(big.Int).SetBytes(data[1 : 1+P256CoordinateSizeBytes])
	y = new(big.Int).SetBytes(data[1+P256CoordinateSizeBytes:])
	return x, y, nil
}
