package pairing

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Character sets for generated pairing material.
const (
	passwordCharset = "0123456789"
	saltCharset     = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GeneratePassword generates a random pairing password of the given
// length, drawn from the digit charset.
//
// The password is secret material: never log it, and wipe the buffer once
// the verifier has been built.
func GeneratePassword(length int) ([]byte, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: password length %d", ErrInvalidLength, length)
	}
	return randomString(length, passwordCharset)
}

// GenerateSalt generates a random alphanumeric salt of the given length.
//
// Salts are not secret, but a salt must never be reused across unrelated
// passwords; generate a fresh one per pairing.
func GenerateSalt(length int) ([]byte, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: salt length %d", ErrInvalidLength, length)
	}
	return randomString(length, saltCharset)
}

// randomString draws length characters uniformly from charset using
// crypto/rand.
func randomString(length int, charset string) ([]byte, error) {
	out := make([]byte, length)
	max := big.NewInt(int64(len(charset)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return nil, fmt.Errorf("failed to read randomness: %w", err)
		}
		out[i] = charset[idx.Int64()]
	}
	return out, nil
}

// Wipe overwrites a byte buffer with zeros. Use it to deterministically
// clear passwords, stretched output, and other secret buffers instead of
// waiting for garbage collection.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// WipeScalar clears a big integer holding secret material. This is
// best-effort hygiene: big.Int may have left intermediate copies behind,
// but the primary buffer is overwritten.
func WipeScalar(k *big.Int) {
	if k != nil {
		k.SetInt64(0)
	}
}
