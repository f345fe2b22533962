// Package crypto provides the cryptographic primitives for PairLink
// pairing and session security: P-256 point and key handling, ECDH key
// agreement, session key derivation, and the AES-GCM session cipher.
package crypto

import (
	"crypto/sha256"
	"hash"
)

// SHA-256 output sizes.
const (
	// SHA256LenBytes is the SHA-256 output length in bytes.
	SHA256LenBytes = 32
)

// SHA256 computes the SHA-256 cryptographic hash of a message.
func SHA256(message []byte) [SHA256LenBytes]byte {
	return sha256.Sum256(message)
}

// SHA256Slice computes the SHA-256 hash and returns it as a slice.
func SHA256Slice(message []byte) []byte {
	h := sha256.Sum256(message)
	return h[:]
}

// NewSHA256 returns a hash.Hash for computing SHA-256 digests
// incrementally, for hashing data that arrives in pieces.
func NewSHA256() hash.Hash {
	return sha256.New()
}
