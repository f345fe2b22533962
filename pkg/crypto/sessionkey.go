// Session key derivation for PairLink secure channels.
//
// A raw ECDH shared secret is never used directly as a symmetric key. It
// is hashed together with both parties' public keys so that a key derived
// for one (sender, receiver) pair can never be confused with a key for any
// other pairing of the same secret.

package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// Session key layout constants.
const (
	// SessionKeySize is the size of the derived session key material.
	SessionKeySize = 32

	// SessionAESKeySize is the size of the AES-128 key portion.
	SessionAESKeySize = 16

	// SessionNonceSize is the size of the GCM nonce portion.
	SessionNonceSize = 12

	// sessionNonceOffset is where the nonce starts inside the key material.
	sessionNonceOffset = 16
)

// sessionKeyCounter is the fixed 4-byte counter bound into the derivation.
var sessionKeyCounter = [4]byte{0x00, 0x00, 0x00, 0x01}

// ErrInvalidSharedSecret indicates an empty or missing ECDH shared secret.
var ErrInvalidSharedSecret = errors.New("crypto: invalid shared secret")

// SessionKey is the 32-byte key block for one secure channel session.
//
// Bytes 0..15 are the AES-128 key, bytes 16..27 the GCM nonce. Because
// the nonce is fixed by the key material, a SessionKey must be used to
// seal at most one plaintext; deriving a fresh key per session/message is
// the caller's responsibility.
type SessionKey [SessionKeySize]byte

// DeriveSessionKey derives the session key block from an ECDH shared
// secret and the two parties' public keys.
//
// The derivation is:
//
//	SHA-256(sharedSecret || 0x00000001 || senderPublicKey || receiverPublicKey)
//
// where both public keys are in uncompressed form (65 bytes). The
// sender/receiver order is a fixed channel-level convention: both sides
// must pass the same key in the same role, or they derive different keys
// and decryption fails authentication.
func DeriveSessionKey(sharedSecret, senderPublicKey, receiverPublicKey []byte) (*SessionKey, error) {
	if len(sharedSecret) == 0 {
		return nil, ErrInvalidSharedSecret
	}
	if err := ValidatePublicKey(senderPublicKey); err != nil {
		return nil, fmt.Errorf("sender key: %w", err)
	}
	if err := ValidatePublicKey(receiverPublicKey); err != nil {
		return nil, fmt.Errorf("receiver key: %w", err)
	}

	h := sha256.New()
	h.Write(sharedSecret)
	h.Write(sessionKeyCounter[:])
	h.Write(senderPublicKey)
	h.Write(receiverPublicKey)

	var key SessionKey
	copy(key[:], h.Sum(nil))
	return &key, nil
}

// AESKey returns the AES-128 key portion (bytes 0..15).
// The returned slice aliases the key material; do not modify it.
func (k *SessionKey) AESKey() []byte {
	return k[:SessionAESKeySize]
}

// Nonce returns the GCM nonce portion (bytes 16..27).
// The returned slice aliases the key material; do not modify it.
func (k *SessionKey) Nonce() []byte {
	return k[sessionNonceOffset : sessionNonceOffset+SessionNonceSize]
}

// Wipe overwrites the key material with zeros. The SessionKey must not be
// used afterwards.
func (k *SessionKey) Wipe() {
	for i := range k {
		k[i] = 0
	}
}
