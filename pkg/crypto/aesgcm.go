// AES-128-GCM session cipher for PairLink secure channels.
//
// The cipher is bound to a derived SessionKey: the AES key and the GCM
// nonce both come from the key block, so there is no per-message nonce
// input. That makes encryption deterministic, and it is why a session key
// must seal at most one plaintext.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

// AES-GCM parameters.
const (
	// GCMTagSize is the authentication tag size in bytes (128-bit tag).
	GCMTagSize = 16
)

// ErrAuthentication indicates AEAD verification failure: a tag mismatch,
// a truncated ciphertext, or a key/nonce mismatch. No plaintext is ever
// returned alongside this error.
var ErrAuthentication = errors.New("crypto: message authentication failed")

// SessionCipher encrypts and decrypts channel payloads under a derived
// session key using AES-128-GCM with a 128-bit tag and no associated data.
//
// SessionCipher is safe for concurrent use; it holds no mutable state.
type SessionCipher struct {
	aead  cipher.AEAD
	nonce [SessionNonceSize]byte
}

// NewSessionCipher creates a session cipher from a derived session key.
func NewSessionCipher(key *SessionKey) (*SessionCipher, error) {
	if key == nil {
		return nil, ErrInvalidSharedSecret
	}

	block, err := aes.NewCipher(key.AESKey())
	if err != nil {
		return nil, fmt.Errorf("failed to construct AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to construct GCM: %w", err)
	}

	c := &SessionCipher{aead: aead}
	copy(c.nonce[:], key.Nonce())
	return c, nil
}

// Seal encrypts and authenticates a plaintext, returning
// ciphertext || tag.
//
// Because the nonce is fixed by the session key, sealing two distinct
// plaintexts under the same key catastrophically breaks confidentiality
// and integrity. Derive a fresh session key per message or session.
func (c *SessionCipher) Seal(plaintext []byte) []byte {
	return c.aead.Seal(nil, c.nonce[:], plaintext, nil)
}

// Open decrypts and verifies a sealed payload.
//
// Open fails closed: a truncated ciphertext, a flipped bit anywhere in
// ciphertext or tag, or a key/nonce mismatch all return ErrAuthentication
// and no plaintext, partial or otherwise.
func (c *SessionCipher) Open(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < c.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag (%d bytes)", ErrAuthentication, len(ciphertext))
	}

	plaintext, err := c.aead.Open(nil, c.nonce[:], ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}
