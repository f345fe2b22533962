// Package channel composes the session crypto into a secure channel: the
// peer's certificate chain is validated against the configured trust
// anchors, ECDH produces a shared secret, the session key is derived with
// role-bound public-key order, and payloads are sealed and opened under
// AES-128-GCM.
//
// The package owns no transport: callers move shares, chains, and sealed
// payloads however they like.
package channel

import (
	"errors"
	"fmt"

	"github.com/pion/logging"

	"github.com/pairlink-protocol/pairlink-go/pkg/cert"
	"github.com/pairlink-protocol/pairlink-go/pkg/crypto"
)

// Channel errors.
var (
	// ErrMissingPeerChain indicates the peer supplied no certificate
	// chain while trust anchors are configured.
	ErrMissingPeerChain = errors.New("channel: peer certificate chain required")

	// ErrInvalidRole indicates an unknown channel role.
	ErrInvalidRole = errors.New("channel: invalid role")
)

// Role fixes which side's public key is bound as "sender" in the session
// key derivation. The initiator's key is always the sender key; both
// sides of a session must therefore use opposite roles.
type Role int

const (
	// RoleInitiator opens the session; its public key is the sender key.
	RoleInitiator Role = iota + 1

	// RoleResponder answers; its public key is the receiver key.
	RoleResponder
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleInitiator:
		return "initiator"
	case RoleResponder:
		return "responder"
	default:
		return fmt.Sprintf("unknown(%d)", int(r))
	}
}

// Config configures channel establishment.
type Config struct {
	// TrustAnchors is the root set peer certificate chains must
	// terminate at. Required: establishment fails without it rather
	// than accepting an unanchored peer.
	TrustAnchors *cert.TrustAnchors

	// LoggerFactory creates the channel logger. If nil, logging is
	// disabled. Log output never contains key material.
	LoggerFactory logging.LoggerFactory
}

// Channel is an established secure session. It is single-use in the same
// sense as its session key: seal at most one payload, then discard.
type Channel struct {
	role   Role
	key    *crypto.SessionKey
	cipher *crypto.SessionCipher
	log    logging.LeveledLogger
}

// Establish validates the peer and derives the session channel.
//
// localKey is this side's ephemeral key pair and must not be reused for
// another establishment. peerPublicKey is the peer's uncompressed public
// key; peerChain is the peer's DER certificate chain, leaf first, which
// must validate against cfg.TrustAnchors before the peer key is trusted.
func Establish(cfg Config, role Role, localKey *crypto.KeyPair, peerPublicKey []byte, peerChain [][]byte) (*Channel, error) {
	if role != RoleInitiator && role != RoleResponder {
		return nil, ErrInvalidRole
	}

	var log logging.LeveledLogger
	if cfg.LoggerFactory != nil {
		log = cfg.LoggerFactory.NewLogger("channel")
	}

	// Trust gate comes first: no key agreement with an unvalidated peer.
	if cfg.TrustAnchors.Len() == 0 {
		return nil, cert.ErrNoTrustAnchors
	}
	if len(peerChain) == 0 {
		return nil, ErrMissingPeerChain
	}
	if err := cert.ValidateChain(peerChain, cfg.TrustAnchors); err != nil {
		if log != nil {
			log.Warnf("peer chain rejected: %v", err)
		}
		return nil, err
	}
	if log != nil {
		log.Debugf("peer chain validated (%d certificates)", len(peerChain))
	}

	sharedSecret, err := crypto.ECDH(localKey, peerPublicKey)
	if err != nil {
		return nil, err
	}
	defer wipe(sharedSecret)

	// The initiator's key is the sender key on both sides.
	var key *crypto.SessionKey
	switch role {
	case RoleInitiator:
		key, err = crypto.DeriveSessionKey(sharedSecret, localKey.PublicKey(), peerPublicKey)
	case RoleResponder:
		key, err = crypto.DeriveSessionKey(sharedSecret, peerPublicKey, localKey.PublicKey())
	}
	if err != nil {
		return nil, err
	}

	cipher, err := crypto.NewSessionCipher(key)
	if err != nil {
		key.Wipe()
		return nil, err
	}

	if log != nil {
		log.Infof("session established as %s", role)
	}

	return &Channel{
		role:   role,
		key:    key,
		cipher: cipher,
		log:    log,
	}, nil
}

// Role returns the channel's role.
func (c *Channel) Role() Role {
	return c.role
}

// Seal encrypts and authenticates a payload under the session key.
// Seal at most once per channel; the nonce is fixed by the session key.
func (c *Channel) Seal(plaintext []byte) []byte {
	return c.cipher.Seal(plaintext)
}

// Open decrypts and verifies a sealed payload. Fails closed with
// crypto.ErrAuthentication on any tampering or key mismatch.
func (c *Channel) Open(ciphertext []byte) ([]byte, error) {
	plaintext, err := c.cipher.Open(ciphertext)
	if err != nil {
		if c.log != nil {
			c.log.Warnf("open failed: %v", err)
		}
		return nil, err
	}
	return plaintext, nil
}

// Close wipes the session key material. The channel must not be used
// afterwards.
func (c *Channel) Close() {
	if c.key != nil {
		c.key.Wipe()
		c.key = nil
	}
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
