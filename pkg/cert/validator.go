// Package cert validates peer certificate chains before their keys are
// trusted by a secure channel.
//
// Validation is a pure gate: a chain of DER certificates, leaf first, is
// checked against the standard PKIX path-validation rules (signature
// chaining, validity periods, basic constraints) anchored in a caller
// supplied trust-anchor set. There is no recovery and no revocation
// checking; revocation, if needed, is a caller-supplied extension.
package cert

import (
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

// Validation errors.
var (
	// ErrChainValidation indicates the certificate path is invalid:
	// broken chain, expired certificate, untrusted root, or malformed
	// DER. The underlying cause is wrapped.
	ErrChainValidation = errors.New("cert: chain validation failed")

	// ErrNoTrustAnchors indicates a missing or empty trust-anchor set.
	// Trust anchors are a mandatory input; a chain is never accepted as
	// structurally-valid-but-unanchored.
	ErrNoTrustAnchors = errors.New("cert: no trust anchors configured")

	// ErrEmptyChain indicates an empty certificate chain input.
	ErrEmptyChain = errors.New("cert: empty certificate chain")
)

// TrustAnchors is the set of root certificates that chains must terminate
// at. The set is immutable once built and safe for concurrent use.
type TrustAnchors struct {
	pool  *x509.CertPool
	count int
}

// NewTrustAnchors builds a trust-anchor set from parsed root
// certificates. At least one root is required.
func NewTrustAnchors(roots ...*x509.Certificate) (*TrustAnchors, error) {
	if len(roots) == 0 {
		return nil, ErrNoTrustAnchors
	}

	pool := x509.NewCertPool()
	for _, root := range roots {
		if root == nil {
			return nil, fmt.Errorf("%w: nil root certificate", ErrNoTrustAnchors)
		}
		pool.AddCert(root)
	}
	return &TrustAnchors{pool: pool, count: len(roots)}, nil
}

// TrustAnchorsFromDER builds a trust-anchor set from DER-encoded root
// certificates.
func TrustAnchorsFromDER(roots ...[]byte) (*TrustAnchors, error) {
	if len(roots) == 0 {
		return nil, ErrNoTrustAnchors
	}

	parsed := make([]*x509.Certificate, 0, len(roots))
	for i, der := range roots {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return nil, fmt.Errorf("%w: root %d: %v", ErrChainValidation, i, err)
		}
		parsed = append(parsed, c)
	}
	return NewTrustAnchors(parsed...)
}

// Len returns the number of configured anchors.
func (t *TrustAnchors) Len() int {
	if t == nil {
		return 0
	}
	return t.count
}

// ValidateChain validates an ordered, leaf-first chain of DER-encoded
// certificates against the trust anchors.
//
// Every certificate is parsed, the chain after the leaf is offered as
// intermediates, and the leaf is verified with the PKIX path-validation
// algorithm. Any failure is terminal and wrapped in ErrChainValidation
// with the failing stage; nothing about the inputs is retried.
func ValidateChain(chain [][]byte, anchors *TrustAnchors) error {
	return ValidateChainAt(chain, anchors, time.Now())
}

// ValidateChainAt is ValidateChain with an explicit validation time, for
// callers replaying recorded handshakes and for tests.
func ValidateChainAt(chain [][]byte, anchors *TrustAnchors, at time.Time) error {
	if anchors == nil || anchors.count == 0 {
		return ErrNoTrustAnchors
	}
	if len(chain) == 0 {
		return fmt.Errorf("%w: %w", ErrChainValidation, ErrEmptyChain)
	}

	leaf, err := x509.ParseCertificate(chain[0])
	if err != nil {
		return fmt.Errorf("%w: parse leaf: %v", ErrChainValidation, err)
	}

	intermediates := x509.NewCertPool()
	for i, der := range chain[1:] {
		c, err := x509.ParseCertificate(der)
		if err != nil {
			return fmt.Errorf("%w: parse intermediate %d: %v", ErrChainValidation, i, err)
		}
		intermediates.AddCert(c)
	}

	opts := x509.VerifyOptions{
		Roots:         anchors.pool,
		Intermediates: intermediates,
		CurrentTime:   at,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	}
	if _, err := leaf.Verify(opts); err != nil {
		return fmt.Errorf("%w: %v", ErrChainValidation, err)
	}
	return nil
}
