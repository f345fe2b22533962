// Verifier record encoding.
//
// The verifier record is the unit exchanged with peers during pairing
// setup: w0 and L as hex strings plus the plaintext salt. The record is
// encoded as CBOR; transport framing and storage are owned by callers.

package pairing

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/pairlink-protocol/pairlink-go/pkg/crypto"
)

// MarshalRecord encodes the verifier as a CBOR record.
func (v *Verifier) MarshalRecord() ([]byte, error) {
	return cbor.Marshal(v)
}

// UnmarshalRecord decodes and validates a CBOR verifier record.
//
// Validation covers structure only: field presence, hex encoding, length
// consistency with the recorded strategy, and an on-curve check for L.
// It does not (and cannot) verify that the record matches any particular
// password.
func UnmarshalRecord(data []byte) (*Verifier, error) {
	var v Verifier
	if err := cbor.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	if err := v.validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// validate checks record structure and the on-curve invariant for L.
func (v *Verifier) validate() error {
	raw, err := hex.DecodeString(v.W0)
	if err != nil {
		return fmt.Errorf("%w: w0 is not valid hex", ErrInvalidRecord)
	}
	if len(raw) != crypto.P256ScalarSizeBytes {
		return fmt.Errorf("%w: w0 must be %d bytes, got %d",
			ErrInvalidRecord, crypto.P256ScalarSizeBytes, len(raw))
	}
	if len(v.Salt) == 0 {
		return fmt.Errorf("%w: missing salt", ErrInvalidRecord)
	}

	// Point() enforces strategy-consistent length and the on-curve check.
	if _, _, err := v.Point(); err != nil {
		return err
	}
	return nil
}
