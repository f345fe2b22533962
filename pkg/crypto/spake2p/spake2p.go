// Package spake2p implements the SPAKE2+ password-proof exchange used
// during PairLink pairing.
//
// SPAKE2+ is an augmented PAKE: the prover side holds the pairing
// password's derived scalars (w0, w1), while the verifier side holds only
// the registration record (w0, L = w1*G). Neither the password nor the
// verifier secret crosses the wire, and both sides end up with the same
// shared secret only when the password material matches.
//
// The ciphersuite is P256-SHA256-HKDF-HMAC (RFC 9383).
//
// Protocol flow:
//
//	Prover                         Verifier
//	------                         --------
//	NewProver(w0, w1)              NewVerifier(w0, L)
//	X = Share() -------X------->   ProcessPeerShare(X)
//	            <------Y--------   Y = Share()
//	ProcessPeerShare(Y)            confirmV = Confirmation()
//	            <--confirmV-----
//	VerifyPeerConfirmation(confirmV)
//	confirmP = Confirmation() --confirmP-->
//	                               VerifyPeerConfirmation(confirmP)
//	Ke = SharedSecret()            Ke = SharedSecret()
package spake2p

import (
	"crypto/elliptic"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"math/big"

	"github.com/pairlink-protocol/pairlink-go/pkg/crypto"
)

// Protocol sizes for the P256-SHA256-HKDF-HMAC ciphersuite.
const (
	// ShareSizeBytes is the size of an uncompressed public share.
	ShareSizeBytes = crypto.P256PublicKeySizeBytes

	// ConfirmationSizeBytes is the size of a confirmation MAC.
	ConfirmationSizeBytes = crypto.SHA256LenBytes

	// SharedSecretSizeBytes is the size of the established secret Ke.
	SharedSecretSizeBytes = 16
)

// confirmationInfo is the HKDF info string for confirmation key derivation.
var confirmationInfo = []byte("ConfirmationKeys")

// M and N are the SPAKE2+ blinding generators for P-256 from RFC 9383
// Section 4, in uncompressed form.
var (
	pointMBytes = mustHexBytes("04886e2f97ace46e55ba9dd7242579f2993b64e16ef3dcab95afd497333d8fa12f" +
		"5ff355163e43ce224e0b0e65ff02ac8e5c7be09419c785e0ca547d55a12e2d20")
	pointNBytes = mustHexBytes("04d8bbd6c639c62937b04d997f38c3770719c629d7014d49a24b4f98baa1292b49" +
		"07d60aa6bfade45008a636337f5168c64d9bd36034808cd564490b1e656edbe7")

	pointM = mustDecodePoint(pointMBytes)
	pointN = mustDecodePoint(pointNBytes)
)

// p256 is the curve for all share and secret computations.
var p256 = elliptic.P256()

// Errors.
var (
	ErrInvalidScalar      = errors.New("spake2p: scalar must lie in [1, n-1]")
	ErrInvalidShare       = errors.New("spake2p: share is not a valid curve point")
	ErrInvalidState       = errors.New("spake2p: invalid protocol state for this operation")
	ErrConfirmationFailed = errors.New("spake2p: key confirmation failed")
)

// state tracks handshake progress.
type state int

const (
	stateInit state = iota
	stateShareSent
	stateSecretsDerived
	stateConfirmed
)

// point is an affine P-256 point.
type point struct {
	x, y *big.Int
}

// exchange holds the state common to both sides.
type exchange struct {
	context    []byte
	idProver   []byte
	idVerifier []byte

	w0 *big.Int

	random    *big.Int
	myShare   []byte
	peerShare []byte

	// Derived values
	sharedZ []byte
	sharedV []byte
	ka      []byte
	ke      []byte
	kcP     []byte // prover confirmation key
	kcV     []byte // verifier confirmation key

	state state
	rand  io.Reader
}

// Prover is the side that knows both derived scalars (w0, w1).
type Prover struct {
	exchange
	w1 *big.Int
}

// Verifier is the side that holds the registration record (w0, L).
type Verifier struct {
	exchange
	l *point
}

// NewProver creates the prover side of the exchange.
//
// context binds the surrounding protocol (for example a hash of the
// stretching parameters); idProver and idVerifier may be empty.
func NewProver(context, idProver, idVerifier []byte, w0, w1 *big.Int) (*Prover, error) {
	if err := checkScalar(w0); err != nil {
		return nil, err
	}
	if err := checkScalar(w1); err != nil {
		return nil, err
	}
	return &Prover{
		exchange: newExchange(context, idProver, idVerifier, w0),
		w1:       new(big.Int).Set(w1),
	}, nil
}

// NewVerifier creates the verifier side of the exchange from the stored
// registration record. lx, ly are the affine coordinates of L = w1*G.
func NewVerifier(context, idProver, idVerifier []byte, w0 *big.Int, lx, ly *big.Int) (*Verifier, error) {
	if err := checkScalar(w0); err != nil {
		return nil, err
	}
	if lx == nil || ly == nil || !p256.IsOnCurve(lx, ly) {
		return nil, ErrInvalidShare
	}
	return &Verifier{
		exchange: newExchange(context, idProver, idVerifier, w0),
		l:        &point{x: new(big.Int).Set(lx), y: new(big.Int).Set(ly)},
	}, nil
}

func newExchange(context, idProver, idVerifier []byte, w0 *big.Int) exchange {
	return exchange{
		context:    append([]byte(nil), context...),
		idProver:   append([]byte(nil), idProver...),
		idVerifier: append([]byte(nil), idVerifier...),
		w0:         new(big.Int).Set(w0),
		state:      stateInit,
		rand:       rand.Reader,
	}
}

// Share generates the prover's public share X = x*G + w0*M.
func (p *Prover) Share() ([]byte, error) {
	return p.generateShare(pointM)
}

// Share generates the verifier's public share Y = y*G + w0*N.
func (v *Verifier) Share() ([]byte, error) {
	return v.generateShare(pointN)
}

func (e *exchange) generateShare(blind *point) ([]byte, error) {
	if e.state != stateInit {
		return nil, ErrInvalidState
	}

	random, err := randomScalar(e.rand)
	if err != nil {
		return nil, err
	}
	e.random = random

	// share = random*G + w0*blind
	gx, gy := p256.ScalarBaseMult(scalarBytes(random))
	bx, by := p256.ScalarMult(blind.x, blind.y, scalarBytes(e.w0))
	sx, sy := p256.Add(gx, gy, bx, by)

	e.myShare = crypto.EncodePoint(sx, sy)
	e.state = stateShareSent
	return append([]byte(nil), e.myShare...), nil
}

// ProcessPeerShare consumes the verifier's share Y and derives the
// session secrets: Z = x*(Y - w0*N), V = w1*(Y - w0*N).
func (p *Prover) ProcessPeerShare(peerShare []byte) error {
	peer, err := p.acceptPeerShare(peerShare)
	if err != nil {
		return err
	}

	// Y - w0*N; P-256 has cofactor 1, so no cofactor multiplication.
	unblinded := pointSub(peer, scalarMult(pointN, p.w0))

	z := scalarMult(unblinded, p.random)
	v := scalarMult(unblinded, p.w1)
	p.sharedZ = crypto.EncodePoint(z.x, z.y)
	p.sharedV = crypto.EncodePoint(v.x, v.y)

	return p.deriveKeys(p.myShare, p.peerShare)
}

// ProcessPeerShare consumes the prover's share X and derives the session
// secrets: Z = y*(X - w0*M), V = y*L.
func (v *Verifier) ProcessPeerShare(peerShare []byte) error {
	peer, err := v.acceptPeerShare(peerShare)
	if err != nil {
		return err
	}

	unblinded := pointSub(peer, scalarMult(pointM, v.w0))

	z := scalarMult(unblinded, v.random)
	vv := scalarMult(v.l, v.random)
	v.sharedZ = crypto.EncodePoint(z.x, z.y)
	v.sharedV = crypto.EncodePoint(vv.x, vv.y)

	return v.deriveKeys(v.peerShare, v.myShare)
}

func (e *exchange) acceptPeerShare(peerShare []byte) (*point, error) {
	if e.state != stateShareSent {
		return nil, ErrInvalidState
	}
	x, y, err := crypto.DecodePoint(peerShare)
	if err != nil {
		return nil, ErrInvalidShare
	}
	e.peerShare = append([]byte(nil), peerShare...)
	return &point{x: x, y: y}, nil
}

// Confirmation returns the prover's confirmation MAC over the verifier's
// share.
func (p *Prover) Confirmation() ([]byte, error) {
	if p.state != stateSecretsDerived && p.state != stateConfirmed {
		return nil, ErrInvalidState
	}
	return crypto.HMACSHA256(p.kcP, p.peerShare), nil
}

// VerifyPeerConfirmation checks the verifier's confirmation MAC.
func (p *Prover) VerifyPeerConfirmation(confirm []byte) error {
	expected := crypto.HMACSHA256(p.kcV, p.myShare)
	return p.checkConfirmation(expected, confirm)
}

// Confirmation returns the verifier's confirmation MAC over the prover's
// share.
func (v *Verifier) Confirmation() ([]byte, error) {
	if v.state != stateSecretsDerived && v.state != stateConfirmed {
		return nil, ErrInvalidState
	}
	return crypto.HMACSHA256(v.kcV, v.peerShare), nil
}

// VerifyPeerConfirmation checks the prover's confirmation MAC.
func (v *Verifier) VerifyPeerConfirmation(confirm []byte) error {
	expected := crypto.HMACSHA256(v.kcP, v.myShare)
	return v.checkConfirmation(expected, confirm)
}

func (e *exchange) checkConfirmation(expected, got []byte) error {
	if e.state != stateSecretsDerived && e.state != stateConfirmed {
		return ErrInvalidState
	}
	if !crypto.HMACEqual(expected, got) {
		return ErrConfirmationFailed
	}
	e.state = stateConfirmed
	return nil
}

// SharedSecret returns the established secret Ke. Call only after the
// peer's confirmation has verified.
func (e *exchange) SharedSecret() []byte {
	return append([]byte(nil), e.ke...)
}

// deriveKeys hashes the transcript and splits the result into the
// authentication and encryption halves, then derives the two
// confirmation keys via HKDF.
func (e *exchange) deriveKeys(proverShare, verifierShare []byte) error {
	tt := e.buildTranscript(proverShare, verifierShare)
	kae := crypto.SHA256(tt)

	e.ka = append([]byte(nil), kae[:16]...)
	e.ke = append([]byte(nil), kae[16:]...)

	kc, err := crypto.HKDFSHA256(e.ka, nil, confirmationInfo, 32)
	if err != nil {
		return err
	}
	e.kcP = kc[:16]
	e.kcV = kc[16:]

	e.state = stateSecretsDerived
	return nil
}

// buildTranscript serializes the protocol transcript with 8-byte
// little-endian length prefixes (RFC 9383 Section 3.3):
//
//	TT = len(Context) || Context
//	  || len(idProver) || idProver
//	  || len(idVerifier) || idVerifier
//	  || len(M) || M || len(N) || N
//	  || len(X) || X || len(Y) || Y
//	  || len(Z) || Z || len(V) || V
//	  || len(w0) || w0
func (e *exchange) buildTranscript(proverShare, verifierShare []byte) []byte {
	var tt []byte
	tt = appendWithLen64(tt, e.context)
	tt = appendWithLen64(tt, e.idProver)
	tt = appendWithLen64(tt, e.idVerifier)
	tt = appendWithLen64(tt, pointMBytes)
	tt = appendWithLen64(tt, pointNBytes)
	tt = appendWithLen64(tt, proverShare)
	tt = appendWithLen64(tt, verifierShare)
	tt = appendWithLen64(tt, e.sharedZ)
	tt = appendWithLen64(tt, e.sharedV)
	tt = appendWithLen64(tt, scalarBytes(e.w0))
	return tt
}

func appendWithLen64(dst, data []byte) []byte {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(data)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, data...)
}

// SetRandom overrides the random source. Tests only.
func (e *exchange) SetRandom(r io.Reader) {
	e.rand = r
}

// Point helpers.

func scalarMult(p *point, k *big.Int) *point {
	x, y := p256.ScalarMult(p.x, p.y, scalarBytes(k))
	return &point{x: x, y: y}
}

func pointSub(p1, p2 *point) *point {
	negY := new(big.Int).Neg(p2.y)
	negY.Mod(negY, p256.Params().P)
	x, y := p256.Add(p1.x, p1.y, p2.x, negY)
	return &point{x: x, y: y}
}

func scalarBytes(k *big.Int) []byte {
	buf := make([]byte, crypto.P256ScalarSizeBytes)
	k.FillBytes(buf)
	return buf
}

func checkScalar(k *big.Int) error {
	if k == nil || k.Sign() <= 0 || k.Cmp(p256.Params().N) >= 0 {
		return ErrInvalidScalar
	}
	return nil
}

func randomScalar(r io.Reader) (*big.Int, error) {
	n := p256.Params().N
	for {
		buf := make([]byte, crypto.P256ScalarSizeBytes)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		k := new(big.Int).SetBytes(buf)
		if k.Sign() > 0 && k.Cmp(n) < 0 {
			return k, nil
		}
	}
}

func mustHexBytes(s string) []byte {
	buf, err := hex.DecodeString(s)
	if err != nil {
		panic("spake2p: invalid hex constant: " + err.Error())
	}
	return buf
}

func mustDecodePoint(data []byte) *point {
	x, y, err := crypto.DecodePoint(data)
	if err != nil {
		panic(err)
	}
	return &point{x: x, y: y}
}
