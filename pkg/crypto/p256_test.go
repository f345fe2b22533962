package crypto

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"
)

// ECDH test vectors from RFC 5903 Section 8.1 "256-Bit Random ECP Group"
// https://datatracker.ietf.org/doc/html/rfc5903#section-8.1
var ecdhP256TestVectors = []struct {
	name         string
	privateKeyA  string // Party A's private key (hex)
	publicKeyA   string // Party A's public key, uncompressed (hex)
	privateKeyB  string // Party B's private key (hex)
	publicKeyB   string // Party B's public key, uncompressed (hex)
	sharedSecret string // Expected shared secret (hex) - x-coordinate of shared point
}{
	{
		name:        "RFC5903_P256",
		privateKeyA: "c88f01f510d9ac3f70a292daa2316de544e9aab8afe84049c62a9c57862d1433",
		publicKeyA: "04" +
			"dad0b65394221cf9b051e1feca5787d098dfe637fc90b9ef945d0c3772581180" +
			"5271a0461cdb8252d61f1c456fa3e59ab1f45b33accf5f58389e0577b8990bb3",
		privateKeyB: "c6ef9c5d78ae012a011164acb397ce2088685d8f06bf9be0b283ab46476bee53",
		publicKeyB: "04" +
			"d12dfb5289c8d4f81208b70270398c342296970a0bccb74c736fc7554494bf63" +
			"56fbf3ca366cc23e8157854c13c58d6aac23f046ada30f8353e74f33039872ab",
		sharedSecret: "d6840f6b42f6edafd13116e0e12565202fef8e9ece7dce03812464d04b9442de",
	},
}

// Generator multiples, for deterministic key pair construction tests.
const (
	generatorHex = "04" +
		"6b17d1f2e12c4247f8bce6e563a440f277037d812deb33a0f4a13945d898c296" +
		"4fe342e2fe1a7f9b8ee7eb4a7c0f9e162bce33576b315ececbb6406837bf51f5"
	generatorDoubleHex = "04" +
		"7cf27b188d034f7e8a52380304b51ac3c08969e277f21b35a60b48fc47669978" +
		"07775510db8ed040293d9ac69f7430dbba7dade63ce982299e04b79d227873d1"
)

func hexDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("failed to decode hex: %v", err)
	}
	return b
}

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	pub := kp.PublicKey()
	if len(pub) != P256PublicKeySizeBytes {
		t.Errorf("public key length = %d, want %d", len(pub), P256PublicKeySizeBytes)
	}
	if pub[0] != 0x04 {
		t.Errorf("public key tag = 0x%02x, want 0x04", pub[0])
	}
	if err := ValidatePublicKey(pub); err != nil {
		t.Errorf("generated public key failed validation: %v", err)
	}
	if len(kp.PrivateKey()) != P256ScalarSizeBytes {
		t.Errorf("private key length = %d, want %d", len(kp.PrivateKey()), P256ScalarSizeBytes)
	}
}

func TestKeyPairFromScalar(t *testing.T) {
	// k = 1 gives the generator, k = 2 its double.
	tests := []struct {
		name   string
		scalar int64
		pubHex string
	}{
		{"scalar_1", 1, generatorHex},
		{"scalar_2", 2, generatorDoubleHex},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kp, err := KeyPairFromScalar(big.NewInt(tc.scalar))
			if err != nil {
				t.Fatalf("KeyPairFromScalar failed: %v", err)
			}
			want := hexDecode(t, tc.pubHex)
			if !bytes.Equal(kp.PublicKey(), want) {
				t.Errorf("public key = %x, want %s", kp.PublicKey(), tc.pubHex)
			}
		})
	}
}

func TestKeyPairFromScalarDeterministic(t *testing.T) {
	k := new(big.Int).SetBytes(hexDecode(t,
		"9e697635c0c357c63228aee610ece737ffe1a9923bc33ec29b154c5c0a686bd3"))

	kp1, err := KeyPairFromScalar(k)
	if err != nil {
		t.Fatalf("first construction failed: %v", err)
	}
	kp2, err := KeyPairFromScalar(k)
	if err != nil {
		t.Fatalf("second construction failed: %v", err)
	}
	if !bytes.Equal(kp1.PublicKey(), kp2.PublicKey()) {
		t.Error("same scalar produced different public keys")
	}
}

func TestKeyPairFromScalarRange(t *testing.T) {
	tests := []struct {
		name   string
		scalar *big.Int
	}{
		{"nil", nil},
		{"zero", big.NewInt(0)},
		{"negative", big.NewInt(-1)},
		{"order", new(big.Int).Set(P256Order())},
		{"above_order", new(big.Int).Add(P256Order(), big.NewInt(1))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := KeyPairFromScalar(tc.scalar); !errors.Is(err, ErrInvalidScalar) {
				t.Errorf("error = %v, want ErrInvalidScalar", err)
			}
		})
	}
}

func TestECDHVectors(t *testing.T) {
	for _, tc := range ecdhP256TestVectors {
		t.Run(tc.name, func(t *testing.T) {
			privA := new(big.Int).SetBytes(hexDecode(t, tc.privateKeyA))
			privB := new(big.Int).SetBytes(hexDecode(t, tc.privateKeyB))

			kpA, err := KeyPairFromScalar(privA)
			if err != nil {
				t.Fatalf("key pair A: %v", err)
			}
			kpB, err := KeyPairFromScalar(privB)
			if err != nil {
				t.Fatalf("key pair B: %v", err)
			}

			if !bytes.Equal(kpA.PublicKey(), hexDecode(t, tc.publicKeyA)) {
				t.Errorf("public key A mismatch")
			}
			if !bytes.Equal(kpB.PublicKey(), hexDecode(t, tc.publicKeyB)) {
				t.Errorf("public key B mismatch")
			}

			want := hexDecode(t, tc.sharedSecret)

			secretA, err := ECDH(kpA, kpB.PublicKey())
			if err != nil {
				t.Fatalf("ECDH(A, pubB) failed: %v", err)
			}
			secretB, err := ECDH(kpB, kpA.PublicKey())
			if err != nil {
				t.Fatalf("ECDH(B, pubA) failed: %v", err)
			}

			if !bytes.Equal(secretA, want) {
				t.Errorf("shared secret A = %x, want %s", secretA, tc.sharedSecret)
			}
			if !bytes.Equal(secretA, secretB) {
				t.Errorf("shared secrets differ between parties")
			}
			if len(secretA) != P256CoordinateSizeBytes {
				t.Errorf("shared secret length = %d, want %d", len(secretA), P256CoordinateSizeBytes)
			}
		})
	}
}

func TestECDHRejectsInvalidPeerKey(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair failed: %v", err)
	}

	valid := hexDecode(t, generatorHex)

	offCurve := append([]byte(nil), valid...)
	offCurve[len(offCurve)-1] ^= 0x01 // perturb Y

	badTag := append([]byte(nil), valid...)
	badTag[0] = 0x02

	infinity := make([]byte, P256PublicKeySizeBytes)
	infinity[0] = 0x04

	tests := []struct {
		name string
		key  []byte
	}{
		{"empty", nil},
		{"truncated", valid[:64]},
		{"too_long", append(append([]byte(nil), valid...), 0x00)},
		{"bad_tag", badTag},
		{"off_curve", offCurve},
		{"infinity", infinity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ECDH(kp, tc.key); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("error = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestEncodeDecodePoint(t *testing.T) {
	enc := hexDecode(t, generatorDoubleHex)

	x, y, err := DecodePoint(enc)
	if err != nil {
		t.Fatalf("DecodePoint failed: %v", err)
	}

	if got := EncodePoint(x, y); !bytes.Equal(got, enc) {
		t.Errorf("EncodePoint round trip = %x, want %x", got, enc)
	}

	raw := EncodePointRaw(x, y)
	if len(raw) != P256RawPointSizeBytes {
		t.Fatalf("raw encoding length = %d, want %d", len(raw), P256RawPointSizeBytes)
	}
	if !bytes.Equal(raw, enc[1:]) {
		t.Errorf("raw encoding differs from tagged encoding minus tag")
	}
}

func TestDecodePointRejectsOffCurve(t *testing.T) {
	enc := hexDecode(t, generatorHex)
	enc[40] ^= 0xff

	if _, _, err := DecodePoint(enc); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("error = %v, want ErrInvalidKey", err)
	}
}
