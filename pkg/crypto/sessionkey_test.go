package crypto

import (
	"bytes"
	"errors"
	"testing"
)

// Golden session key vector: sharedSecret = 00 01 .. 1f, sender = G,
// receiver = 2*G. Computed once from the derivation definition
// SHA-256(secret || 00000001 || sender || receiver) and pinned.
const (
	sessionKeyVectorHex        = "057352b95d3d9b30908a46f53615ef0d557032276301a3e57cbcfff5e1796fd0"
	sessionKeySwappedVectorHex = "77bc44a7f2edaa9a1ab8a6a8cceb65f38a9c3ef64a89f75a145f1f8afd545ffb"
)

func sessionKeyFixture(t *testing.T) (secret, sender, receiver []byte) {
	t.Helper()
	secret = make([]byte, 32)
	for i := range secret {
		secret[i] = byte(i)
	}
	return secret, hexDecode(t, generatorHex), hexDecode(t, generatorDoubleHex)
}

func TestDeriveSessionKeyVector(t *testing.T) {
	secret, sender, receiver := sessionKeyFixture(t)

	key, err := DeriveSessionKey(secret, sender, receiver)
	if err != nil {
		t.Fatalf("DeriveSessionKey failed: %v", err)
	}

	want := hexDecode(t, sessionKeyVectorHex)
	if !bytes.Equal(key[:], want) {
		t.Errorf("session key = %x, want %s", key[:], sessionKeyVectorHex)
	}
}

func TestDeriveSessionKeyRoleSensitivity(t *testing.T) {
	secret, sender, receiver := sessionKeyFixture(t)

	forward, err := DeriveSessionKey(secret, sender, receiver)
	if err != nil {
		t.Fatalf("forward derivation failed: %v", err)
	}
	swapped, err := DeriveSessionKey(secret, receiver, sender)
	if err != nil {
		t.Fatalf("swapped derivation failed: %v", err)
	}

	if bytes.Equal(forward[:], swapped[:]) {
		t.Error("swapping sender/receiver roles produced the same key")
	}
	if want := hexDecode(t, sessionKeySwappedVectorHex); !bytes.Equal(swapped[:], want) {
		t.Errorf("swapped key = %x, want %s", swapped[:], sessionKeySwappedVectorHex)
	}
}

func TestSessionKeyLayout(t *testing.T) {
	secret, sender, receiver := sessionKeyFixture(t)

	key, err := DeriveSessionKey(secret, sender, receiver)
	if err != nil {
		t.Fatalf("DeriveSessionKey failed: %v", err)
	}

	if got := key.AESKey(); !bytes.Equal(got, key[:16]) {
		t.Errorf("AESKey = %x, want first 16 bytes %x", got, key[:16])
	}
	if got := key.Nonce(); !bytes.Equal(got, key[16:28]) {
		t.Errorf("Nonce = %x, want bytes 16..27 %x", got, key[16:28])
	}
	if len(key.AESKey()) != SessionAESKeySize {
		t.Errorf("AES key length = %d, want %d", len(key.AESKey()), SessionAESKeySize)
	}
	if len(key.Nonce()) != SessionNonceSize {
		t.Errorf("nonce length = %d, want %d", len(key.Nonce()), SessionNonceSize)
	}
}

func TestDeriveSessionKeyRejectsBadInput(t *testing.T) {
	secret, sender, receiver := sessionKeyFixture(t)

	if _, err := DeriveSessionKey(nil, sender, receiver); !errors.Is(err, ErrInvalidSharedSecret) {
		t.Errorf("empty secret: error = %v, want ErrInvalidSharedSecret", err)
	}
	if _, err := DeriveSessionKey(secret, sender[:10], receiver); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("short sender key: error = %v, want ErrInvalidKey", err)
	}
	if _, err := DeriveSessionKey(secret, sender, receiver[:10]); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("short receiver key: error = %v, want ErrInvalidKey", err)
	}
}

func TestSessionKeyWipe(t *testing.T) {
	secret, sender, receiver := sessionKeyFixture(t)

	key, err := DeriveSessionKey(secret, sender, receiver)
	if err != nil {
		t.Fatalf("DeriveSessionKey failed: %v", err)
	}

	key.Wipe()
	for i, b := range key {
		if b != 0 {
			t.Fatalf("byte %d not wiped: 0x%02x", i, b)
		}
	}
}
