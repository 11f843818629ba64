package crypto_test

import (
	"bytes"
	"crypto/rand"
	"errors"
	mrand "math/rand"
	"testing"

	"sealink/internal/crypto"
	"sealink/internal/domain"
)

func newKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, crypto.KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := newKey(t)
	payloads := [][]byte{
		[]byte("a"),
		[]byte("bb"),
		[]byte("ccc"),
		bytes.Repeat([]byte{0x42}, 4096),
		{},
	}
	for i, msg := range payloads {
		seq := uint64(i + 1)
		ct, err := crypto.Seal(key, seq, 0x04, msg)
		if err != nil {
			t.Fatalf("Seal(%d): %v", seq, err)
		}
		pt, err := crypto.Open(key, seq, 0x04, ct)
		if err != nil {
			t.Fatalf("Open(%d): %v", seq, err)
		}
		if !bytes.Equal(pt, msg) {
			t.Fatalf("round-trip mismatch at seq %d", seq)
		}
	}
}

func TestOpenRejectsWrongSequence(t *testing.T) {
	key := newKey(t)
	ct, err := crypto.Seal(key, 7, 0x04, []byte("bound to seven"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	for _, seq := range []uint64{0, 6, 8, 70} {
		if _, err := crypto.Open(key, seq, 0x04, ct); !errors.Is(err, domain.ErrAuthenticationFailed) {
			t.Fatalf("Open at seq %d: want ErrAuthenticationFailed, got %v", seq, err)
		}
	}
}

func TestOpenRejectsWrongFrameType(t *testing.T) {
	key := newKey(t)
	ct, err := crypto.Seal(key, 1, 0x04, []byte("data frame"))
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if _, err := crypto.Open(key, 1, 0x05, ct); !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("want ErrAuthenticationFailed for retyped frame, got %v", err)
	}
}

// Flip random single bits and make sure every flip is caught.
func TestOpenDetectsBitFlips(t *testing.T) {
	key := newKey(t)
	msg := []byte("tamper with me and find out")
	ct, err := crypto.Seal(key, 3, 0x04, msg)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}

	rng := mrand.New(mrand.NewSource(1))
	for i := 0; i < 64; i++ {
		mut := append([]byte(nil), ct...)
		bit := rng.Intn(len(mut) * 8)
		mut[bit/8] ^= 1 << (bit % 8)
		if _, err := crypto.Open(key, 3, 0x04, mut); !errors.Is(err, domain.ErrAuthenticationFailed) {
			t.Fatalf("flip of bit %d not detected: %v", bit, err)
		}
	}
}
