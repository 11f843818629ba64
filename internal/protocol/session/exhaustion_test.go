package session

import (
	"crypto/rand"
	"errors"
	"testing"

	"sealink/internal/crypto"
	"sealink/internal/domain"
)

func TestSealStopsBeforeCounterWrap(t *testing.T) {
	secret := make([]byte, crypto.KeySize)
	if _, err := rand.Read(secret); err != nil {
		t.Fatalf("rand: %v", err)
	}
	s := New(crypto.DeriveKeys(secret, true))
	s.sendSeq = maxSeq - 1

	if _, err := s.Seal([]byte("last usable frame")); err != nil {
		t.Fatalf("Seal at maxSeq-1: %v", err)
	}
	if _, err := s.Seal([]byte("one too many")); !errors.Is(err, domain.ErrKeyExhaustion) {
		t.Fatalf("got %v, want ErrKeyExhaustion", err)
	}
	// Exhaustion is terminal for the send direction.
	if _, err := s.Seal([]byte("still refused")); !errors.Is(err, domain.ErrKeyExhaustion) {
		t.Fatalf("after exhaustion: got %v, want ErrKeyExhaustion", err)
	}
	if _, err := s.SealClose(); !errors.Is(err, domain.ErrKeyExhaustion) {
		t.Fatalf("SealClose after exhaustion: got %v, want ErrKeyExhaustion", err)
	}
}
