package crypto

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"sealink/internal/domain"
)

// Overhead is the ciphertext expansion added by Seal: the Poly1305 tag.
const Overhead = chacha20poly1305.Overhead

// NonceSize is the ChaCha20-Poly1305 nonce size.
const NonceSize = chacha20poly1305.NonceSize

// Seal encrypts plaintext under key with the frame's sequence number and
// type bound in. The sequence fills the trailing eight nonce bytes, so a
// ciphertext moved to any other position fails to open; the frame type is
// associated data, so a close frame can never be re-tagged as data.
func Seal(key []byte, seq uint64, frameType byte, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [NonceSize]byte
	binary.BigEndian.PutUint64(nonce[NonceSize-8:], seq)
	return aead.Seal(nil, nonce[:], plaintext, []byte{frameType}), nil
}

// Open decrypts a sealed payload, verifying it against the declared
// sequence number and frame type. Tampered bytes, a wrong sequence, or a
// flipped type all yield ErrAuthenticationFailed.
func Open(key []byte, seq uint64, frameType byte, ciphertext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, err
	}
	var nonce [NonceSize]byte
	binary.BigEndian.PutUint64(nonce[NonceSize-8:], seq)
	pt, err := aead.Open(nil, nonce[:], ciphertext, []byte{frameType})
	if err != nil {
		return nil, fmt.Errorf("open frame %d: %w", seq, domain.ErrAuthenticationFailed)
	}
	return pt, nil
}
