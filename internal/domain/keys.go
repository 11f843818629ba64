package domain

import "fmt"

// ------------- X25519 -------------

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

func (k X25519Private) Slice() []byte { return k[:] }
func (k X25519Public) Slice() []byte  { return k[:] }

// MustX25519Private copies b into a private key, panicking on bad length.
func MustX25519Private(b []byte) X25519Private {
	if len(b) != 32 {
		panic(fmt.Errorf("X25519 private: want 32 bytes, got %d", len(b)))
	}
	var out X25519Private
	copy(out[:], b)
	return out
}

// MustX25519Public copies b into a public key, panicking on bad length.
func MustX25519Public(b []byte) X25519Public {
	if len(b) != 32 {
		panic(fmt.Errorf("X25519 public: want 32 bytes, got %d", len(b)))
	}
	var out X25519Public
	copy(out[:], b)
	return out
}

// ------------- Ed25519 -------------

// Ed25519Public is a signing public key.
type Ed25519Public [32]byte

// Ed25519Private is a signing private key (ed25519.PrivateKey layout).
type Ed25519Private [64]byte

func (p Ed25519Public) Slice() []byte  { return p[:] }
func (k Ed25519Private) Slice() []byte { return k[:] }

// IsZero reports whether the public key is entirely unset. A zero key is
// never a valid peer credential.
func (p Ed25519Public) IsZero() bool {
	var v byte
	for _, b := range p {
		v |= b
	}
	return v == 0
}

// MustEd25519Public copies b into a public key, panicking on bad length.
func MustEd25519Public(b []byte) Ed25519Public {
	if len(b) != 32 {
		panic(fmt.Errorf("Ed25519 public: want 32 bytes, got %d", len(b)))
	}
	var out Ed25519Public
	copy(out[:], b)
	return out
}
