package crypto

import (
	"fmt"
	"io"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/kyber/kyber768"

	"sealink/internal/domain"
	"sealink/internal/util/memzero"
)

// Suite identifies the ephemeral key-agreement suite. Both peers must be
// configured with the same suite; there is no in-band negotiation, only a
// consistency check during the handshake.
type Suite uint8

const (
	// SuiteX25519 is a single Curve25519 exchange.
	SuiteX25519 Suite = 0x01

	// SuiteX25519Kyber768 combines Curve25519 with the Kyber768 KEM;
	// the shared secret is the concatenation of both outputs.
	SuiteX25519Kyber768 Suite = 0x02
)

func (s Suite) String() string {
	switch s {
	case SuiteX25519:
		return "x25519"
	case SuiteX25519Kyber768:
		return "x25519-kyber768"
	default:
		return fmt.Sprintf("suite(%d)", uint8(s))
	}
}

// SuiteByName resolves a configuration string to a Suite.
func SuiteByName(name string) (Exchange, error) {
	switch name {
	case "", "x25519":
		return X25519Exchange{}, nil
	case "x25519-kyber768", "hybrid":
		return HybridExchange{}, nil
	default:
		return nil, fmt.Errorf("unknown key-agreement suite %q", name)
	}
}

// Exchange performs one ephemeral key agreement. The initiator calls
// NewOffer and later Finish; the responder consumes the offer with Accept
// and obtains the shared secret immediately.
type Exchange interface {
	Suite() Suite

	// NewOffer generates ephemeral material and returns the public
	// offer bytes plus a Finisher holding the private continuation.
	NewOffer(rng io.Reader) (offer []byte, fin Finisher, err error)

	// Accept consumes an offer, returning the reply to send back and
	// the raw shared secret. The caller owns wiping the secret.
	Accept(rng io.Reader, offer []byte) (reply, shared []byte, err error)
}

// Finisher completes an exchange on the initiator side.
type Finisher interface {
	// Finish consumes the responder's reply and returns the raw shared
	// secret. The caller owns wiping the secret.
	Finish(reply []byte) ([]byte, error)

	// Wipe destroys the ephemeral private material. Safe to call more
	// than once.
	Wipe()
}

// ------------- X25519 -------------

// X25519Exchange is the plain Curve25519 suite.
type X25519Exchange struct{}

func (X25519Exchange) Suite() Suite { return SuiteX25519 }

func (X25519Exchange) NewOffer(rng io.Reader) ([]byte, Finisher, error) {
	priv, pub, err := GenerateX25519(rng)
	if err != nil {
		return nil, nil, err
	}
	return pub.Slice(), &x25519Finisher{priv: priv}, nil
}

func (X25519Exchange) Accept(rng io.Reader, offer []byte) (reply, shared []byte, err error) {
	if len(offer) != 32 {
		return nil, nil, fmt.Errorf("x25519 offer: want 32 bytes, got %d", len(offer))
	}
	priv, pub, err := GenerateX25519(rng)
	if err != nil {
		return nil, nil, err
	}
	secret, err := DH(priv, domain.MustX25519Public(offer))
	memzero.Zero(priv[:])
	if err != nil {
		return nil, nil, err
	}
	return pub.Slice(), secret[:], nil
}

type x25519Finisher struct {
	priv domain.X25519Private
	done bool
}

func (f *x25519Finisher) Finish(reply []byte) ([]byte, error) {
	if f.done {
		return nil, fmt.Errorf("x25519 exchange already finished")
	}
	if len(reply) != 32 {
		return nil, fmt.Errorf("x25519 reply: want 32 bytes, got %d", len(reply))
	}
	secret, err := DH(f.priv, domain.MustX25519Public(reply))
	f.Wipe()
	if err != nil {
		return nil, err
	}
	return secret[:], nil
}

func (f *x25519Finisher) Wipe() {
	memzero.Zero(f.priv[:])
	f.done = true
}

// ------------- X25519 + Kyber768 hybrid -------------

// HybridExchange pairs Curve25519 with the Kyber768 KEM. The offer
// carries both public values; the reply carries the responder's X25519
// public and the Kyber ciphertext. Either component alone breaking keeps
// the combined secret safe.
type HybridExchange struct{}

func (HybridExchange) Suite() Suite { return SuiteX25519Kyber768 }

func (HybridExchange) NewOffer(rng io.Reader) ([]byte, Finisher, error) {
	xPriv, xPub, err := GenerateX25519(rng)
	if err != nil {
		return nil, nil, err
	}
	scheme := kyber768.Scheme()
	seed := make([]byte, scheme.SeedSize())
	if _, err := io.ReadFull(rng, seed); err != nil {
		return nil, nil, err
	}
	kemPub, kemPriv := scheme.DeriveKeyPair(seed)
	memzero.Zero(seed)

	kemPubBytes, err := kemPub.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	offer := make([]byte, 0, 32+len(kemPubBytes))
	offer = append(offer, xPub.Slice()...)
	offer = append(offer, kemPubBytes...)
	return offer, &hybridFinisher{xPriv: xPriv, kemPriv: kemPriv}, nil
}

func (HybridExchange) Accept(rng io.Reader, offer []byte) (reply, shared []byte, err error) {
	scheme := kyber768.Scheme()
	want := 32 + scheme.PublicKeySize()
	if len(offer) != want {
		return nil, nil, fmt.Errorf("hybrid offer: want %d bytes, got %d", want, len(offer))
	}
	kemPub, err := scheme.UnmarshalBinaryPublicKey(offer[32:])
	if err != nil {
		return nil, nil, err
	}

	xPriv, xPub, err := GenerateX25519(rng)
	if err != nil {
		return nil, nil, err
	}
	xShared, err := DH(xPriv, domain.MustX25519Public(offer[:32]))
	memzero.Zero(xPriv[:])
	if err != nil {
		return nil, nil, err
	}

	encapSeed := make([]byte, scheme.EncapsulationSeedSize())
	if _, err := io.ReadFull(rng, encapSeed); err != nil {
		return nil, nil, err
	}
	ct, kemShared, err := scheme.EncapsulateDeterministically(kemPub, encapSeed)
	memzero.Zero(encapSeed)
	if err != nil {
		return nil, nil, err
	}

	reply = make([]byte, 0, 32+len(ct))
	reply = append(reply, xPub.Slice()...)
	reply = append(reply, ct...)

	shared = make([]byte, 0, 32+len(kemShared))
	shared = append(shared, xShared[:]...)
	shared = append(shared, kemShared...)
	memzero.Zero(xShared[:])
	memzero.Zero(kemShared)
	return reply, shared, nil
}

type hybridFinisher struct {
	xPriv   domain.X25519Private
	kemPriv kem.PrivateKey
	done    bool
}

func (f *hybridFinisher) Finish(reply []byte) ([]byte, error) {
	if f.done {
		return nil, fmt.Errorf("hybrid exchange already finished")
	}
	scheme := kyber768.Scheme()
	want := 32 + scheme.CiphertextSize()
	if len(reply) != want {
		return nil, fmt.Errorf("hybrid reply: want %d bytes, got %d", want, len(reply))
	}
	xShared, err := DH(f.xPriv, domain.MustX25519Public(reply[:32]))
	if err != nil {
		f.Wipe()
		return nil, err
	}
	kemShared, err := scheme.Decapsulate(f.kemPriv, reply[32:])
	f.Wipe()
	if err != nil {
		return nil, err
	}

	shared := make([]byte, 0, 32+len(kemShared))
	shared = append(shared, xShared[:]...)
	shared = append(shared, kemShared...)
	memzero.Zero(xShared[:])
	memzero.Zero(kemShared)
	return shared, nil
}

func (f *hybridFinisher) Wipe() {
	memzero.Zero(f.xPriv[:])
	f.kemPriv = nil
	f.done = true
}
