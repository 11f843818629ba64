package handshake

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"sealink/internal/crypto"
	"sealink/internal/domain"
	"sealink/internal/protocol/wire"
	"sealink/internal/util/memzero"
)

// State is the position of one side inside the exchange.
type State uint8

const (
	// StateInit is the state before any frame has been produced or
	// absorbed.
	StateInit State = iota
	// StateSentOffer means the initiator has sent its offer and is
	// waiting for the reply.
	StateSentOffer
	// StateReceivedOffer means the responder has accepted an offer,
	// sent its reply, and is waiting for the initiator's confirm.
	StateReceivedOffer
	// StateSentConfirm means the initiator has sent its confirm tag and
	// is waiting for the responder's.
	StateSentConfirm
	// StateEstablished means the peer's confirm tag verified; session
	// keys are available.
	StateEstablished
	// StateFailed is terminal. Key material has been wiped and every
	// further frame is rejected.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateSentOffer:
		return "sent-offer"
	case StateReceivedOffer:
		return "received-offer"
	case StateSentConfirm:
		return "sent-confirm"
	case StateEstablished:
		return "established"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

const transcriptLabel = "sealink v1 handshake"

// Config fixes one side of an exchange before it starts.
type Config struct {
	// Initiator selects which side opens the exchange.
	Initiator bool

	// Identity is this side's long-term signing key pair.
	Identity domain.Identity

	// Peer is the expected long-term public key of the other side. A
	// zero value accepts whichever key the peer presents; the caller is
	// then responsible for verifying the fingerprint out of band.
	Peer domain.Ed25519Public

	// Exchange selects the ephemeral key-agreement suite. Defaults to
	// X25519 when nil.
	Exchange crypto.Exchange

	// Rand is the entropy source for ephemeral keys. Defaults to
	// crypto/rand.
	Rand io.Reader
}

// Handshake is one side of an exchange in progress. It is not safe for
// concurrent use.
type Handshake struct {
	cfg        Config
	state      State
	transcript *crypto.Transcript
	fin        crypto.Finisher
	keys       *crypto.DirectionalKeys
	peer       domain.Ed25519Public
	nextSeq    uint64
	failErr    error
}

// New prepares one side of an exchange.
func New(cfg Config) *Handshake {
	if cfg.Exchange == nil {
		cfg.Exchange = crypto.X25519Exchange{}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.Reader
	}
	return &Handshake{
		cfg:        cfg,
		state:      StateInit,
		transcript: crypto.NewTranscript(transcriptLabel),
		peer:       cfg.Peer,
	}
}

// State reports the current position in the exchange.
func (h *Handshake) State() State { return h.state }

// Err returns the reason the exchange failed, or nil.
func (h *Handshake) Err() error { return h.failErr }

// PeerKey returns the peer's long-term public key once it has been seen
// and verified. Before that it is the configured expectation, possibly
// zero.
func (h *Handshake) PeerKey() domain.Ed25519Public { return h.peer }

// Keys hands over the derived session keys. It returns an error unless
// the exchange is Established; ownership of the keys transfers to the
// caller, who is responsible for wiping them.
func (h *Handshake) Keys() (*crypto.DirectionalKeys, error) {
	if h.state != StateEstablished {
		return nil, fmt.Errorf("keys requested in state %s: %w", h.state, domain.ErrProtocolViolation)
	}
	k := h.keys
	h.keys = nil
	return k, nil
}

// Start produces the opening offer. Only the initiator may call it, and
// only once.
func (h *Handshake) Start() (wire.Frame, error) {
	if !h.cfg.Initiator {
		return wire.Frame{}, h.fail(fmt.Errorf("responder cannot start: %w", domain.ErrProtocolViolation))
	}
	if h.state != StateInit {
		return wire.Frame{}, h.fail(fmt.Errorf("start in state %s: %w", h.state, domain.ErrProtocolViolation))
	}

	offer, fin, err := h.cfg.Exchange.NewOffer(h.cfg.Rand)
	if err != nil {
		return wire.Frame{}, h.fail(fmt.Errorf("generate offer: %w", err))
	}
	h.fin = fin

	// suite || identity || u16 offer length || offer || signature
	body := make([]byte, 0, 1+32+2+len(offer)+crypto.SignatureSize)
	body = append(body, byte(h.cfg.Exchange.Suite()))
	body = append(body, h.cfg.Identity.EdPub.Slice()...)
	body = binary.BigEndian.AppendUint16(body, uint16(len(offer)))
	body = append(body, offer...)

	h.transcript.Append(body)
	sig := crypto.SignEd25519(h.cfg.Identity.EdPriv, h.transcript.Sum())
	h.transcript.Append(sig)
	body = append(body, sig...)

	h.state = StateSentOffer
	h.nextSeq = 1
	return wire.Frame{Type: wire.TypeOffer, Seq: 0, Payload: body}, nil
}

// Absorb processes one inbound frame and returns the outbound frame it
// provokes, if any.
func (h *Handshake) Absorb(f wire.Frame) (*wire.Frame, error) {
	if h.state == StateFailed {
		return nil, fmt.Errorf("handshake already failed: %w", domain.ErrProtocolViolation)
	}
	if h.state == StateEstablished {
		return nil, h.fail(fmt.Errorf("frame after establishment: %w", domain.ErrProtocolViolation))
	}
	if f.Type == wire.TypeAbort {
		return nil, h.fail(domain.ErrPeerAbort)
	}
	if f.Seq != h.nextSeq {
		return nil, h.fail(fmt.Errorf("handshake frame %d, expected %d: %w", f.Seq, h.nextSeq, domain.ErrProtocolViolation))
	}

	switch {
	case h.state == StateInit && !h.cfg.Initiator && f.Type == wire.TypeOffer:
		return h.absorbOffer(f)
	case h.state == StateSentOffer && f.Type == wire.TypeReply:
		return h.absorbReply(f)
	case h.state == StateReceivedOffer && f.Type == wire.TypeConfirm:
		return h.absorbInitiatorConfirm(f)
	case h.state == StateSentConfirm && f.Type == wire.TypeConfirm:
		return h.absorbResponderConfirm(f)
	default:
		return nil, h.fail(fmt.Errorf("%s frame in state %s: %w", f.Type, h.state, domain.ErrProtocolViolation))
	}
}

func (h *Handshake) absorbOffer(f wire.Frame) (*wire.Frame, error) {
	body := f.Payload
	if len(body) < 1+32+2+crypto.SignatureSize {
		return nil, h.fail(fmt.Errorf("short offer: %w", domain.ErrMalformedFrame))
	}
	if crypto.Suite(body[0]) != h.cfg.Exchange.Suite() {
		return nil, h.fail(fmt.Errorf("peer offered suite %s, configured %s: %w",
			crypto.Suite(body[0]), h.cfg.Exchange.Suite(), domain.ErrProtocolViolation))
	}
	peer := domain.MustEd25519Public(body[1:33])
	offerLen := int(binary.BigEndian.Uint16(body[33:35]))
	rest := body[35:]
	if len(rest) != offerLen+crypto.SignatureSize {
		return nil, h.fail(fmt.Errorf("offer length %d does not match frame: %w", offerLen, domain.ErrMalformedFrame))
	}
	offer, sig := rest[:offerLen], rest[offerLen:]

	if err := h.bindPeer(peer); err != nil {
		return nil, h.fail(err)
	}
	h.transcript.Append(body[:35+offerLen])
	if !crypto.VerifyEd25519(peer, h.transcript.Sum(), sig) {
		return nil, h.fail(fmt.Errorf("offer signature: %w", domain.ErrAuthenticationFailed))
	}
	h.transcript.Append(sig)

	reply, shared, err := h.cfg.Exchange.Accept(h.cfg.Rand, offer)
	if err != nil {
		return nil, h.fail(fmt.Errorf("accept offer: %w", err))
	}

	// identity || u16 reply length || reply || signature
	out := make([]byte, 0, 32+2+len(reply)+crypto.SignatureSize)
	out = append(out, h.cfg.Identity.EdPub.Slice()...)
	out = binary.BigEndian.AppendUint16(out, uint16(len(reply)))
	out = append(out, reply...)

	h.transcript.Append(out)
	replySig := crypto.SignEd25519(h.cfg.Identity.EdPriv, h.transcript.Sum())
	h.transcript.Append(replySig)
	out = append(out, replySig...)

	h.deriveKeys(shared)
	h.state = StateReceivedOffer
	h.nextSeq = 2
	return &wire.Frame{Type: wire.TypeReply, Seq: 1, Payload: out}, nil
}

func (h *Handshake) absorbReply(f wire.Frame) (*wire.Frame, error) {
	body := f.Payload
	if len(body) < 32+2+crypto.SignatureSize {
		return nil, h.fail(fmt.Errorf("short reply: %w", domain.ErrMalformedFrame))
	}
	peer := domain.MustEd25519Public(body[:32])
	replyLen := int(binary.BigEndian.Uint16(body[32:34]))
	rest := body[34:]
	if len(rest) != replyLen+crypto.SignatureSize {
		return nil, h.fail(fmt.Errorf("reply length %d does not match frame: %w", replyLen, domain.ErrMalformedFrame))
	}
	reply, sig := rest[:replyLen], rest[replyLen:]

	if err := h.bindPeer(peer); err != nil {
		return nil, h.fail(err)
	}
	h.transcript.Append(body[:34+replyLen])
	if !crypto.VerifyEd25519(peer, h.transcript.Sum(), sig) {
		return nil, h.fail(fmt.Errorf("reply signature: %w", domain.ErrAuthenticationFailed))
	}
	h.transcript.Append(sig)

	shared, err := h.fin.Finish(reply)
	h.fin = nil
	if err != nil {
		return nil, h.fail(fmt.Errorf("finish exchange: %w", err))
	}
	h.deriveKeys(shared)

	tag := crypto.ConfirmTag(h.keys.SendConfirm, h.transcript.Sum())
	h.transcript.Append(tag)

	h.state = StateSentConfirm
	h.nextSeq = 3
	return &wire.Frame{Type: wire.TypeConfirm, Seq: 2, Payload: tag}, nil
}

func (h *Handshake) absorbInitiatorConfirm(f wire.Frame) (*wire.Frame, error) {
	if len(f.Payload) != crypto.ConfirmTagSize {
		return nil, h.fail(fmt.Errorf("confirm tag length %d: %w", len(f.Payload), domain.ErrMalformedFrame))
	}
	if !crypto.VerifyConfirmTag(h.keys.RecvConfirm, h.transcript.Sum(), f.Payload) {
		return nil, h.fail(fmt.Errorf("initiator confirm tag: %w", domain.ErrAuthenticationFailed))
	}
	h.transcript.Append(f.Payload)

	tag := crypto.ConfirmTag(h.keys.SendConfirm, h.transcript.Sum())
	h.transcript.Append(tag)

	h.state = StateEstablished
	return &wire.Frame{Type: wire.TypeConfirm, Seq: 3, Payload: tag}, nil
}

func (h *Handshake) absorbResponderConfirm(f wire.Frame) (*wire.Frame, error) {
	if len(f.Payload) != crypto.ConfirmTagSize {
		return nil, h.fail(fmt.Errorf("confirm tag length %d: %w", len(f.Payload), domain.ErrMalformedFrame))
	}
	if !crypto.VerifyConfirmTag(h.keys.RecvConfirm, h.transcript.Sum(), f.Payload) {
		return nil, h.fail(fmt.Errorf("responder confirm tag: %w", domain.ErrAuthenticationFailed))
	}
	h.transcript.Append(f.Payload)
	h.state = StateEstablished
	return nil, nil
}

// bindPeer pins the presented identity key against the configured
// expectation, or adopts it when no expectation was set.
func (h *Handshake) bindPeer(presented domain.Ed25519Public) error {
	if h.peer.IsZero() {
		h.peer = presented
		return nil
	}
	if h.peer != presented {
		return fmt.Errorf("peer presented unexpected identity key: %w", domain.ErrAuthenticationFailed)
	}
	return nil
}

func (h *Handshake) deriveKeys(shared []byte) {
	secret := crypto.SessionSecret(shared, h.transcript.Sum())
	memzero.Zero(shared)
	h.keys = crypto.DeriveKeys(secret, h.cfg.Initiator)
	memzero.Zero(secret)
}

// fail wipes key material, records the reason, and makes the failure
// sticky.
func (h *Handshake) fail(err error) error {
	if h.keys != nil {
		h.keys.Wipe()
		h.keys = nil
	}
	if h.fin != nil {
		h.fin.Wipe()
		h.fin = nil
	}
	h.state = StateFailed
	h.failErr = err
	return err
}
