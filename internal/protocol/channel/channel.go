package channel

import (
	"errors"
	"fmt"
	"sync"

	"sealink/internal/domain"
	"sealink/internal/protocol/handshake"
	"sealink/internal/protocol/session"
	"sealink/internal/protocol/wire"
)

// EventKind classifies what a channel surfaced to its caller.
type EventKind uint8

const (
	// EventEstablished fires once, when the handshake completes.
	EventEstablished EventKind = iota + 1
	// EventMessage carries one decrypted application message.
	EventMessage
	// EventClosed fires when the peer's authenticated close arrives.
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventEstablished:
		return "established"
	case EventMessage:
		return "message"
	case EventClosed:
		return "closed"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// Event is one observable outcome of feeding bytes to a channel.
type Event struct {
	Kind EventKind
	// Data is the plaintext for EventMessage events, nil otherwise.
	Data []byte
}

// Channel drives one secure channel over an abstract byte stream. It is
// safe for concurrent use, though Feed, Produce, Send, and Close each
// take the channel lock in turn.
type Channel struct {
	mu     sync.Mutex
	hs     *handshake.Handshake
	sess   *session.Session
	inbuf  []byte
	outbuf []byte
	err    error
	closed bool
}

// New prepares a channel. The initiator's opening frame is queued
// immediately; call Produce to obtain the bytes to send.
func New(cfg handshake.Config) (*Channel, error) {
	c := &Channel{hs: handshake.New(cfg)}
	if cfg.Initiator {
		offer, err := c.hs.Start()
		if err != nil {
			return nil, err
		}
		if err := c.queue(offer); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Established reports whether the handshake has completed.
func (c *Channel) Established() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess != nil
}

// PeerKey returns the peer's verified identity key. Meaningful once the
// channel is established.
func (c *Channel) PeerKey() domain.Ed25519Public {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hs.PeerKey()
}

// Err returns the channel's terminal error, or nil while it is healthy.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Feed absorbs bytes from the transport and returns the events they
// produced. Events decoded before a failure are returned alongside the
// error. Failures are sticky.
func (c *Channel) Feed(b []byte) ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	c.inbuf = append(c.inbuf, b...)

	var events []Event
	for {
		f, n, err := wire.Decode(c.inbuf)
		if errors.Is(err, domain.ErrNeedMore) {
			return events, nil
		}
		if err != nil {
			return events, c.fail(err)
		}
		c.inbuf = c.inbuf[n:]

		ev, err := c.absorb(f)
		if err != nil {
			return events, err
		}
		if ev != nil {
			events = append(events, *ev)
			if ev.Kind == EventClosed {
				return events, nil
			}
		}
	}
}

// absorb routes one decoded frame. Caller holds the lock.
func (c *Channel) absorb(f wire.Frame) (*Event, error) {
	if c.sess == nil {
		out, err := c.hs.Absorb(f)
		if err != nil {
			return nil, c.abort(err)
		}
		if out != nil {
			if err := c.queue(*out); err != nil {
				return nil, c.fail(err)
			}
		}
		if c.hs.State() != handshake.StateEstablished {
			return nil, nil
		}
		keys, err := c.hs.Keys()
		if err != nil {
			return nil, c.fail(err)
		}
		c.sess = session.New(keys)
		return &Event{Kind: EventEstablished}, nil
	}

	pt, err := c.sess.Open(f)
	switch {
	case errors.Is(err, domain.ErrSessionClosed):
		c.closed = true
		c.err = domain.ErrSessionClosed
		return &Event{Kind: EventClosed}, nil
	case err != nil:
		return nil, c.fail(err)
	}
	return &Event{Kind: EventMessage, Data: pt}, nil
}

// Produce drains the bytes waiting to be written to the transport.
func (c *Channel) Produce() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.outbuf
	c.outbuf = nil
	return out
}

// Send seals msg and queues it for the transport. The channel must be
// established.
func (c *Channel) Send(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	if c.sess == nil {
		return fmt.Errorf("send before establishment: %w", domain.ErrProtocolViolation)
	}
	f, err := c.sess.Seal(msg)
	if err != nil {
		return err
	}
	return c.queue(f)
}

// Close queues the authenticated close frame. Sending is refused
// afterwards; inbound frames are still processed until the peer's close
// arrives.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil && !c.closed {
		return c.err
	}
	if c.sess == nil {
		return fmt.Errorf("close before establishment: %w", domain.ErrProtocolViolation)
	}
	f, err := c.sess.SealClose()
	if err != nil {
		return err
	}
	return c.queue(f)
}

// SendSeq reports the session's outbound counter; zero before
// establishment.
func (c *Channel) SendSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return 0
	}
	return c.sess.SendSeq()
}

// RecvSeq reports the session's inbound counter; zero before
// establishment.
func (c *Channel) RecvSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return 0
	}
	return c.sess.RecvSeq()
}

func (c *Channel) queue(f wire.Frame) error {
	b, err := wire.Encode(f)
	if err != nil {
		return err
	}
	c.outbuf = append(c.outbuf, b...)
	return nil
}

// abort queues a plaintext abort notice for the peer, then records the
// failure. Used for handshake-stage errors, where no authenticated close
// exists yet. A failure caused by the peer's own abort is not echoed.
func (c *Channel) abort(err error) error {
	if !errors.Is(err, domain.ErrPeerAbort) {
		_ = c.queue(wire.Frame{Type: wire.TypeAbort, Seq: 0})
	}
	return c.fail(err)
}

func (c *Channel) fail(err error) error {
	if c.sess != nil {
		c.sess.Wipe()
	}
	c.err = err
	return err
}
