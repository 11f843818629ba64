package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"sealink/internal/domain"
	"sealink/internal/protocol/channel"
)

// Conn is an established secure channel bound to a byte stream. Send and
// Receive are message oriented: one Send surfaces as exactly one Receive
// on the peer.
type Conn struct {
	stream io.ReadWriteCloser
	ch     *channel.Channel
	log    *zap.Logger
	m      *Metrics

	recvMu  sync.Mutex
	pending [][]byte
	rbuf    []byte
	eof     bool

	sendMu sync.Mutex
}

// PeerKey returns the peer's verified identity key.
func (c *Conn) PeerKey() domain.Ed25519Public { return c.ch.PeerKey() }

// Send seals msg and writes it to the stream.
func (c *Conn) Send(msg []byte) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if err := c.ch.Send(msg); err != nil {
		return err
	}
	if err := c.flush(); err != nil {
		return err
	}
	c.m.addMessage("sent")
	return nil
}

// Receive blocks for the next application message. It returns io.EOF
// after the peer's authenticated close.
func (c *Conn) Receive() ([]byte, error) {
	c.recvMu.Lock()
	defer c.recvMu.Unlock()
	for {
		if len(c.pending) > 0 {
			msg := c.pending[0]
			c.pending = c.pending[1:]
			c.m.addMessage("received")
			return msg, nil
		}
		if c.eof {
			return nil, io.EOF
		}

		if c.rbuf == nil {
			c.rbuf = make([]byte, 32*1024)
		}
		n, err := c.stream.Read(c.rbuf)
		if n > 0 {
			c.m.addBytes("received", n)
			events, ferr := c.ch.Feed(c.rbuf[:n])
			for _, ev := range events {
				switch ev.Kind {
				case channel.EventMessage:
					c.pending = append(c.pending, ev.Data)
				case channel.EventClosed:
					c.log.Debug("peer closed channel")
					c.eof = true
				}
			}
			if ferr != nil && !errors.Is(ferr, domain.ErrSessionClosed) {
				c.log.Warn("channel failure", zap.Error(ferr))
				return nil, ferr
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) && !c.eof {
				// Stream death without the authenticated close is a
				// truncation, not a clean shutdown.
				return nil, fmt.Errorf("stream ended before close frame: %w", io.ErrUnexpectedEOF)
			}
			return nil, err
		}
	}
}

// Close sends the authenticated close frame and closes the underlying
// stream.
func (c *Conn) Close() error {
	c.sendMu.Lock()
	closeErr := c.ch.Close()
	if errors.Is(closeErr, domain.ErrSessionClosed) {
		closeErr = nil // both sides closed; nothing left to say
	}
	if closeErr == nil {
		closeErr = c.flush()
	}
	c.sendMu.Unlock()

	if err := c.stream.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

// flush writes everything the channel has queued. Caller holds sendMu.
func (c *Conn) flush() error {
	out := c.ch.Produce()
	if len(out) == 0 {
		return nil
	}
	if _, err := c.stream.Write(out); err != nil {
		return fmt.Errorf("write frames: %w", err)
	}
	c.m.addBytes("sent", len(out))
	return nil
}
