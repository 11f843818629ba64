package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"sealink/internal/crypto"
	"sealink/internal/domain"
	"sealink/internal/protocol/channel"
	"sealink/internal/protocol/handshake"
)

// DefaultHandshakeTimeout bounds how long a peer may take to complete
// the exchange before the connection is dropped.
const DefaultHandshakeTimeout = 10 * time.Second

// Config carries everything needed to run channels over a transport.
type Config struct {
	// Identity is this side's long-term signing key pair.
	Identity domain.Identity

	// Peer is the expected remote identity key. Zero accepts any peer.
	Peer domain.Ed25519Public

	// Exchange selects the key-agreement suite. Defaults to X25519.
	Exchange crypto.Exchange

	// HandshakeTimeout bounds the exchange. Defaults to
	// DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration

	// Logger defaults to a no-op logger.
	Logger *zap.Logger

	// Metrics is optional.
	Metrics *Metrics
}

func (c Config) withDefaults() Config {
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

// Dial connects to addr over TCP and completes the handshake as the
// initiator.
func Dial(addr string, cfg Config) (*Conn, error) {
	cfg = cfg.withDefaults()
	nc, err := net.DialTimeout("tcp", addr, cfg.HandshakeTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	conn, err := Client(nc, cfg)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return conn, nil
}

// Client runs the handshake over stream as the initiator.
func Client(stream io.ReadWriteCloser, cfg Config) (*Conn, error) {
	cfg = cfg.withDefaults()
	return establish(stream, cfg, true)
}

// Server runs the handshake over stream as the responder.
func Server(stream io.ReadWriteCloser, cfg Config) (*Conn, error) {
	cfg = cfg.withDefaults()
	return establish(stream, cfg, false)
}

func establish(stream io.ReadWriteCloser, cfg Config, initiator bool) (*Conn, error) {
	role := "responder"
	if initiator {
		role = "initiator"
	}
	log := cfg.Logger.With(zap.String("role", role))
	start := time.Now()

	ch, err := channel.New(handshake.Config{
		Initiator: initiator,
		Identity:  cfg.Identity,
		Peer:      cfg.Peer,
		Exchange:  cfg.Exchange,
	})
	if err != nil {
		return nil, err
	}

	conn := &Conn{stream: stream, ch: ch, log: log, m: cfg.Metrics}
	if err := conn.runHandshake(cfg.HandshakeTimeout); err != nil {
		cfg.Metrics.observeHandshake(role, "failed", time.Since(start))
		log.Warn("handshake failed", zap.Error(err))
		return nil, err
	}
	cfg.Metrics.observeHandshake(role, "established", time.Since(start))
	log.Debug("channel established",
		zap.String("peer", crypto.Fingerprint(conn.PeerKey().Slice())),
		zap.Duration("took", time.Since(start)))
	return conn, nil
}

// runHandshake pumps handshake frames until the channel is established.
func (c *Conn) runHandshake(timeout time.Duration) error {
	type deadliner interface{ SetDeadline(time.Time) error }
	if d, ok := c.stream.(deadliner); ok {
		if err := d.SetDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
		defer d.SetDeadline(time.Time{})
	}

	buf := make([]byte, 32*1024)
	for !c.ch.Established() {
		if err := c.flush(); err != nil {
			return err
		}
		n, err := c.stream.Read(buf)
		if n > 0 {
			c.m.addBytes("received", n)
			if _, ferr := c.ch.Feed(buf[:n]); ferr != nil {
				// Best-effort abort notice before giving up.
				_ = c.flush()
				return ferr
			}
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("peer hung up mid-handshake: %w", io.ErrUnexpectedEOF)
			}
			return err
		}
	}
	return c.flush()
}

// Listener accepts TCP connections and completes the responder side of
// the handshake for each.
type Listener struct {
	ln  net.Listener
	cfg Config
}

// Listen binds a TCP listener on addr.
func Listen(addr string, cfg Config) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &Listener{ln: ln, cfg: cfg.withDefaults()}, nil
}

// Accept blocks for the next connection and returns it with the
// handshake already complete.
func (l *Listener) Accept() (*Conn, error) {
	nc, err := l.ln.Accept()
	if err != nil {
		return nil, err
	}
	conn, err := Server(nc, l.cfg)
	if err != nil {
		nc.Close()
		return nil, err
	}
	return conn, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Close stops the listener. Established connections are unaffected.
func (l *Listener) Close() error { return l.ln.Close() }
