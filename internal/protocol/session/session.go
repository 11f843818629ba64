package session

import (
	"fmt"
	"sync"

	"sealink/internal/crypto"
	"sealink/internal/domain"
	"sealink/internal/protocol/wire"
)

// maxSeq is the last usable sequence number. Refusing to reach the
// counter's wrap point keeps every (key, nonce) pair unique for the life
// of the session.
const maxSeq = ^uint64(0) - 1

// Session is an established secure channel. The send and receive paths
// are independently locked, so one goroutine may seal while another
// opens.
type Session struct {
	keys *crypto.DirectionalKeys

	sendMu  sync.Mutex
	sendSeq uint64
	sendErr error

	recvMu  sync.Mutex
	recvSeq uint64
	recvErr error
}

// New wraps handshake-derived keys in a session. The session takes
// ownership of keys and wipes them as each direction retires.
func New(keys *crypto.DirectionalKeys) *Session {
	return &Session{keys: keys}
}

// SendSeq returns the sequence number of the most recently sealed frame;
// zero if nothing has been sent.
func (s *Session) SendSeq() uint64 {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.sendSeq
}

// RecvSeq returns the sequence number of the most recently accepted
// frame; zero if nothing has been received.
func (s *Session) RecvSeq() uint64 {
	s.recvMu.Lock()
	defer s.recvMu.Unlock()
	return s.recvSeq
}

// Seal encrypts msg as the next outbound data frame.
func (s *Session) Seal(msg []byte) (wire.Frame, error) {
	return s.seal(wire.TypeData, msg)
}

// SealClose produces the authenticated close frame and retires the send
// direction. Further Seal calls return ErrSessionClosed.
func (s *Session) SealClose() (wire.Frame, error) {
	f, err := s.seal(wire.TypeClose, nil)
	if err != nil {
		return wire.Frame{}, err
	}
	s.sendMu.Lock()
	s.sendErr = domain.ErrSessionClosed
	s.keys.WipeSend()
	s.sendMu.Unlock()
	return f, nil
}

func (s *Session) seal(t wire.FrameType, msg []byte) (wire.Frame, error) {
	if len(msg) > wire.MaxPayload-crypto.Overhead {
		return wire.Frame{}, fmt.Errorf("seal %d byte message: %w", len(msg), domain.ErrFrameTooLarge)
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.sendErr != nil {
		return wire.Frame{}, s.sendErr
	}
	if s.sendSeq >= maxSeq {
		s.sendErr = domain.ErrKeyExhaustion
		s.keys.WipeSend()
		return wire.Frame{}, s.sendErr
	}
	seq := s.sendSeq + 1
	ct, err := crypto.Seal(s.keys.Send, seq, byte(t), msg)
	if err != nil {
		s.sendErr = err
		return wire.Frame{}, err
	}
	s.sendSeq = seq
	return wire.Frame{Type: t, Seq: seq, Payload: ct}, nil
}

// Open verifies and decrypts one inbound frame. A Close frame retires the
// receive direction and returns ErrSessionClosed; every verification
// failure is fatal and sticky.
func (s *Session) Open(f wire.Frame) ([]byte, error) {
	s.recvMu.Lock()
	defer s.recvMu.Unlock()
	if s.recvErr != nil {
		return nil, s.recvErr
	}

	switch f.Type {
	case wire.TypeData, wire.TypeClose:
	case wire.TypeAbort:
		return nil, s.failRecv(domain.ErrPeerAbort)
	default:
		return nil, s.failRecv(fmt.Errorf("%s frame on established session: %w", f.Type, domain.ErrProtocolViolation))
	}

	expected := s.recvSeq + 1
	if f.Seq != expected {
		return nil, s.failRecv(fmt.Errorf("frame %d, expected %d: %w", f.Seq, expected, domain.ErrReplayOrReorder))
	}
	pt, err := crypto.Open(s.keys.Recv, f.Seq, byte(f.Type), f.Payload)
	if err != nil {
		return nil, s.failRecv(err)
	}
	s.recvSeq = f.Seq

	if f.Type == wire.TypeClose {
		s.recvErr = domain.ErrSessionClosed
		s.keys.WipeRecv()
		return nil, s.recvErr
	}
	return pt, nil
}

// failRecv retires the receive direction and makes err sticky.
func (s *Session) failRecv(err error) error {
	s.recvErr = err
	s.keys.WipeRecv()
	return err
}

// Wipe tears the whole session down, destroying both directions'
// keys. Safe to call more than once.
func (s *Session) Wipe() {
	s.sendMu.Lock()
	if s.sendErr == nil {
		s.sendErr = domain.ErrSessionClosed
	}
	s.sendMu.Unlock()
	s.recvMu.Lock()
	if s.recvErr == nil {
		s.recvErr = domain.ErrSessionClosed
	}
	s.recvMu.Unlock()
	s.keys.Wipe()
}
