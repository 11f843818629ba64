package wire

import (
	"encoding/binary"
	"fmt"

	"sealink/internal/domain"
)

// FrameType tags the role of a frame on the wire.
type FrameType uint8

const (
	// TypeOffer opens a handshake (initiator to responder).
	TypeOffer FrameType = 0x01
	// TypeReply answers an offer (responder to initiator).
	TypeReply FrameType = 0x02
	// TypeConfirm carries a key-confirmation tag, one in each direction.
	TypeConfirm FrameType = 0x03
	// TypeData carries an encrypted application message.
	TypeData FrameType = 0x04
	// TypeClose is an authenticated end-of-session marker.
	TypeClose FrameType = 0x05
	// TypeAbort is a plaintext handshake failure notice.
	TypeAbort FrameType = 0x06
)

// String returns the lowercase name of the frame type.
func (t FrameType) String() string {
	switch t {
	case TypeOffer:
		return "offer"
	case TypeReply:
		return "reply"
	case TypeConfirm:
		return "confirm"
	case TypeData:
		return "data"
	case TypeClose:
		return "close"
	case TypeAbort:
		return "abort"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(t))
	}
}

func (t FrameType) valid() bool {
	return t >= TypeOffer && t <= TypeAbort
}

const (
	// HeaderSize is the fixed length of the frame header.
	HeaderSize = 1 + 8 + 4

	// MaxPayload bounds the declared payload length. Anything larger is
	// rejected as soon as the header has been read, before any payload
	// bytes are buffered.
	MaxPayload = 1 << 20
)

// Frame is one protocol message. Payload holds ciphertext for Data and
// Close frames and handshake material for the rest.
type Frame struct {
	Type    FrameType
	Seq     uint64
	Payload []byte
}

// Encode serialises f into a fresh buffer.
func Encode(f Frame) ([]byte, error) {
	if !f.Type.valid() {
		return nil, fmt.Errorf("encode type 0x%02x: %w", uint8(f.Type), domain.ErrMalformedFrame)
	}
	if len(f.Payload) > MaxPayload {
		return nil, fmt.Errorf("encode %d byte payload: %w", len(f.Payload), domain.ErrFrameTooLarge)
	}
	buf := make([]byte, HeaderSize+len(f.Payload))
	buf[0] = byte(f.Type)
	binary.BigEndian.PutUint64(buf[1:9], f.Seq)
	binary.BigEndian.PutUint32(buf[9:13], uint32(len(f.Payload)))
	copy(buf[HeaderSize:], f.Payload)
	return buf, nil
}

// Decode parses one frame from the front of buf and reports how many bytes
// it consumed. A short buffer yields domain.ErrNeedMore with n == 0; the
// caller keeps its bytes and retries once more have arrived. The returned
// payload aliases buf.
func Decode(buf []byte) (Frame, int, error) {
	if len(buf) < HeaderSize {
		return Frame{}, 0, domain.ErrNeedMore
	}
	t := FrameType(buf[0])
	if !t.valid() {
		return Frame{}, 0, fmt.Errorf("decode type 0x%02x: %w", buf[0], domain.ErrMalformedFrame)
	}
	length := binary.BigEndian.Uint32(buf[9:13])
	if length > MaxPayload {
		return Frame{}, 0, fmt.Errorf("decode %d byte payload: %w", length, domain.ErrFrameTooLarge)
	}
	total := HeaderSize + int(length)
	if len(buf) < total {
		return Frame{}, 0, domain.ErrNeedMore
	}
	f := Frame{
		Type:    t,
		Seq:     binary.BigEndian.Uint64(buf[1:9]),
		Payload: buf[HeaderSize:total],
	}
	return f, total, nil
}
