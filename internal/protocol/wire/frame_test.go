package wire_test

import (
	"bytes"
	"errors"
	"testing"

	"sealink/internal/domain"
	"sealink/internal/protocol/wire"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	frames := []wire.Frame{
		{Type: wire.TypeOffer, Seq: 0, Payload: []byte("offer material")},
		{Type: wire.TypeReply, Seq: 1, Payload: []byte("reply material")},
		{Type: wire.TypeConfirm, Seq: 2, Payload: bytes.Repeat([]byte{0xab}, 32)},
		{Type: wire.TypeData, Seq: 7, Payload: []byte("ciphertext")},
		{Type: wire.TypeClose, Seq: 8, Payload: []byte("tag only")},
		{Type: wire.TypeAbort, Seq: 0, Payload: nil},
	}
	for _, want := range frames {
		encoded, err := wire.Encode(want)
		if err != nil {
			t.Fatalf("Encode(%v): %v", want.Type, err)
		}
		got, n, err := wire.Decode(encoded)
		if err != nil {
			t.Fatalf("Decode(%v): %v", want.Type, err)
		}
		if n != len(encoded) {
			t.Fatalf("Decode consumed %d of %d bytes", n, len(encoded))
		}
		if got.Type != want.Type || got.Seq != want.Seq || !bytes.Equal(got.Payload, want.Payload) {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
		}
	}
}

func TestDecodeNeedsMoreData(t *testing.T) {
	encoded, err := wire.Encode(wire.Frame{Type: wire.TypeData, Seq: 3, Payload: []byte("hello, world")})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	for cut := 0; cut < len(encoded); cut++ {
		_, n, err := wire.Decode(encoded[:cut])
		if !errors.Is(err, domain.ErrNeedMore) {
			t.Fatalf("Decode with %d bytes: got %v, want ErrNeedMore", cut, err)
		}
		if n != 0 {
			t.Fatalf("Decode with %d bytes consumed %d", cut, n)
		}
	}
}

func TestDecodeTwoFramesFromOneBuffer(t *testing.T) {
	first, _ := wire.Encode(wire.Frame{Type: wire.TypeData, Seq: 1, Payload: []byte("one")})
	second, _ := wire.Encode(wire.Frame{Type: wire.TypeData, Seq: 2, Payload: []byte("two")})
	buf := append(append([]byte{}, first...), second...)

	f, n, err := wire.Decode(buf)
	if err != nil {
		t.Fatalf("first Decode: %v", err)
	}
	if f.Seq != 1 || string(f.Payload) != "one" {
		t.Fatalf("first frame: %+v", f)
	}
	f, _, err = wire.Decode(buf[n:])
	if err != nil {
		t.Fatalf("second Decode: %v", err)
	}
	if f.Seq != 2 || string(f.Payload) != "two" {
		t.Fatalf("second frame: %+v", f)
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	encoded, _ := wire.Encode(wire.Frame{Type: wire.TypeData, Seq: 0, Payload: []byte("x")})
	encoded[0] = 0x7f
	if _, _, err := wire.Decode(encoded); !errors.Is(err, domain.ErrMalformedFrame) {
		t.Fatalf("got %v, want ErrMalformedFrame", err)
	}
	encoded[0] = 0x00
	if _, _, err := wire.Decode(encoded); !errors.Is(err, domain.ErrMalformedFrame) {
		t.Fatalf("got %v, want ErrMalformedFrame", err)
	}
}

func TestDecodeRejectsOversizeBeforePayload(t *testing.T) {
	// Header alone declares an oversize payload; no payload bytes follow.
	header := make([]byte, wire.HeaderSize)
	header[0] = byte(wire.TypeData)
	header[9] = 0xff
	header[10] = 0xff
	header[11] = 0xff
	header[12] = 0xff
	if _, _, err := wire.Decode(header); !errors.Is(err, domain.ErrFrameTooLarge) {
		t.Fatalf("got %v, want ErrFrameTooLarge", err)
	}
}

func TestEncodeRejectsOversizePayload(t *testing.T) {
	f := wire.Frame{Type: wire.TypeData, Payload: make([]byte, wire.MaxPayload+1)}
	if _, err := wire.Encode(f); !errors.Is(err, domain.ErrFrameTooLarge) {
		t.Fatalf("got %v, want ErrFrameTooLarge", err)
	}
}

func TestEncodeAcceptsMaxPayload(t *testing.T) {
	f := wire.Frame{Type: wire.TypeData, Payload: make([]byte, wire.MaxPayload)}
	encoded, err := wire.Encode(f)
	if err != nil {
		t.Fatalf("Encode at limit: %v", err)
	}
	if _, _, err := wire.Decode(encoded); err != nil {
		t.Fatalf("Decode at limit: %v", err)
	}
}

func TestEncodeRejectsUnknownType(t *testing.T) {
	if _, err := wire.Encode(wire.Frame{Type: 0x42}); !errors.Is(err, domain.ErrMalformedFrame) {
		t.Fatalf("got %v, want ErrMalformedFrame", err)
	}
}
