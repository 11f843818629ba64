package crypto

import (
	"crypto/sha256"
	"hash"
)

// Transcript accumulates a running SHA-256 over every handshake byte
// exchanged so far. Session keys and confirmation tags are computed over
// its digest, binding them to the entire exchange.
type Transcript struct {
	h hash.Hash
}

// NewTranscript starts a transcript seeded with a protocol label so
// digests from different protocols or versions can never collide.
func NewTranscript(label string) *Transcript {
	t := &Transcript{h: sha256.New()}
	t.h.Write([]byte(label))
	return t
}

// Append absorbs b into the transcript.
func (t *Transcript) Append(b []byte) {
	t.h.Write(b)
}

// Sum returns the digest of everything absorbed so far without
// disturbing the running state.
func (t *Transcript) Sum() []byte {
	return t.h.Sum(nil)
}
