package crypto

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"sealink/internal/util/memzero"
)

// KeySize is the size of one directional session key.
const KeySize = 32

// DirectionalKeys holds the four keys a session needs: one data key and
// one confirmation key per direction. One peer's Send always equals the
// other's Recv, so a frame can never be reflected back to its sender.
type DirectionalKeys struct {
	Send        []byte
	Recv        []byte
	SendConfirm []byte
	RecvConfirm []byte
}

// Wipe destroys all four keys. Safe to call more than once.
func (k *DirectionalKeys) Wipe() {
	memzero.Zero(k.Send)
	memzero.Zero(k.Recv)
	memzero.Zero(k.SendConfirm)
	memzero.Zero(k.RecvConfirm)
}

// WipeSend destroys the sending-direction keys only.
func (k *DirectionalKeys) WipeSend() {
	memzero.Zero(k.Send)
	memzero.Zero(k.SendConfirm)
}

// WipeRecv destroys the receiving-direction keys only.
func (k *DirectionalKeys) WipeRecv() {
	memzero.Zero(k.Recv)
	memzero.Zero(k.RecvConfirm)
}

// SessionSecret derives the master session secret from the raw exchange
// output and the transcript digest. Mixing the digest in as HKDF salt
// binds the secret to every handshake byte, so substituting any message
// yields a different key on the two sides.
func SessionSecret(shared, transcriptSum []byte) []byte {
	r := hkdf.New(sha256.New, shared, transcriptSum, []byte("sealink v1 master"))
	secret := make([]byte, KeySize)
	_, _ = io.ReadFull(r, secret)
	return secret
}

// DeriveKeys expands the master secret into directional keys. The
// initiator's Send key is the responder's Recv key and vice versa.
func DeriveKeys(secret []byte, initiator bool) *DirectionalKeys {
	r := hkdf.New(sha256.New, secret, nil, []byte("sealink v1 keys"))
	iData := make([]byte, KeySize)
	rData := make([]byte, KeySize)
	iConfirm := make([]byte, KeySize)
	rConfirm := make([]byte, KeySize)
	_, _ = io.ReadFull(r, iData)
	_, _ = io.ReadFull(r, rData)
	_, _ = io.ReadFull(r, iConfirm)
	_, _ = io.ReadFull(r, rConfirm)

	if initiator {
		return &DirectionalKeys{Send: iData, Recv: rData, SendConfirm: iConfirm, RecvConfirm: rConfirm}
	}
	return &DirectionalKeys{Send: rData, Recv: iData, SendConfirm: rConfirm, RecvConfirm: iConfirm}
}
