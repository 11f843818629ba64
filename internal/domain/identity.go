package domain

// Identity holds the long-term signing keys that authenticate one end of
// a channel. It is supplied at handshake start and is immutable for the
// session's lifetime.
type Identity struct {
	EdPub  Ed25519Public
	EdPriv Ed25519Private
}

// Fingerprint is a short human-readable digest of a public key.
type Fingerprint string

// IdentityStore persists the long-term identity keys.
type IdentityStore interface {
	SaveIdentity(passphrase string, id Identity) error
	LoadIdentity(passphrase string) (Identity, error)
}
