// Package domain holds the shared kernel of sealink: fixed-size key
// types, the long-term identity, the protocol error vocabulary, and the
// storage interface for identities.
//
// Everything here is deliberately free of I/O and of cryptographic
// operations; the types exist so the protocol packages can share a
// vocabulary without importing each other.
package domain
