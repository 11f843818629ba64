// Package store persists long-term identity keys. The private half lives
// in a passphrase-encrypted envelope; the public half is written alongside
// as plain hex so it can be copied to peers.
package store
