// Package crypto exposes the primitives the sealink protocol consumes.
//
// Contents
//
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     SignEd25519, VerifyEd25519)
//   - Ephemeral key agreement behind the Exchange interface, with a pure
//     X25519 suite and an X25519+Kyber768 hybrid suite
//   - A running handshake transcript hash (Transcript)
//   - Session key derivation bound to the transcript (SessionSecret,
//     DeriveKeys)
//   - Sequence-bound authenticated encryption for data frames (Seal, Open)
//   - Key-confirmation tags (ConfirmTag, VerifyConfirmTag)
//   - Short public-key fingerprints for display (Fingerprint)
//
// # Notes
//
// The protocol packages never touch raw key bytes outside these
// operations. Every function that needs randomness takes an explicit
// io.Reader so ephemeral key generation is deterministic under test.
// Callers should treat returned secrets as sensitive and wipe them via
// memzero when their lifetime ends.
package crypto
