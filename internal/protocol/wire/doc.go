// Package wire implements the frame codec shared by the handshake and the
// established session.
//
// Every frame is a fixed 13-byte header followed by the payload:
//
//	type   uint8
//	seq    uint64, big endian
//	length uint32, big endian
//
// The header is authenticated indirectly: the type byte is bound into the
// AEAD as associated data and the sequence number into the nonce, so any
// header tampering on a protected frame surfaces as an authentication
// failure rather than silent misrouting.
package wire
