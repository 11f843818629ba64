// Package channel is the byte-stream driver for one secure channel. It
// owns the full lifecycle: framing, the handshake, and the established
// session.
//
// The channel is transport agnostic. Callers feed it whatever bytes
// arrived, in whatever fragmentation, and drain the bytes it wants sent;
// decoded application messages and lifecycle changes come back as events.
// The transport package pumps a channel over a net.Conn, but anything
// that moves bytes both ways works.
package channel
