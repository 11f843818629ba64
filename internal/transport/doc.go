// Package transport runs secure channels over real byte streams. It
// dials and accepts TCP connections, performs the handshake with a
// deadline, and exposes an established channel as a message-oriented
// connection. A WebSocket adapter lets the same channel run where raw
// TCP is unavailable.
package transport
