package domain

import "errors"

// Protocol error vocabulary. Every verification failure is fatal to the
// session it occurs on; ErrNeedMore is the single non-fatal condition and
// signals the caller to supply more bytes before retrying a decode.
var (
	// ErrNeedMore indicates a partial frame; feed more bytes and retry.
	ErrNeedMore = errors.New("need more data")

	// ErrMalformedFrame indicates a structurally invalid frame: unknown
	// type tag or length fields inconsistent with the buffer.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrFrameTooLarge indicates a declared payload length above the
	// fixed maximum frame size.
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")

	// ErrAuthenticationFailed indicates a signature, confirmation tag,
	// or AEAD tag that did not verify.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrProtocolViolation indicates a frame that is out of sequence or
	// unexpected for the current state.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrReplayOrReorder indicates a data frame whose sequence number is
	// not the expected next value.
	ErrReplayOrReorder = errors.New("replayed or reordered frame")

	// ErrKeyExhaustion indicates the send counter is about to wrap; the
	// session must be torn down and a fresh handshake performed.
	ErrKeyExhaustion = errors.New("sequence counter exhausted")

	// ErrSessionClosed indicates the session has ended, either by a
	// close frame from the peer or by a local Close.
	ErrSessionClosed = errors.New("session closed")

	// ErrPeerAbort indicates the peer sent a plaintext abort frame.
	ErrPeerAbort = errors.New("peer aborted the channel")
)
