// Package handshake drives the authenticated key-agreement exchange that
// precedes every session.
//
// The exchange is four frames. The initiator opens with an Offer carrying
// its suite, identity key, and ephemeral material, signed over the running
// transcript. The responder answers with a Reply in the same shape, then
// each side proves possession of the derived keys with a Confirm tag. A
// side only reports Established after verifying the peer's tag, so a
// failed authentication can never yield a usable session.
//
// Any verification failure is terminal: the machine wipes its key material,
// enters the Failed state, and rejects every further frame.
package handshake
