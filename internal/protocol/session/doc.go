// Package session protects application data once a handshake has
// established directional keys.
//
// Each direction carries an independent sequence counter starting at zero;
// every data frame increments the sender's counter and the receiver accepts
// only the exact next value, so replayed, reordered, or dropped frames are
// all rejected. Verification failures are fatal: the affected direction is
// wiped and every later call returns the original error.
package session
