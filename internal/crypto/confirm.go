package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// ConfirmTagSize is the length of a key-confirmation tag.
const ConfirmTagSize = sha256.Size

// ConfirmTag computes the key-confirmation MAC over the transcript
// digest. Exchanging these tags proves live possession of the derived
// keys before either side trusts the channel.
func ConfirmTag(key, transcriptSum []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(transcriptSum)
	return h.Sum(nil)
}

// VerifyConfirmTag checks tag in constant time.
func VerifyConfirmTag(key, transcriptSum, tag []byte) bool {
	return hmac.Equal(tag, ConfirmTag(key, transcriptSum))
}
