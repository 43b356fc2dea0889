package cryptoutil

import (
	"crypto/sha512"
	"encoding/hex"
	"hash"
)

// StreamingHash wraps a running SHA-512 state so the file codec (4.F) can
// feed it chunk by chunk, including during resume re-hashing, without
// buffering the whole plaintext.
type StreamingHash struct {
	h hash.Hash
}

// NewStreamingHash starts a fresh SHA-512 accumulator.
func NewStreamingHash() *StreamingHash {
	return &StreamingHash{h: sha512.New()}
}

// Write feeds plaintext into the running hash.
func (s *StreamingHash) Write(p []byte) (int, error) {
	return s.h.Write(p)
}

// SumHex returns the lowercase hex digest of everything written so far. It
// does not reset the underlying state.
func (s *StreamingHash) SumHex() string {
	return hex.EncodeToString(s.h.Sum(nil))
}

// SHA512Hex is a one-shot convenience wrapper used for per-chunk ciphertext
// hashing: SHA-512 of the ciphertext with the IV prepended.
func SHA512Hex(data []byte) string {
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:])
}
