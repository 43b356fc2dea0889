package cryptoutil

import (
	"crypto/rand"

	"github.com/google/uuid"
)

// RandomAlphabet is the 64-character alphabet random strings (file keys,
// upload keys, IV text, identifier padding) are drawn from.
const RandomAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// RandomString returns a cryptographically random string of length n drawn
// from RandomAlphabet.
func RandomString(n int) (string, error) {
	idx := make([]byte, n)
	if _, err := rand.Read(idx); err != nil {
		return "", err
	}
	out := make([]byte, n)
	for i, b := range idx {
		out[i] = RandomAlphabet[int(b)%len(RandomAlphabet)]
	}
	return string(out), nil
}

// RandomBytes returns n cryptographically random bytes.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}

// NewUUID generates an RFC 4122 v4 identifier formatted 8-4-4-4-12. Delegated
// to google/uuid, which already performs the v4 bit-patching.
func NewUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
