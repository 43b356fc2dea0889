// Package envelope implements the "002" text envelope: a version tag,
// a 12-character ASCII nonce, and a standard-base64 AES-256-GCM ciphertext.
package envelope

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
)

const (
	versionPrefix = "002"
	ivLen         = 12
)

var (
	// ErrBadPrefix is returned when an envelope does not begin with "002".
	ErrBadPrefix = errors.New("envelope: unrecognized version prefix")
	// ErrDecryptFailed is returned once every master key in a ring has been
	// tried and none of them opened the envelope.
	ErrDecryptFailed = errors.New("envelope: decryption failed under all candidate keys")
	// ErrMalformedEnvelope is returned when an envelope decrypts cleanly but
	// its plaintext does not match either accepted shape (e.g. a JSON object
	// folder name with no "name" key).
	ErrMalformedEnvelope = errors.New("envelope: decrypted payload has unrecognized shape")
)

// Encode002 builds a "002" envelope over plaintext using key (already
// derived to a 32-byte AES key by the caller, e.g. via
// cryptoutil.DeriveEnvelopeKey). It generates a fresh 12-character nonce.
func Encode002(key, plaintext []byte) (string, error) {
	iv, err := cryptoutil.RandomString(ivLen)
	if err != nil {
		return "", err
	}
	sealed, err := cryptoutil.SealGCM(key, []byte(iv), plaintext)
	if err != nil {
		return "", err
	}
	// sealed already has the 12-byte iv prepended by SealGCM; the "002"
	// envelope instead spells the iv out as literal ASCII in the string and
	// base64-encodes only the AEAD output, so split it back off.
	ciphertextAndTag := sealed[ivLen:]
	b64 := base64.StdEncoding.EncodeToString(ciphertextAndTag)
	return versionPrefix + iv + b64, nil
}

// Decode002 opens a "002" envelope under the given already-derived key.
func Decode002(key []byte, env string) ([]byte, error) {
	if !strings.HasPrefix(env, versionPrefix) {
		return nil, ErrBadPrefix
	}
	rest := env[len(versionPrefix):]
	if len(rest) < ivLen {
		return nil, ErrDecryptFailed
	}
	iv := rest[:ivLen]
	b64 := rest[ivLen:]
	ciphertextAndTag, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	sealed := append([]byte(iv), ciphertextAndTag...)
	plaintext, err := cryptoutil.OpenGCM(key, ivLen, sealed)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}

// DecodeWithKeyRing tries Decode002 under each key in candidates, in order
// (the caller supplies them newest-first), returning the first
// success. On exhaustion it returns ErrDecryptFailed.
func DecodeWithKeyRing(candidates [][]byte, env string) ([]byte, error) {
	if !strings.HasPrefix(env, versionPrefix) {
		return nil, ErrBadPrefix
	}
	for _, key := range candidates {
		if plaintext, err := Decode002(key, env); err == nil {
			return plaintext, nil
		}
	}
	return nil, ErrDecryptFailed
}
