// Package cryptoutil implements the cryptographic primitives:
// password-derived keys, AES-256-GCM, HMAC-SHA-256 filename hashing,
// streaming SHA-512, and secure random generation. It deliberately
// reproduces the legacy PBKDF2(iter=1) envelope-key construction byte for
// byte rather than "fixing" it; this is a wire-compatibility requirement,
// not an oversight.
package cryptoutil

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// LoginPBKDF2Iterations is the iteration count for deriving a session
	// key from a user's password.
	LoginPBKDF2Iterations = 200000
	// LoginPBKDF2KeyLen is the derived-key length in bytes (64 -> 128 hex chars).
	LoginPBKDF2KeyLen = 64
	// EnvelopeKDFIterations is the legacy single-iteration construction used
	// to derive an AES key from a text envelope key.
	EnvelopeKDFIterations = 1
	// EnvelopeKeyLen is the AES-256 key length in bytes.
	EnvelopeKeyLen = 32
)

// AuthVersion identifies the password-hashing scheme a given account uses.
type AuthVersion int

const (
	AuthVersion1 AuthVersion = 1 // legacy
	AuthVersion2 AuthVersion = 2 // current
)

// DerivedLogin is the pair of values produced from a password and salt that
// the login flow needs: the key used to decrypt the account's master key
// material, and the password value actually transmitted to the server.
type DerivedLogin struct {
	LocalMasterKey string
	LoginPassword  string
}

// DeriveLogin computes the password-derived local key and login password for
// the given auth version.
func DeriveLogin(password, salt string, version AuthVersion) (DerivedLogin, error) {
	dk := pbkdf2.Key([]byte(password), []byte(salt), LoginPBKDF2Iterations, LoginPBKDF2KeyLen, sha512.New)
	dkHex := hex.EncodeToString(dk) // 128 lowercase hex chars

	switch version {
	case AuthVersion1:
		return DerivedLogin{
			LocalMasterKey: dkHex,
			LoginPassword:  dkHex,
		}, nil
	case AuthVersion2:
		localMasterKey := dkHex[:64]
		sum := sha512.Sum512([]byte(dkHex[64:128]))
		return DerivedLogin{
			LocalMasterKey: localMasterKey,
			LoginPassword:  strings.ToLower(hex.EncodeToString(sum[:])),
		}, nil
	default:
		return DerivedLogin{}, ErrUnsupportedAuthVersion
	}
}

// DeriveEnvelopeKey reproduces the legacy single-iteration PBKDF2 construction
// used to turn a printable text envelope key into a 32-byte AES key: the key
// and salt are both the UTF-8 bytes of k itself.
func DeriveEnvelopeKey(k string) []byte {
	return pbkdf2.Key([]byte(k), []byte(k), EnvelopeKDFIterations, EnvelopeKeyLen, sha512.New)
}

// DeriveFilenameHMACKey derives the per-identity key used to compute
// deterministic filename hashes.
func DeriveFilenameHMACKey(lastMasterKey, email string) []byte {
	return pbkdf2.Key([]byte(lastMasterKey), []byte(strings.ToLower(email)), EnvelopeKDFIterations, EnvelopeKeyLen, sha512.New)
}

// HashFilename computes the deterministic, lowercase-hex HMAC-SHA-256 of a
// lowercased filename under the given per-identity key.
func HashFilename(hmacKey []byte, name string) string {
	mac := hmac.New(sha256.New, hmacKey)
	mac.Write([]byte(strings.ToLower(name)))
	return strings.ToLower(hex.EncodeToString(mac.Sum(nil)))
}
