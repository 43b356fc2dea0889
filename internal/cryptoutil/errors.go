package cryptoutil

import "errors"

var (
	// ErrUnsupportedAuthVersion is returned for any auth version other than
	// 1 or 2.
	ErrUnsupportedAuthVersion = errors.New("cryptoutil: unsupported auth version")
	// ErrDecryptFailed is returned when an AEAD tag check fails.
	ErrDecryptFailed = errors.New("cryptoutil: decryption failed")
	// ErrShortCiphertext is returned when a ciphertext is too short to
	// contain an IV.
	ErrShortCiphertext = errors.New("cryptoutil: ciphertext too short")
)
