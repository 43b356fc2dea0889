package cryptoutil

import (
	"crypto/aes"
	"crypto/cipher"
)

// SealGCM encrypts plaintext under key with a caller-supplied 96-bit iv,
// returning iv || ciphertext || tag (the GCM implementation appends the tag).
// key must be 32 bytes (AES-256); iv must be 12 bytes.
func SealGCM(key, iv, plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	ciphertext := gcm.Seal(nil, iv, plaintext, nil)
	out := make([]byte, 0, len(iv)+len(ciphertext))
	out = append(out, iv...)
	out = append(out, ciphertext...)
	return out, nil
}

// OpenGCM splits the first ivLen bytes off sealed as the nonce and decrypts
// the remainder, rejecting any tag mismatch with ErrDecryptFailed.
func OpenGCM(key []byte, ivLen int, sealed []byte) ([]byte, error) {
	if len(sealed) < ivLen {
		return nil, ErrShortCiphertext
	}
	iv := sealed[:ivLen]
	ciphertext := sealed[ivLen:]

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	plaintext, err := gcm.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptFailed
	}
	return plaintext, nil
}
