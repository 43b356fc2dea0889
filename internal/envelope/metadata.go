package envelope

import (
	"encoding/json"
	"strings"

	"github.com/CrispStrobe/filen-dart/internal/model"
)

// DecodeFileMetadata decrypts a file's metadata envelope under the caller's
// master-key ring and parses the resulting JSON object. The metadata
// envelope is authoritative for file handles; per-field envelopes (name,
// size, mime) are write-only inputs to the server and are never read back.
func DecodeFileMetadata(masterKeyCandidates [][]byte, metadataEnvelope string) (model.DecryptedMetadata, error) {
	var out model.DecryptedMetadata
	plaintext, err := DecodeWithKeyRing(masterKeyCandidates, metadataEnvelope)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(plaintext, &out); err != nil {
		return out, ErrDecryptFailed
	}
	return out, nil
}

// EncodeFileMetadata encrypts a DecryptedMetadata payload under the
// identity's current master key, producing the envelope a finalize or
// rename call sends to the server.
func EncodeFileMetadata(masterKey []byte, meta model.DecryptedMetadata) (string, error) {
	plaintext, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return Encode002(masterKey, plaintext)
}

// DecodeFolderName decrypts a folder name envelope, accepting both the raw
// UTF-8 string and the {"name": "..."} JSON object variants. The
// discriminator is the leading byte of the decrypted plaintext: '{' means
// JSON, anything else means a literal string.
func DecodeFolderName(masterKeyCandidates [][]byte, nameEnvelope string) (string, error) {
	plaintext, err := DecodeWithKeyRing(masterKeyCandidates, nameEnvelope)
	if err != nil {
		return "", err
	}
	trimmed := strings.TrimSpace(string(plaintext))
	if strings.HasPrefix(trimmed, "{") {
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(plaintext, &raw); err != nil {
			return "", ErrMalformedEnvelope
		}
		if _, ok := raw["name"]; !ok {
			return "", ErrMalformedEnvelope
		}
		var payload model.FolderNamePayload
		if err := json.Unmarshal(plaintext, &payload); err != nil {
			return "", ErrMalformedEnvelope
		}
		return payload.Name, nil
	}
	return string(plaintext), nil
}

// EncodeFolderName encrypts a folder name as the {"name": "..."} JSON object
// variant (the variant this codec always writes; the raw-string variant is
// decode-only, for compatibility with older records).
func EncodeFolderName(masterKey []byte, name string) (string, error) {
	plaintext, err := json.Marshal(model.FolderNamePayload{Name: name})
	if err != nil {
		return "", err
	}
	return Encode002(masterKey, plaintext)
}
