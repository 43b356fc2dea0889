// Package filecodec implements the chunked encrypt-on-read and
// decrypt-on-write pipelines, plus the total-hash continuation that
// makes an interrupted upload resumable without corrupting the final
// plaintext hash.
package filecodec

import (
	"io"
	"os"

	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/model"
)

// ChunkSize is the fixed chunk length: exactly 1 MiB.
const ChunkSize = 1 << 20

// ChunkSizeFor returns the byte length of chunk index i (0-based) for a file
// of the given total size: ChunkSize for every chunk but the last, which is
// size mod ChunkSize (or a full ChunkSize if size is an exact multiple).
func ChunkSizeFor(size uint64, index uint32) int {
	chunks := model.ChunkCount(size, ChunkSize)
	if chunks == 0 {
		return 0
	}
	if index < chunks-1 {
		return ChunkSize
	}
	last := size % ChunkSize
	if last == 0 {
		return ChunkSize
	}
	return int(last)
}

// EncryptedChunk is one ciphertext unit ready to ship: the wire bytes
// (IV || ciphertext || tag) and its own content hash.
type EncryptedChunk struct {
	Ciphertext []byte
	HashHex    string
}

// EncryptChunk implements the per-chunk half of the encrypt pipeline: the
// plaintext has already been fed to the running total hash by the caller
// before this is called. It encrypts under fileKey with a fresh
// random 12-byte IV, prepends the IV, and computes the content hash over
// the IV-prefixed ciphertext.
func EncryptChunk(fileKey []byte, plaintext []byte) (EncryptedChunk, error) {
	iv, err := cryptoutil.RandomBytes(12)
	if err != nil {
		return EncryptedChunk{}, err
	}
	sealed, err := cryptoutil.SealGCM(fileKey, iv, plaintext)
	if err != nil {
		return EncryptedChunk{}, err
	}
	return EncryptedChunk{
		Ciphertext: sealed,
		HashHex:    cryptoutil.SHA512Hex(sealed),
	}, nil
}

// DecryptChunk implements the per-chunk decrypt pipeline: the first
// 12 bytes of the fetched chunk are the IV, the remainder is
// ciphertext+tag.
func DecryptChunk(fileKey []byte, wire []byte) ([]byte, error) {
	return cryptoutil.OpenGCM(fileKey, 12, wire)
}

// ReadChunk reads exactly n bytes for chunk index from an *os.File opened
// for random access, at the chunk's fixed offset.
func ReadChunk(f *os.File, index uint32, n int) ([]byte, error) {
	buf := make([]byte, n)
	offset := int64(index) * ChunkSize
	if _, err := f.ReadAt(buf, offset); err != nil && err != io.EOF {
		return nil, err
	}
	return buf, nil
}

// RehashPriorChunks re-reads local plaintext chunks [0, throughIndex) and
// feeds them to a fresh StreamingHash, without re-encrypting or
// re-uploading anything. The resume upper bound is exclusive: throughIndex
// itself is not included, matching "last_successful_chunk" semantics in
// the upload engine. Invoked only on resume, to continue the total hash
// without re-uploading already-shipped chunks.
func RehashPriorChunks(f *os.File, size uint64, throughIndexExclusive uint32) (*cryptoutil.StreamingHash, error) {
	h := cryptoutil.NewStreamingHash()
	for i := uint32(0); i < throughIndexExclusive; i++ {
		n := ChunkSizeFor(size, i)
		chunk, err := ReadChunk(f, i, n)
		if err != nil {
			return nil, err
		}
		if _, err := h.Write(chunk); err != nil {
			return nil, err
		}
	}
	return h, nil
}
