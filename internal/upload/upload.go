// Package upload implements the upload engine: it drives the chunk
// pipeline, emits chunk-level progress, finalizes the remote file record,
// and raises a resumable error carrying the (file_id, upload_key,
// last_successful_chunk) triple on partial failure.
package upload

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CrispStrobe/filen-dart/internal/cache"
	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/envelope"
	"github.com/CrispStrobe/filen-dart/internal/filecodec"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/transport"
)

// ProgressFunc reports chunk-level upload progress via an explicit
// callback parameter, never hidden global state.
type ProgressFunc func(chunksDone, totalChunks int, bytesDone, totalBytes uint64)

// OnStartFunc fires exactly once, only on a fresh (non-resumed) upload,
// before the first chunk ships, so the batch controller can persist the
// resume triple before any bytes move.
type OnStartFunc func(fileID, uploadKey string)

// ChunkUploadFailedError is the resumable error: it carries enough
// state for the batch controller to persist a resume point and retry later.
type ChunkUploadFailedError struct {
	FileID              string
	UploadKey           string
	LastSuccessfulChunk int // -1 if no chunk ever succeeded
	Cause               error
}

func (e *ChunkUploadFailedError) Error() string {
	return fmt.Sprintf("upload: chunk upload failed after chunk %d: %v", e.LastSuccessfulChunk, e.Cause)
}

func (e *ChunkUploadFailedError) Unwrap() error { return e.Cause }

// Input describes one upload invocation, covering both a fresh upload and a
// resume.
type Input struct {
	LocalPath string
	ParentID  string
	Name      string // target remote name; defaults to filepath.Base(LocalPath)

	// Resume state; both nil on a fresh upload.
	FileID    *string
	UploadKey *string
	// ResumeFromChunk is the first chunk index to (re)send. Only meaningful
	// when FileID/UploadKey are set.
	ResumeFromChunk int

	CreationTimeMs     *int64
	ModificationTimeMs *int64

	OnProgress ProgressFunc
	OnStart    OnStartFunc
}

// Result is returned on a fully successful upload.
type Result struct {
	FileID       string
	TotalHashHex string
	Size         uint64
}

// Engine drives uploads for one Identity.
type Engine struct {
	Transport    *transport.Client
	Cache        *cache.Listing
	Identity     model.Identity
	ChunkTimeout time.Duration
	Log          logrus.FieldLogger
}

// New builds an upload Engine.
func New(tr *transport.Client, c *cache.Listing, id model.Identity, chunkTimeout time.Duration, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if chunkTimeout == 0 {
		chunkTimeout = 30 * time.Second
	}
	return &Engine{Transport: tr, Cache: c, Identity: id, ChunkTimeout: chunkTimeout, Log: log}
}

func (e *Engine) masterKey() []byte {
	return cryptoutil.DeriveEnvelopeKey(e.Identity.CurrentMasterKey())
}

func (e *Engine) hashName(name string) string {
	hmacKey := cryptoutil.DeriveFilenameHMACKey(e.Identity.CurrentMasterKey(), e.Identity.Email)
	return cryptoutil.HashFilename(hmacKey, name)
}

// deriveFileKey produces the 32-character ASCII file key for a chunked
// upload deterministically from its (fileID, uploadKey) pair, so a resumed
// attempt reproduces the exact key its already-uploaded chunks were
// encrypted under without needing a third persisted field.
func deriveFileKey(fileID, uploadKey string) string {
	raw := cryptoutil.DeriveEnvelopeKey(fileID + ":" + uploadKey)
	out := make([]byte, len(raw))
	for i, b := range raw {
		out[i] = cryptoutil.RandomAlphabet[int(b)%len(cryptoutil.RandomAlphabet)]
	}
	return string(out)
}

func guessMime(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return "application/octet-stream"
	}
	t := mime.TypeByExtension(ext)
	if t == "" {
		return "application/octet-stream"
	}
	return t
}

// Upload runs one upload to completion, or returns a ChunkUploadFailedError
// carrying resume state.
func (e *Engine) Upload(ctx context.Context, in Input) (Result, error) {
	info, err := os.Stat(in.LocalPath)
	if err != nil {
		return Result{}, err
	}
	size := uint64(info.Size())
	name := in.Name
	if name == "" {
		name = filepath.Base(in.LocalPath)
	}

	lastModified := model.NowMillis()
	if in.ModificationTimeMs != nil {
		lastModified = *in.ModificationTimeMs
	} else if in.CreationTimeMs != nil {
		lastModified = *in.CreationTimeMs
	}

	if size == 0 {
		return e.uploadEmpty(ctx, in, name, lastModified)
	}
	return e.uploadChunked(ctx, in, name, size, lastModified)
}

func (e *Engine) uploadEmpty(ctx context.Context, in Input, name string, lastModified int64) (Result, error) {
	fileID, err := cryptoutil.NewUUID()
	if err != nil {
		return Result{}, err
	}
	fileKeyStr, err := cryptoutil.RandomString(32)
	if err != nil {
		return Result{}, err
	}
	mimeType := guessMime(name)

	encName, err := envelope.Encode002(cryptoutil.DeriveEnvelopeKey(fileKeyStr), []byte(name))
	if err != nil {
		return Result{}, err
	}
	encMime, err := envelope.Encode002(cryptoutil.DeriveEnvelopeKey(fileKeyStr), []byte(mimeType))
	if err != nil {
		return Result{}, err
	}
	encMeta, err := envelope.EncodeFileMetadata(e.masterKey(), model.DecryptedMetadata{
		Name: name, Size: 0, Mime: mimeType, Key: fileKeyStr, Hash: "", LastModified: lastModified,
	})
	if err != nil {
		return Result{}, err
	}

	err = e.Transport.UploadEmpty(ctx, transport.UploadEmptyRequest{
		UUID:       fileID,
		Name:       encName,
		NameHashed: e.hashName(name),
		Size:       0,
		Parent:     in.ParentID,
		Mime:       encMime,
		Metadata:   encMeta,
		Version:    2,
	})
	if err != nil {
		return Result{}, err
	}

	e.Cache.Invalidate(in.ParentID)
	return Result{FileID: fileID, TotalHashHex: "", Size: 0}, nil
}

func (e *Engine) uploadChunked(ctx context.Context, in Input, name string, size uint64, lastModified int64) (Result, error) {
	var fileID, uploadKey string
	resumeFrom := 0
	resuming := in.FileID != nil && in.UploadKey != nil

	if resuming {
		fileID = *in.FileID
		uploadKey = *in.UploadKey
		resumeFrom = in.ResumeFromChunk
	} else {
		var err error
		fileID, err = cryptoutil.NewUUID()
		if err != nil {
			return Result{}, err
		}
		uploadKey, err = cryptoutil.RandomString(32)
		if err != nil {
			return Result{}, err
		}
		if in.OnStart != nil {
			in.OnStart(fileID, uploadKey)
		}
	}

	// The per-file key must be identical across a resumed attempt's
	// already-shipped chunks and its remaining ones, but the persisted
	// resume triple is only (file_id, upload_key, last_successful_chunk),
	// with no file_key. Rather than widen the persisted state, the key is
	// derived deterministically from (fileID, uploadKey): same pair in,
	// same key out, on every attempt, fresh or resumed, with no extra
	// durable field required.
	fileKeyStr := deriveFileKey(fileID, uploadKey)
	fileKey := cryptoutil.DeriveEnvelopeKey(fileKeyStr)

	f, err := os.Open(in.LocalPath)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	totalChunks := model.ChunkCount(size, filecodec.ChunkSize)

	var hasher *cryptoutil.StreamingHash
	if resuming && resumeFrom > 0 {
		hasher, err = filecodec.RehashPriorChunks(f, size, uint32(resumeFrom))
		if err != nil {
			return Result{}, err
		}
	} else {
		hasher = cryptoutil.NewStreamingHash()
	}

	var bytesDone uint64
	for i := uint32(resumeFrom); i < totalChunks; i++ {
		n := filecodec.ChunkSizeFor(size, i)
		plaintext, err := filecodec.ReadChunk(f, i, n)
		if err != nil {
			return Result{}, &ChunkUploadFailedError{FileID: fileID, UploadKey: uploadKey, LastSuccessfulChunk: int(i) - 1, Cause: err}
		}
		if _, err := hasher.Write(plaintext); err != nil {
			return Result{}, &ChunkUploadFailedError{FileID: fileID, UploadKey: uploadKey, LastSuccessfulChunk: int(i) - 1, Cause: err}
		}

		enc, err := filecodec.EncryptChunk(fileKey, plaintext)
		if err != nil {
			return Result{}, &ChunkUploadFailedError{FileID: fileID, UploadKey: uploadKey, LastSuccessfulChunk: int(i) - 1, Cause: err}
		}

		if err := e.Transport.UploadChunk(ctx, fileID, int(i), in.ParentID, uploadKey, enc.HashHex, enc.Ciphertext, e.ChunkTimeout); err != nil {
			e.Log.WithError(err).WithField("chunk", i).Warn("upload: chunk failed")
			return Result{}, &ChunkUploadFailedError{FileID: fileID, UploadKey: uploadKey, LastSuccessfulChunk: int(i) - 1, Cause: err}
		}

		bytesDone += uint64(n)
		if in.OnProgress != nil {
			in.OnProgress(int(i)+1, int(totalChunks), bytesDone, size)
		}
	}

	totalHash := hasher.SumHex()

	mimeType := guessMime(name)
	encName, err := envelope.Encode002(fileKey, []byte(name))
	if err != nil {
		return Result{}, err
	}
	encMime, err := envelope.Encode002(fileKey, []byte(mimeType))
	if err != nil {
		return Result{}, err
	}
	encMeta, err := envelope.EncodeFileMetadata(e.masterKey(), model.DecryptedMetadata{
		Name: name, Size: size, Mime: mimeType, Key: fileKeyStr, Hash: totalHash, LastModified: lastModified,
	})
	if err != nil {
		return Result{}, err
	}
	rm, err := cryptoutil.RandomString(32)
	if err != nil {
		return Result{}, err
	}

	err = e.Transport.UploadDone(ctx, transport.UploadDoneRequest{
		UUID:       fileID,
		Name:       encName,
		NameHashed: e.hashName(name),
		Size:       size,
		Chunks:     totalChunks,
		Mime:       encMime,
		Rm:         rm,
		Metadata:   encMeta,
		Version:    2,
		UploadKey:  uploadKey,
	})
	if err != nil {
		return Result{}, err
	}

	e.Cache.Invalidate(in.ParentID)
	return Result{FileID: fileID, TotalHashHex: totalHash, Size: size}, nil
}
