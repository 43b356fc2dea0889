// Package download implements the download engine: fetch the file
// record, decrypt metadata to obtain the file key and chunk layout, then
// stream (or range-read) chunks to a local writer.
package download

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/directory"
	"github.com/CrispStrobe/filen-dart/internal/filecodec"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/transport"
)

// ProgressFunc reports chunk-level download progress.
type ProgressFunc func(chunksDone, totalChunks int, bytesDone, totalBytes uint64)

// Range is an inclusive byte range for a partial download.
type Range struct {
	Start uint64
	End   uint64
}

// Input describes one download invocation.
type Input struct {
	FileID          string
	DestinationPath string // defaults to the decrypted name if empty
	Range           *Range
	OnProgress      ProgressFunc
}

// Result is returned on success.
type Result struct {
	BytesWritten       uint64
	Filename           string
	ModificationTimeMs *int64
}

// Engine drives downloads for one Identity.
type Engine struct {
	Transport *transport.Client
	Directory *directory.Service
	Log       logrus.FieldLogger
}

// New builds a download Engine.
func New(tr *transport.Client, dir *directory.Service, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{Transport: tr, Directory: dir, Log: log}
}

// Download fetches in.FileID's record, decrypts it, and writes its
// plaintext to in.DestinationPath (or the ranged subset of it).
func (e *Engine) Download(ctx context.Context, in Input) (Result, error) {
	handle, err := e.Directory.GetFile(ctx, in.FileID)
	if err != nil {
		return Result{}, err
	}

	dest := in.DestinationPath
	if dest == "" {
		dest = handle.Name
	}

	fileKey := cryptoutil.DeriveEnvelopeKey(handle.FileKey)

	out, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return Result{}, err
	}
	defer out.Close()

	var written uint64
	if in.Range != nil {
		written, err = e.downloadRange(ctx, handle, fileKey, out, *in.Range, in.OnProgress)
	} else {
		written, err = e.downloadFull(ctx, handle, fileKey, out, in.OnProgress)
	}
	if err != nil {
		return Result{}, err
	}

	lm := handle.LastModifiedMs
	return Result{BytesWritten: written, Filename: handle.Name, ModificationTimeMs: &lm}, nil
}

func (e *Engine) downloadFull(ctx context.Context, handle model.FileHandle, fileKey []byte, out *os.File, progress ProgressFunc) (uint64, error) {
	var written uint64
	total := int(handle.Chunks)
	for i := 0; i < total; i++ {
		wire, err := e.Transport.DownloadChunk(ctx, handle.Region, handle.Bucket, handle.ID, i)
		if err != nil {
			return written, err
		}
		plaintext, err := filecodec.DecryptChunk(fileKey, wire)
		if err != nil {
			return written, err
		}
		if _, err := out.Write(plaintext); err != nil {
			return written, err
		}
		written += uint64(len(plaintext))
		if progress != nil {
			progress(i+1, total, written, handle.Size)
		}
	}
	return written, nil
}

// downloadRange implements the ranged-read protocol: compute the
// chunk span covering [start, end], fetch and decrypt each, and slice the
// two boundary chunks to the requested byte offsets.
func (e *Engine) downloadRange(ctx context.Context, handle model.FileHandle, fileKey []byte, out *os.File, r Range, progress ProgressFunc) (uint64, error) {
	startChunk := uint32(r.Start / filecodec.ChunkSize)
	endChunk := uint32(r.End / filecodec.ChunkSize)

	var written uint64
	total := int(endChunk-startChunk) + 1
	for i := startChunk; i <= endChunk; i++ {
		wire, err := e.Transport.DownloadChunk(ctx, handle.Region, handle.Bucket, handle.ID, int(i))
		if err != nil {
			return written, err
		}
		plaintext, err := filecodec.DecryptChunk(fileKey, wire)
		if err != nil {
			return written, err
		}

		chunkStart := uint64(i) * filecodec.ChunkSize
		loOffset := uint64(0)
		hiOffset := uint64(len(plaintext))
		if i == startChunk && r.Start > chunkStart {
			loOffset = r.Start - chunkStart
		}
		if i == endChunk {
			chunkEndExclusive := chunkStart + uint64(len(plaintext))
			if r.End+1 < chunkEndExclusive {
				hiOffset = r.End + 1 - chunkStart
			}
		}
		slice := plaintext[loOffset:hiOffset]

		if _, err := out.Write(slice); err != nil {
			return written, err
		}
		written += uint64(len(slice))
		if progress != nil {
			progress(int(i-startChunk)+1, total, written, r.End-r.Start+1)
		}
	}
	return written, nil
}
