package upload_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrispStrobe/filen-dart/internal/cache"
	"github.com/CrispStrobe/filen-dart/internal/filecodec"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/transport"
	"github.com/CrispStrobe/filen-dart/internal/upload"
)

func testIdentity() model.Identity {
	return model.Identity{
		Email:        "user@example.com",
		MasterKeys:   []string{"0123456789abcdef0123456789abcdef"},
		BaseFolderID: "root0",
	}
}

func TestUpload_EmptyFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v3/upload/empty", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": json.RawMessage(`{}`)})
	}))
	defer srv.Close()

	empty := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	tr := transport.New(srv.URL, srv.URL, srv.URL, "token", 1, 5*time.Second, nil)
	eng := upload.New(tr, cache.New(time.Minute), testIdentity(), 0, nil)

	res, err := eng.Upload(context.Background(), upload.Input{LocalPath: empty, ParentID: "root0", Name: "empty.txt"})
	require.NoError(t, err)
	require.NotEmpty(t, res.FileID)
	require.Equal(t, uint64(0), res.Size)
}

func TestUpload_ChunkedSuccess(t *testing.T) {
	var chunkCalls int32
	var doneBody transport.UploadDoneRequest

	mux := http.NewServeMux()
	mux.HandleFunc("/v3/upload", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&chunkCalls, 1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v3/upload/done", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&doneBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": json.RawMessage(`{}`)})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data.bin")
	content := make([]byte, int(filecodec.ChunkSize)+500)
	for i := range content {
		content[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, content, 0o644))

	tr := transport.New(srv.URL, srv.URL, srv.URL, "token", 1, 5*time.Second, nil)
	eng := upload.New(tr, cache.New(time.Minute), testIdentity(), 5*time.Second, nil)

	var progressCalls int
	res, err := eng.Upload(context.Background(), upload.Input{
		LocalPath: path, ParentID: "root0", Name: "data.bin",
		OnProgress: func(chunksDone, totalChunks int, bytesDone, totalBytes uint64) { progressCalls++ },
	})
	require.NoError(t, err)
	require.Equal(t, uint64(len(content)), res.Size)
	require.NotEmpty(t, res.TotalHashHex)
	require.EqualValues(t, 2, atomic.LoadInt32(&chunkCalls))
	require.Equal(t, 2, progressCalls)
	require.EqualValues(t, 2, doneBody.Chunks)
}

func TestUpload_ChunkFailureReturnsResumableError(t *testing.T) {
	var chunkCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v3/upload", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&chunkCalls, 1)
		if n == 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data.bin")
	content := make([]byte, int(filecodec.ChunkSize)*2)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	tr := transport.New(srv.URL, srv.URL, srv.URL, "token", 0, 5*time.Second, nil)
	eng := upload.New(tr, cache.New(time.Minute), testIdentity(), 5*time.Second, nil)

	_, err := eng.Upload(context.Background(), upload.Input{LocalPath: path, ParentID: "root0", Name: "data.bin"})
	require.Error(t, err)

	var resumable *upload.ChunkUploadFailedError
	require.True(t, errors.As(err, &resumable))
	require.Equal(t, 0, resumable.LastSuccessfulChunk)
	require.NotEmpty(t, resumable.FileID)
	require.NotEmpty(t, resumable.UploadKey)
}
