package download_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrispStrobe/filen-dart/internal/cache"
	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/directory"
	"github.com/CrispStrobe/filen-dart/internal/download"
	"github.com/CrispStrobe/filen-dart/internal/envelope"
	"github.com/CrispStrobe/filen-dart/internal/filecodec"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/transport"
)

const testMasterKey = "0123456789abcdef0123456789abcdef"

func buildServer(t *testing.T, plaintext []byte) (*httptest.Server, string) {
	t.Helper()

	fileKeyStr, err := cryptoutil.RandomString(32)
	require.NoError(t, err)
	fileKey := cryptoutil.DeriveEnvelopeKey(fileKeyStr)

	var chunks [][]byte
	total := uint64(len(plaintext))
	count := model.ChunkCount(total, filecodec.ChunkSize)
	if count == 0 {
		count = 1
	}
	for i := uint32(0); i < count; i++ {
		n := filecodec.ChunkSizeFor(total, i)
		start := int(i) * filecodec.ChunkSize
		end := start + n
		if end > len(plaintext) {
			end = len(plaintext)
		}
		enc, err := filecodec.EncryptChunk(fileKey, plaintext[start:end])
		require.NoError(t, err)
		chunks = append(chunks, enc.Ciphertext)
	}

	metaEnc, err := envelope.EncodeFileMetadata(cryptoutil.DeriveEnvelopeKey(testMasterKey), model.DecryptedMetadata{
		Name: "greeting.txt", Size: total, Mime: "text/plain", Key: fileKeyStr, Hash: "", LastModified: 1700000000000,
	})
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("/v3/file", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": true,
			"data": transport.FileResponse{
				Metadata: metaEnc, Chunks: uint32(len(chunks)), Region: "eu1", Bucket: "b1", Parent: "root0",
			},
		})
	})
	for i, c := range chunks {
		idx := i
		chunk := c
		mux.HandleFunc(fmt.Sprintf("/eu1/b1/file-1/%d", idx), func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write(chunk)
		})
	}

	srv := httptest.NewServer(mux)
	return srv, "file-1"
}

func newEngine(srv *httptest.Server) *download.Engine {
	id := model.Identity{Email: "user@example.com", MasterKeys: []string{testMasterKey}, BaseFolderID: "root0"}
	tr := transport.New(srv.URL, srv.URL, srv.URL, "token", 1, 5*time.Second, nil)
	dir := directory.New(tr, cache.New(time.Minute), id, nil)
	return download.New(tr, dir, nil)
}

func TestDownload_FullSingleChunk(t *testing.T) {
	plaintext := []byte("hello download world")
	srv, fileID := buildServer(t, plaintext)
	defer srv.Close()

	eng := newEngine(srv)
	dest := filepath.Join(t.TempDir(), "out.txt")

	res, err := eng.Download(context.Background(), download.Input{FileID: fileID, DestinationPath: dest})
	require.NoError(t, err)
	require.Equal(t, uint64(len(plaintext)), res.BytesWritten)
	require.Equal(t, "greeting.txt", res.Filename)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestDownload_RangedAcrossTwoChunks(t *testing.T) {
	plaintext := make([]byte, int(filecodec.ChunkSize)+200)
	for i := range plaintext {
		plaintext[i] = byte(i % 251)
	}
	srv, fileID := buildServer(t, plaintext)
	defer srv.Close()

	eng := newEngine(srv)
	dest := filepath.Join(t.TempDir(), "out.bin")

	start := uint64(filecodec.ChunkSize - 50)
	end := uint64(filecodec.ChunkSize + 99)
	res, err := eng.Download(context.Background(), download.Input{
		FileID: fileID, DestinationPath: dest,
		Range: &download.Range{Start: start, End: end},
	})
	require.NoError(t, err)
	require.Equal(t, end-start+1, res.BytesWritten)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	require.Equal(t, plaintext[start:end+1], got)
}
