package batch_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrispStrobe/filen-dart/internal/batch"
	"github.com/CrispStrobe/filen-dart/internal/cache"
	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/directory"
	"github.com/CrispStrobe/filen-dart/internal/download"
	"github.com/CrispStrobe/filen-dart/internal/envelope"
	"github.com/CrispStrobe/filen-dart/internal/filecodec"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/pathops"
	"github.com/CrispStrobe/filen-dart/internal/pathresolve"
	"github.com/CrispStrobe/filen-dart/internal/transport"
	"github.com/CrispStrobe/filen-dart/internal/upload"
)

const runMasterKey = "0123456789abcdef0123456789abcdef"

func runIdentity() model.Identity {
	return model.Identity{Email: "user@example.com", MasterKeys: []string{runMasterKey}, BaseFolderID: "root0"}
}

func encRunFileMeta(t *testing.T, name string, size uint64, lastModifiedMs int64) string {
	t.Helper()
	enc, err := envelope.EncodeFileMetadata(cryptoutil.DeriveEnvelopeKey(runMasterKey), model.DecryptedMetadata{
		Name: name, Size: size, LastModified: lastModifiedMs,
	})
	require.NoError(t, err)
	return enc
}

// newController wires a real Controller (pathops, upload, download engines)
// against mux, the caller-supplied fake wire server.
func newController(t *testing.T, mux *http.ServeMux) (*httptest.Server, *batch.Controller) {
	t.Helper()
	srv := httptest.NewServer(mux)

	id := runIdentity()
	tr := transport.New(srv.URL, srv.URL, srv.URL, "token", 0, 5*time.Second, nil)
	c := cache.New(time.Minute)
	dirSvc := directory.New(tr, c, id, nil)
	resolver := pathresolve.New(dirSvc)
	ops := pathops.New(tr, dirSvc, c, resolver, id, nil)
	up := upload.New(tr, c, id, time.Second, nil)
	dl := download.New(tr, dirSvc, nil)
	return srv, batch.New(resolver, ops, up, dl, nil)
}

// TestRunUpload_ResumeAfterInterruption exercises resume idempotence: a
// chunked upload fails partway, the controller records an interrupted task
// with a resume triple, and a second run against the same task completes
// without resending the already-shipped chunk, producing the same total
// hash a non-interrupted upload would have.
func TestRunUpload_ResumeAfterInterruption(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	var failChunk1Once int32 = 1
	var doneBody transport.UploadDoneRequest
	var uploadedIndexes []string

	mux := http.NewServeMux()
	mux.HandleFunc("/v3/dir/content", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": transport.DirContentResponse{}})
	})
	mux.HandleFunc("/v3/upload", func(w http.ResponseWriter, r *http.Request) {
		idx := r.URL.Query().Get("index")
		uploadedIndexes = append(uploadedIndexes, idx)
		if idx == "1" && atomic.CompareAndSwapInt32(&failChunk1Once, 1, 0) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v3/upload/done", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&doneBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": json.RawMessage(`{}`)})
	})
	srv, ctrl := newController(t, mux)
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "data.bin")
	content := make([]byte, int(filecodec.ChunkSize)+500)
	for i := range content {
		content[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, content, 0o644))

	task := batch.NewPendingTask(path)
	task.RemotePath = "/data.bin"
	state := &batch.State{
		OperationType:    batch.KindUpload,
		TargetRemotePath: "/",
		Tasks:            []batch.Task{task},
	}
	id := batch.ID(batch.KindUpload, []string{path}, "/")

	summary, err := ctrl.RunUpload(context.Background(), id, state, batch.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Errors)
	require.Equal(t, batch.StatusInterrupted, state.Tasks[0].Status)
	require.Equal(t, 0, state.Tasks[0].LastChunk)
	require.NotEmpty(t, state.Tasks[0].FileID)
	require.NotEmpty(t, state.Tasks[0].UploadKey)

	loaded, found, err := batch.Load(id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, batch.StatusInterrupted, loaded.Tasks[0].Status)

	summary, err = ctrl.RunUpload(context.Background(), id, state, batch.Options{})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Completed)
	require.Equal(t, batch.StatusCompleted, state.Tasks[0].Status)
	require.EqualValues(t, 2, doneBody.Chunks)

	_, found, err = batch.Load(id)
	require.NoError(t, err)
	require.False(t, found)

	require.Equal(t, []string{"0", "1", "1"}, uploadedIndexes)
}

func TestRunUpload_ConflictPolicies(t *testing.T) {
	cases := []struct {
		name           string
		policy         batch.ConflictPolicy
		localModOffset time.Duration // local mtime relative to existing.LastModified
		wantCompleted  bool
		wantReason     string
	}{
		{name: "skip leaves destination untouched", policy: batch.ConflictSkip, wantCompleted: false, wantReason: string(batch.SkipConflict)},
		{name: "overwrite proceeds regardless of timestamps", policy: batch.ConflictOverwrite, wantCompleted: true},
		{name: "newer proceeds when local is newer", policy: batch.ConflictNewer, localModOffset: time.Hour, wantCompleted: true},
		{name: "newer skips when local is older", policy: batch.ConflictNewer, localModOffset: -time.Hour, wantCompleted: false, wantReason: string(batch.SkipNewer)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			existingModMs := time.Now().UnixMilli()

			var chunkCalls int32
			mux := http.NewServeMux()
			mux.HandleFunc("/v3/dir/content", func(w http.ResponseWriter, r *http.Request) {
				resp := transport.DirContentResponse{Uploads: []transport.WireFile{
					{UUID: "existing-1", Parent: "root0", Metadata: encRunFileMeta(t, "data.bin", 3, existingModMs)},
				}}
				_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": resp})
			})
			mux.HandleFunc("/v3/upload", func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&chunkCalls, 1)
				w.WriteHeader(http.StatusOK)
			})
			mux.HandleFunc("/v3/upload/done", func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": json.RawMessage(`{}`)})
			})
			srv, ctrl := newController(t, mux)
			defer srv.Close()

			path := filepath.Join(t.TempDir(), "data.bin")
			require.NoError(t, os.WriteFile(path, []byte("abc"), 0o644))
			localModTime := time.UnixMilli(existingModMs).Add(tc.localModOffset)
			require.NoError(t, os.Chtimes(path, localModTime, localModTime))

			uploadTask := batch.NewPendingTask(path)
			uploadTask.RemotePath = "/data.bin"
			state := &batch.State{
				OperationType:    batch.KindUpload,
				TargetRemotePath: "/",
				Tasks:            []batch.Task{uploadTask},
			}
			id := batch.ID(batch.KindUpload, []string{path}, "/"+tc.name)

			summary, err := ctrl.RunUpload(context.Background(), id, state, batch.Options{Conflict: tc.policy})
			require.NoError(t, err)

			if tc.wantCompleted {
				require.Equal(t, 1, summary.Completed)
				require.Equal(t, batch.StatusCompleted, state.Tasks[0].Status)
				require.Greater(t, atomic.LoadInt32(&chunkCalls), int32(0))
			} else {
				require.Equal(t, 1, summary.Skipped)
				require.Equal(t, batch.StatusSkipped, state.Tasks[0].Status)
				require.Equal(t, tc.wantReason, state.Tasks[0].Reason)
				require.EqualValues(t, 0, atomic.LoadInt32(&chunkCalls))
			}
		})
	}
}

func TestRunDownload_ConflictPolicies(t *testing.T) {
	plaintext := []byte("remote file contents")
	remoteModMs := time.Now().UnixMilli()

	cases := []struct {
		name           string
		policy         batch.ConflictPolicy
		localModOffset time.Duration
		wantCompleted  bool
		wantReason     string
	}{
		{name: "skip leaves destination untouched", policy: batch.ConflictSkip, wantCompleted: false, wantReason: string(batch.SkipConflict)},
		{name: "overwrite proceeds regardless of timestamps", policy: batch.ConflictOverwrite, wantCompleted: true},
		{name: "newer proceeds when remote is newer", policy: batch.ConflictNewer, localModOffset: -time.Hour, wantCompleted: true},
		{name: "newer skips when remote is older", policy: batch.ConflictNewer, localModOffset: time.Hour, wantCompleted: false, wantReason: string(batch.SkipNewer)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			fileKeyStr, err := cryptoutil.RandomString(32)
			require.NoError(t, err)
			fileKey := cryptoutil.DeriveEnvelopeKey(fileKeyStr)
			enc, err := filecodec.EncryptChunk(fileKey, plaintext)
			require.NoError(t, err)
			metaEnc := encFileMetaWithKey(t, "out.bin", uint64(len(plaintext)), fileKeyStr)

			mux := http.NewServeMux()
			mux.HandleFunc("/v3/file", func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": transport.FileResponse{
					Metadata: metaEnc, Chunks: 1, Region: "eu1", Bucket: "b1", Parent: "root0",
				}})
			})
			mux.HandleFunc("/eu1/b1/remote-file-1/0", func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write(enc.Ciphertext)
			})
			srv, ctrl := newController(t, mux)
			defer srv.Close()

			dest := filepath.Join(t.TempDir(), "out.bin")
			require.NoError(t, os.WriteFile(dest, []byte("stale local copy"), 0o644))
			localModTime := time.UnixMilli(remoteModMs).Add(tc.localModOffset)
			require.NoError(t, os.Chtimes(dest, localModTime, localModTime))

			remoteMod := remoteModMs
			task := batch.NewPendingTask(dest)
			task.RemoteUUID = "remote-file-1"
			task.RemoteModificationTime = &remoteMod
			state := &batch.State{
				OperationType:    batch.KindDownload,
				TargetRemotePath: "/out.bin",
				Tasks:            []batch.Task{task},
			}
			id := batch.ID(batch.KindDownload, []string{"/out.bin"}, "/"+tc.name)

			summary, err := ctrl.RunDownload(context.Background(), id, state, batch.Options{Conflict: tc.policy})
			require.NoError(t, err)

			if tc.wantCompleted {
				require.Equal(t, 1, summary.Completed)
				require.Equal(t, batch.StatusCompleted, state.Tasks[0].Status)
				got, err := os.ReadFile(dest)
				require.NoError(t, err)
				require.Equal(t, plaintext, got)
			} else {
				require.Equal(t, 1, summary.Skipped)
				require.Equal(t, batch.StatusSkipped, state.Tasks[0].Status)
				require.Equal(t, tc.wantReason, state.Tasks[0].Reason)
				got, err := os.ReadFile(dest)
				require.NoError(t, err)
				require.Equal(t, []byte("stale local copy"), got)
			}
		})
	}
}

func encFileMetaWithKey(t *testing.T, name string, size uint64, fileKeyStr string) string {
	t.Helper()
	enc, err := envelope.EncodeFileMetadata(cryptoutil.DeriveEnvelopeKey(runMasterKey), model.DecryptedMetadata{
		Name: name, Size: size, Key: fileKeyStr,
	})
	require.NoError(t, err)
	return enc
}
