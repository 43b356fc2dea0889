package pathops_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/CrispStrobe/filen-dart/internal/cache"
	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/directory"
	"github.com/CrispStrobe/filen-dart/internal/envelope"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/pathops"
	"github.com/CrispStrobe/filen-dart/internal/pathresolve"
	"github.com/CrispStrobe/filen-dart/internal/transport"
)

// traverseTree serves:
//
//	/ (root0)
//	  docs/       (f-docs)
//	    notes.txt (file-notes, size 10)
//	    archive/  (f-archive)
//	      old.txt (file-old, size 90)
func buildTraverseTree(t *testing.T) (*httptest.Server, *pathops.Service) {
	t.Helper()

	encFolder := func(name string) string {
		enc, err := envelope.Encode002(cryptoutil.DeriveEnvelopeKey(testMasterKey), []byte(name))
		require.NoError(t, err)
		return enc
	}
	encFile := func(name string, size uint64) string {
		enc, err := envelope.EncodeFileMetadata(cryptoutil.DeriveEnvelopeKey(testMasterKey), model.DecryptedMetadata{Name: name, Size: size})
		require.NoError(t, err)
		return enc
	}

	folders := map[string][]transport.WireFolder{
		"root0":  {{UUID: "f-docs", Name: encFolder("docs"), Parent: "root0"}},
		"f-docs": {{UUID: "f-archive", Name: encFolder("archive"), Parent: "f-docs"}},
	}
	files := map[string][]transport.WireFile{
		"f-docs":    {{UUID: "file-notes", Metadata: encFile("notes.txt", 10), Parent: "f-docs"}},
		"f-archive": {{UUID: "file-old", Metadata: encFile("old.txt", 90), Parent: "f-archive"}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req transport.DirContentRequest
		_ = json.Unmarshal(raw, &req)
		resp := transport.DirContentResponse{Folders: folders[req.UUID], Uploads: files[req.UUID]}
		_ = json.NewEncoder(w).Encode(map[string]any{"status": true, "data": resp})
	}))

	id := model.Identity{Email: "user@example.com", MasterKeys: []string{testMasterKey}, BaseFolderID: "root0"}
	tr := transport.New(srv.URL, srv.URL, srv.URL, "token", 1, 5*time.Second, nil)
	c := cache.New(time.Minute)
	dirSvc := directory.New(tr, c, id, nil)
	resolver := pathresolve.New(dirSvc)
	svc := pathops.New(tr, dirSvc, c, resolver, id, nil)
	return srv, svc
}

func TestFind_MatchesAcrossAllDepths(t *testing.T) {
	srv, svc := buildTraverseTree(t)
	defer srv.Close()

	matches, err := svc.Find(context.Background(), "/", "*.txt", -1)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	var paths []string
	for _, m := range matches {
		paths = append(paths, m.Path)
	}
	sort.Strings(paths)
	require.Equal(t, []string{"/docs/archive/old.txt", "/docs/notes.txt"}, paths)
}

func TestFind_RespectsMaxDepth(t *testing.T) {
	srv, svc := buildTraverseTree(t)
	defer srv.Close()

	matches, err := svc.Find(context.Background(), "/", "*.txt", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "/docs/notes.txt", matches[0].Path)
}

func TestSearch_IsSubstringGlobAcrossWholeTree(t *testing.T) {
	srv, svc := buildTraverseTree(t)
	defer srv.Close()

	matches, err := svc.Search(context.Background(), "old")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "file-old", matches[0].ID)
}

func TestTree_RendersNestedStructure(t *testing.T) {
	srv, svc := buildTraverseTree(t)
	defer srv.Close()

	lines, err := svc.Tree(context.Background(), "/", -1)
	require.NoError(t, err)
	require.Len(t, lines, 4) // docs/, archive/, notes.txt, old.txt

	var texts []string
	for _, l := range lines {
		texts = append(texts, l.Text)
	}
	require.Contains(t, texts, "└── docs/")
}

func TestDiskUsage_SumsAllNestedFileSizes(t *testing.T) {
	srv, svc := buildTraverseTree(t)
	defer srv.Close()

	total, err := svc.DiskUsage(context.Background(), "/")
	require.NoError(t, err)
	require.Equal(t, uint64(100), total)
}
