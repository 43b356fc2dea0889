// Package webdav is a minimal WebDAV front-end over the engine (an
// external collaborator, bound only by the public operation surface of
// pathresolve/directory/upload/download). It is a deliberate stdlib-only
// exception: no example repo in the pack imports golang.org/x/net/webdav or
// any WebDAV library, so reaching for one here would be an unjustified
// dependency rather than a grounded one (see DESIGN.md).
package webdav

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/CrispStrobe/filen-dart/internal/directory"
	"github.com/CrispStrobe/filen-dart/internal/download"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/pathresolve"
	"github.com/CrispStrobe/filen-dart/internal/pathops"
	"github.com/CrispStrobe/filen-dart/internal/upload"
)

// Handler translates PROPFIND/GET/PUT/MKCOL requests into engine calls.
type Handler struct {
	Resolver *pathresolve.Resolver
	Dir      *directory.Service
	Ops      *pathops.Service
	Upload   *upload.Engine
	Download *download.Engine
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	path := strings.TrimSuffix(r.URL.Path, "/")

	switch r.Method {
	case "PROPFIND":
		h.propfind(ctx, w, path)
	case http.MethodGet:
		h.get(ctx, w, path)
	case http.MethodPut:
		h.put(ctx, w, r, path)
	case "MKCOL":
		h.mkcol(ctx, w, path)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type davResponse struct {
	XMLName xml.Name `xml:"D:response"`
	Href    string   `xml:"D:href"`
	Size    uint64   `xml:"D:propstat>D:prop>D:getcontentlength,omitempty"`
	IsDir   bool     `xml:"-"`
}

type multiStatus struct {
	XMLName   xml.Name `xml:"D:multistatus"`
	XMLNS     string   `xml:"xmlns:D,attr"`
	Responses []davResponse
}

func (h *Handler) propfind(ctx context.Context, w http.ResponseWriter, path string) {
	resolved, err := h.Resolver.Resolve(ctx, path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	ms := multiStatus{XMLNS: "DAV:"}
	ms.Responses = append(ms.Responses, davResponse{Href: path + "/"})

	if resolved.Kind == model.KindFolder {
		folders, err := h.Dir.ListFolders(ctx, resolved.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		files, err := h.Dir.ListFiles(ctx, resolved.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, f := range folders {
			ms.Responses = append(ms.Responses, davResponse{Href: joinHref(path, f.Name) + "/", IsDir: true})
		}
		for _, f := range files {
			ms.Responses = append(ms.Responses, davResponse{Href: joinHref(path, f.Name), Size: f.Size})
		}
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(207)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(ms)
}

func (h *Handler) get(ctx context.Context, w http.ResponseWriter, path string) {
	resolved, err := h.Resolver.Resolve(ctx, path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if resolved.Kind != model.KindFile {
		http.Error(w, "is a collection", http.StatusConflict)
		return
	}

	tmp, err := os.CreateTemp("", "filen-webdav-*")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if _, err := h.Download.Download(ctx, download.Input{FileID: resolved.ID, DestinationPath: tmpPath}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer f.Close()
	_, _ = io.Copy(w, f)
}

func (h *Handler) put(ctx context.Context, w http.ResponseWriter, r *http.Request, path string) {
	parentPath := parentOf(path)
	name := baseOf(path)

	parent, err := h.Resolver.ResolveFolder(ctx, parentPath)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	tmp, err := os.CreateTemp("", "filen-webdav-*")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, r.Body); err != nil {
		_ = tmp.Close()
		os.Remove(tmpPath)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if _, err := h.Upload.Upload(ctx, upload.Input{LocalPath: tmpPath, ParentID: parent.ID, Name: name}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) mkcol(ctx context.Context, w http.ResponseWriter, path string) {
	if _, err := h.Ops.MkdirAll(ctx, path, nil, nil); err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func joinHref(parent, name string) string {
	if parent == "" {
		return "/" + name
	}
	return parent + "/" + name
}

func parentOf(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}

func baseOf(path string) string {
	idx := strings.LastIndex(path, "/")
	return path[idx+1:]
}

// NewServeMux wraps Handler in a *http.ServeMux mounted at "/", for callers
// that want a *http.Server drop-in.
func NewServeMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", h)
	return mux
}
