// Package cache implements the listing cache: two keyed maps
// (folders-by-parent, files-by-parent), each entry TTL'd at 10 minutes,
// with explicit invalidation driven by every mutation path. All reads and
// writes serialize under a single lock.
package cache

import (
	"sync"
	"time"

	"github.com/CrispStrobe/filen-dart/internal/model"
)

type folderEntry struct {
	items      []model.FolderHandle
	insertedAt time.Time
}

type fileEntry struct {
	items      []model.FileHandle
	insertedAt time.Time
}

// Listing is the per-process, per-identity cache of folder contents.
type Listing struct {
	mu      sync.Mutex
	ttl     time.Duration
	folders map[string]folderEntry
	files   map[string]fileEntry
}

// New builds an empty Listing with the given TTL (10 minutes in production).
func New(ttl time.Duration) *Listing {
	return &Listing{
		ttl:     ttl,
		folders: make(map[string]folderEntry),
		files:   make(map[string]fileEntry),
	}
}

// FolderFetchFunc fetches the live list of folders under parent, used on a
// cache miss.
type FolderFetchFunc func(parent string) ([]model.FolderHandle, error)

// FileFetchFunc fetches the live list of files under parent, used on a
// cache miss.
type FileFetchFunc func(parent string) ([]model.FileHandle, error)

// Folders returns the folders directly under parent, serving from cache if
// a non-expired entry exists, else fetching, storing, and returning a copy.
func (l *Listing) Folders(parent string, fetch FolderFetchFunc) ([]model.FolderHandle, error) {
	l.mu.Lock()
	if e, ok := l.folders[parent]; ok && time.Since(e.insertedAt) < l.ttl {
		out := make([]model.FolderHandle, len(e.items))
		copy(out, e.items)
		l.mu.Unlock()
		return out, nil
	}
	l.mu.Unlock()

	items, err := fetch(parent)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.folders[parent] = folderEntry{items: items, insertedAt: time.Now()}
	l.mu.Unlock()

	out := make([]model.FolderHandle, len(items))
	copy(out, items)
	return out, nil
}

// Files returns the files directly under parent, same semantics as Folders.
func (l *Listing) Files(parent string, fetch FileFetchFunc) ([]model.FileHandle, error) {
	l.mu.Lock()
	if e, ok := l.files[parent]; ok && time.Since(e.insertedAt) < l.ttl {
		out := make([]model.FileHandle, len(e.items))
		copy(out, e.items)
		l.mu.Unlock()
		return out, nil
	}
	l.mu.Unlock()

	items, err := fetch(parent)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.files[parent] = fileEntry{items: items, insertedAt: time.Now()}
	l.mu.Unlock()

	out := make([]model.FileHandle, len(items))
	copy(out, items)
	return out, nil
}

// Invalidate removes both maps' entries for parent. Every mutation path
// must call this for the affected parent(s) before returning.
func (l *Listing) Invalidate(parent string) {
	if parent == "" {
		return
	}
	l.mu.Lock()
	delete(l.folders, parent)
	delete(l.files, parent)
	l.mu.Unlock()
}

// InvalidateMove is a convenience for move operations, which must
// invalidate both the source and destination parent.
func (l *Listing) InvalidateMove(sourceParent, destParent string) {
	l.Invalidate(sourceParent)
	l.Invalidate(destParent)
}
