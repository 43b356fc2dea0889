// Package pathresolve implements the path resolver: walking a
// POSIX path against the listing cache (via internal/directory), yielding
// (kind, id, metadata, parent).
package pathresolve

import (
	"context"
	"errors"
	"strings"

	"github.com/CrispStrobe/filen-dart/internal/directory"
	"github.com/CrispStrobe/filen-dart/internal/model"
)

// PathNotFoundError carries the partial path that could not be resolved
// further.
type PathNotFoundError struct {
	Partial string
}

func (e *PathNotFoundError) Error() string {
	return "pathresolve: not found: " + e.Partial
}

var ErrEmptyComponent = errors.New("pathresolve: empty path component")

// Resolver resolves POSIX paths against one directory Service.
type Resolver struct {
	Dir *directory.Service
}

// New builds a Resolver rooted at dir.Identity.BaseFolderID.
func New(dir *directory.Service) *Resolver {
	return &Resolver{Dir: dir}
}

// splitPath trims leading/trailing slashes and splits on "/". A bare "/"
// (root) yields zero components.
func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// Resolve walks path (POSIX, relative to root) against the listing cache.
// At each non-terminal component only folders are considered; at the
// terminal component folders are tried before files: the folder wins on
// a name collision. Matching is case-sensitive.
func (r *Resolver) Resolve(ctx context.Context, path string) (model.ResolvedPath, error) {
	base := r.Dir.Identity.BaseFolderID
	components := splitPath(path)

	if len(components) == 0 {
		return model.ResolvedPath{
			Kind:         model.KindFolder,
			ID:           base,
			Name:         "",
			ResolvedPath: "/",
			ParentID:     "",
			Folder:       &model.FolderHandle{ID: base, Name: ""},
		}, nil
	}

	currentParent := base
	walked := ""

	for i, component := range components {
		if component == "" {
			return model.ResolvedPath{}, ErrEmptyComponent
		}
		isTerminal := i == len(components)-1

		folders, err := r.Dir.ListFolders(ctx, currentParent)
		if err != nil {
			return model.ResolvedPath{}, err
		}

		var matchedFolder *model.FolderHandle
		for idx := range folders {
			if folders[idx].Name == component {
				matchedFolder = &folders[idx]
				break
			}
		}

		if matchedFolder != nil {
			walked += "/" + component
			if isTerminal {
				return model.ResolvedPath{
					Kind:         model.KindFolder,
					ID:           matchedFolder.ID,
					Name:         matchedFolder.Name,
					ResolvedPath: walked,
					ParentID:     currentParent,
					Folder:       matchedFolder,
				}, nil
			}
			currentParent = matchedFolder.ID
			continue
		}

		if !isTerminal {
			return model.ResolvedPath{}, &PathNotFoundError{Partial: walked + "/" + component}
		}

		// Terminal component, no folder matched: try files.
		files, err := r.Dir.ListFiles(ctx, currentParent)
		if err != nil {
			return model.ResolvedPath{}, err
		}
		for idx := range files {
			if files[idx].Name == component {
				return model.ResolvedPath{
					Kind:         model.KindFile,
					ID:           files[idx].ID,
					Name:         files[idx].Name,
					ResolvedPath: walked + "/" + component,
					ParentID:     currentParent,
					File:         &files[idx],
				}, nil
			}
		}

		return model.ResolvedPath{}, &PathNotFoundError{Partial: walked + "/" + component}
	}

	// Unreachable: the loop above always returns.
	return model.ResolvedPath{}, &PathNotFoundError{Partial: path}
}

// ResolveFolder resolves path and requires the result to be a folder.
func (r *Resolver) ResolveFolder(ctx context.Context, path string) (model.FolderHandle, error) {
	res, err := r.Resolve(ctx, path)
	if err != nil {
		return model.FolderHandle{}, err
	}
	if res.Kind != model.KindFolder {
		return model.FolderHandle{}, &PathNotFoundError{Partial: path}
	}
	return *res.Folder, nil
}
