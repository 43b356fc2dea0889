package pathops

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/CrispStrobe/filen-dart/internal/download"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/upload"
)

// Match is one hit from Find.
type Match struct {
	Kind Kind
	ID   string
	Path string
}

// Kind mirrors model.Kind for results returned to CLI callers, so this
// package's public surface doesn't leak the internal sentinel values.
type Kind = model.Kind

// Find performs an iterative DFS seeded at startPath, testing each file
// name (folders are traversed, never matched) against a case-insensitive
// glob, optionally bounded by maxDepth (-1 = infinite). This is also how
// "search" is implemented as search(query) == Find("/", "*query*", -1).
func (s *Service) Find(ctx context.Context, startPath, pattern string, maxDepth int) ([]Match, error) {
	startFolder, err := s.Resolver.ResolveFolder(ctx, startPath)
	if err != nil {
		return nil, err
	}

	type frame struct {
		id    string
		path  string
		depth int
	}

	var matches []Match
	stack := []frame{{id: startFolder.ID, path: normalizeDisplayPath(startPath), depth: 0}}
	loweredPattern := strings.ToLower(pattern)

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		files, err := s.Directory.ListFiles(ctx, top.id)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			if ok, _ := caseInsensitiveGlobMatch(loweredPattern, f.Name); ok {
				matches = append(matches, Match{Kind: model.KindFile, ID: f.ID, Path: joinDisplay(top.path, f.Name)})
			}
		}

		if maxDepth >= 0 && top.depth >= maxDepth {
			continue
		}
		folders, err := s.Directory.ListFolders(ctx, top.id)
		if err != nil {
			return nil, err
		}
		for _, d := range folders {
			stack = append(stack, frame{id: d.ID, path: joinDisplay(top.path, d.Name), depth: top.depth + 1})
		}
	}

	return matches, nil
}

// Search is Find("/", "*query*", infinite) (the service has no
// server-side search).
func (s *Service) Search(ctx context.Context, query string) ([]Match, error) {
	return s.Find(ctx, "/", "*"+query+"*", -1)
}

// caseInsensitiveGlobMatch lowercases name before matching against an
// already-lowercased pattern, using path.Match for the glob semantics
// (sufficient: patterns here are single-segment, no "/").
func caseInsensitiveGlobMatch(lowerPattern, name string) (bool, error) {
	return path.Match(lowerPattern, strings.ToLower(name))
}

func normalizeDisplayPath(p string) string {
	trimmed := strings.Trim(p, "/")
	if trimmed == "" {
		return ""
	}
	return "/" + trimmed
}

func joinDisplay(parent, name string) string {
	if parent == "" {
		return "/" + name
	}
	return parent + "/" + name
}

// TreeLine is one rendered row of Tree's output.
type TreeLine struct {
	Text  string
	Kind  Kind
	ID    string
	Depth int
}

// Tree performs a bounded DFS, printing ASCII box-drawing lines for folders
// and files, recursing into a folder only while currentDepth < maxDepth
// maxDepth < 0 means unbounded.
func (s *Service) Tree(ctx context.Context, startPath string, maxDepth int) ([]TreeLine, error) {
	startFolder, err := s.Resolver.ResolveFolder(ctx, startPath)
	if err != nil {
		return nil, err
	}
	var lines []TreeLine
	if err := s.treeRecurse(ctx, startFolder.ID, "", 0, maxDepth, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *Service) treeRecurse(ctx context.Context, folderID, prefix string, depth, maxDepth int, out *[]TreeLine) error {
	folders, err := s.Directory.ListFolders(ctx, folderID)
	if err != nil {
		return err
	}
	files, err := s.Directory.ListFiles(ctx, folderID)
	if err != nil {
		return err
	}

	total := len(folders) + len(files)
	idx := 0

	render := func(name string, isLast bool) string {
		connector := "├── "
		if isLast {
			connector = "└── "
		}
		return prefix + connector + name
	}

	for _, d := range folders {
		isLast := idx == total-1
		*out = append(*out, TreeLine{Text: render(d.Name+"/", isLast), Kind: model.KindFolder, ID: d.ID, Depth: depth})
		idx++
		if maxDepth < 0 || depth < maxDepth {
			childPrefix := prefix + "│   "
			if isLast {
				childPrefix = prefix + "    "
			}
			if err := s.treeRecurse(ctx, d.ID, childPrefix, depth+1, maxDepth, out); err != nil {
				return err
			}
		}
	}
	for _, f := range files {
		isLast := idx == total-1
		*out = append(*out, TreeLine{Text: render(f.Name, isLast), Kind: model.KindFile, ID: f.ID, Depth: depth})
		idx++
	}
	return nil
}

// DiskUsage recursively sums file sizes under startPath (supplemented
// feature: a recursive size-accounting traversal).
func (s *Service) DiskUsage(ctx context.Context, startPath string) (uint64, error) {
	startFolder, err := s.Resolver.ResolveFolder(ctx, startPath)
	if err != nil {
		return 0, err
	}
	var total uint64
	stack := []string{startFolder.ID}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		files, err := s.Directory.ListFiles(ctx, id)
		if err != nil {
			return 0, err
		}
		for _, f := range files {
			total += f.Size
		}
		folders, err := s.Directory.ListFolders(ctx, id)
		if err != nil {
			return 0, err
		}
		for _, d := range folders {
			stack = append(stack, d.ID)
		}
	}
	return total, nil
}

// Copy implements the file-only copy: download to a temp location,
// upload to the destination parent under the target name, delete the temp
// file. Folders are explicitly unsupported.
func (s *Service) Copy(ctx context.Context, dl *download.Engine, up *upload.Engine, sourceFile model.FileHandle, destParentID, destName string) (model.FileHandle, error) {
	tmp, err := os.CreateTemp("", "filen-cli-copy-*")
	if err != nil {
		return model.FileHandle{}, err
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer os.Remove(tmpPath)

	if _, err := dl.Download(ctx, download.Input{FileID: sourceFile.ID, DestinationPath: tmpPath}); err != nil {
		return model.FileHandle{}, err
	}

	res, err := up.Upload(ctx, upload.Input{LocalPath: tmpPath, ParentID: destParentID, Name: destName})
	if err != nil {
		return model.FileHandle{}, err
	}

	return model.FileHandle{
		ID:        res.FileID,
		ParentID:  destParentID,
		Name:      destName,
		Size:      res.Size,
		TotalHash: res.TotalHashHex,
	}, nil
}

// ErrFolderCopyUnsupported is returned by any caller attempting to copy a
// folder.
var ErrFolderCopyUnsupported = fmt.Errorf("pathops: folder copy is not supported")
