package batch

import (
	"context"
	"path/filepath"

	"github.com/CrispStrobe/filen-dart/internal/directory"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/pathresolve"
)

// BuildDownloadTasks resolves remoteSource and, for a single file, emits one
// task; for a folder, walks it via the listing cache (descending into
// subfolders only when recursive is set) and emits one task per file
// passing filter, with local paths nested under localDestination mirroring
// the remote relative path.
func BuildDownloadTasks(ctx context.Context, resolver *pathresolve.Resolver, dir *directory.Service, remoteSource, localDestination string, recursive bool, filter Filter) ([]Task, error) {
	resolved, err := resolver.Resolve(ctx, remoteSource)
	if err != nil {
		return nil, err
	}

	if resolved.Kind == model.KindFile {
		lm := resolved.File.LastModifiedMs
		return []Task{{
			LocalPath:              localDestination,
			RemoteUUID:             resolved.ID,
			Status:                 StatusPending,
			LastChunk:              -1,
			RemoteModificationTime: &lm,
		}}, nil
	}

	var tasks []Task
	err = walkRemoteFolder(ctx, dir, resolved.ID, "", func(relPath string, f model.FileHandle) {
		if !filter.Allows(f.Name) {
			return
		}
		lm := f.LastModifiedMs
		tasks = append(tasks, Task{
			LocalPath:              filepath.Join(localDestination, filepath.FromSlash(relPath)),
			RemoteUUID:             f.ID,
			Status:                 StatusPending,
			LastChunk:              -1,
			RemoteModificationTime: &lm,
		})
	}, recursive)
	return tasks, err
}

// walkRemoteFolder always lists folderID's own files; it only descends into
// subfolders when recursive is set (a non-recursive folder source
// downloads only its direct file children).
func walkRemoteFolder(ctx context.Context, dir *directory.Service, folderID, relPrefix string, emit func(relPath string, f model.FileHandle), recursive bool) error {
	files, err := dir.ListFiles(ctx, folderID)
	if err != nil {
		return err
	}
	for _, f := range files {
		emit(joinRel(relPrefix, f.Name), f)
	}

	if !recursive {
		return nil
	}

	folders, err := dir.ListFolders(ctx, folderID)
	if err != nil {
		return err
	}
	for _, sub := range folders {
		if err := walkRemoteFolder(ctx, dir, sub.ID, joinRel(relPrefix, sub.Name), emit, recursive); err != nil {
			return err
		}
	}
	return nil
}

func joinRel(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}
