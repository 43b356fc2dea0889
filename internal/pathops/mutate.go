package pathops

import (
	"context"

	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/envelope"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/transport"
)

// Move relocates a folder or file to a new parent. It is a no-op
// when source and destination parents are already equal, and always
// invalidates both the source and destination parent's cache entries.
func (s *Service) Move(ctx context.Context, kind model.Kind, id, sourceParent, destParent string) error {
	if sourceParent == destParent {
		return nil
	}
	var err error
	if kind == model.KindFolder {
		err = s.Transport.MoveDir(ctx, id, destParent)
	} else {
		err = s.Transport.MoveFile(ctx, id, destParent)
	}
	if err != nil {
		return err
	}
	s.Cache.InvalidateMove(sourceParent, destParent)
	return nil
}

// RenameFolder re-encrypts a folder's name envelope in place.
func (s *Service) RenameFolder(ctx context.Context, folderID, parent, newName string) error {
	encName, err := envelope.EncodeFolderName(s.masterKey(), newName)
	if err != nil {
		return err
	}
	err = s.Transport.RenameDir(ctx, transport.RenameDirRequest{
		UUID:       folderID,
		Name:       encName,
		NameHashed: s.Directory.HashName(newName),
	})
	if err != nil {
		return err
	}
	s.Cache.Invalidate(parent)
	return nil
}

// RenameFile fetches the file's current metadata envelope, mutates its
// name, and re-encrypts both the per-file name field (under file_key) and
// the whole metadata envelope (under the master key).
func (s *Service) RenameFile(ctx context.Context, file model.FileHandle, newName string) error {
	fileKey := cryptoutil.DeriveEnvelopeKey(file.FileKey)

	encName, err := envelope.Encode002(fileKey, []byte(newName))
	if err != nil {
		return err
	}
	encMeta, err := envelope.EncodeFileMetadata(s.masterKey(), model.DecryptedMetadata{
		Name:         newName,
		Size:         file.Size,
		Mime:         file.Mime,
		Key:          file.FileKey,
		Hash:         file.TotalHash,
		LastModified: file.LastModifiedMs,
	})
	if err != nil {
		return err
	}

	err = s.Transport.RenameFile(ctx, transport.RenameFileRequest{
		UUID:       file.ID,
		Name:       encName,
		Metadata:   encMeta,
		NameHashed: s.Directory.HashName(newName),
	})
	if err != nil {
		return err
	}
	s.Cache.Invalidate(file.ParentID)
	return nil
}

// Trash moves a folder or file to the trash. Restore moves it back to its
// original parent: the server remembers that parent, the client does not
// pass one.
func (s *Service) Trash(ctx context.Context, kind model.Kind, id, parent string) error {
	var err error
	if kind == model.KindFolder {
		err = s.Transport.TrashDir(ctx, id)
	} else {
		err = s.Transport.TrashFile(ctx, id)
	}
	if err != nil {
		return err
	}
	s.Cache.Invalidate(parent)
	return nil
}

func (s *Service) Restore(ctx context.Context, kind model.Kind, id, originalParent string) error {
	var err error
	if kind == model.KindFolder {
		err = s.Transport.RestoreDir(ctx, id)
	} else {
		err = s.Transport.RestoreFile(ctx, id)
	}
	if err != nil {
		return err
	}
	s.Cache.Invalidate(originalParent)
	return nil
}

// Delete permanently removes a folder or file (bypassing trash).
func (s *Service) Delete(ctx context.Context, kind model.Kind, id, parent string) error {
	var err error
	if kind == model.KindFolder {
		err = s.Transport.DeleteDirPermanent(ctx, id)
	} else {
		err = s.Transport.DeleteFilePermanent(ctx, id)
	}
	if err != nil {
		return err
	}
	s.Cache.Invalidate(parent)
	return nil
}
