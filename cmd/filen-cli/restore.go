package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/transport"
)

// newRestoreCommand restores a trashed item by id. Trashed items are not
// addressable by path, so unlike the other path operations this one takes
// the object's UUID directly, found via `ls --trash`.
func newRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <uuid>",
		Short: "restore a trashed file or folder to its original location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			ctx := context.Background()
			id := args[0]

			folders, err := s.Directory.ListFolders(ctx, transport.TrashFolderID)
			if err != nil {
				return err
			}
			for _, f := range folders {
				if f.ID == id {
					return s.Ops.Restore(ctx, model.KindFolder, id, f.ParentID)
				}
			}

			files, err := s.Directory.ListFiles(ctx, transport.TrashFolderID)
			if err != nil {
				return err
			}
			for _, f := range files {
				if f.ID == id {
					return s.Ops.Restore(ctx, model.KindFile, id, f.ParentID)
				}
			}

			return bail("restore: %s not found in trash", id)
		},
	}
}
