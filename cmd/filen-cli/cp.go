package main

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/pathops"
)

func newCpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cp <source-file> <destination-folder>",
		Short: "copy a single remote file into a different folder (folder copy is not supported)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			ctx := context.Background()

			resolved, err := s.Resolver.Resolve(ctx, args[0])
			if err != nil {
				return err
			}
			if resolved.Kind == model.KindFolder {
				return pathops.ErrFolderCopyUnsupported
			}
			destFolder, err := s.Resolver.ResolveFolder(ctx, args[1])
			if err != nil {
				return err
			}

			_, err = s.Ops.Copy(ctx, s.Download, s.Upload, *resolved.File, destFolder.ID, filepath.Base(resolved.File.Name))
			return err
		},
	}
}
