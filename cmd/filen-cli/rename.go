package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/model"
)

func newRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <path> <new-name>",
		Short: "rename a file or folder in place",
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
			newName := args[1]

			if resolved.Kind == model.KindFolder {
				return s.Ops.RenameFolder(ctx, resolved.ID, resolved.ParentID, newName)
			}
			return s.Ops.RenameFile(ctx, *resolved.File, newName)
		},
	}
}
