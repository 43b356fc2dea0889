package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newMvCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <source> <destination-folder>",
		Short: "move a file or folder to a different parent",
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
			destFolder, err := s.Resolver.ResolveFolder(ctx, args[1])
			if err != nil {
				return err
			}

			return s.Ops.Move(ctx, resolved.Kind, resolved.ID, resolved.ParentID, destFolder.ID)
		},
	}
}
