package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newRmCommand() *cobra.Command {
	var permanent bool
	cmd := &cobra.Command{
		Use:   "rm <path>",
		Short: "move a file or folder to the trash (or delete it permanently with --permanent)",
		Args:  cobra.ExactArgs(1),
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
			if permanent {
				return s.Ops.Delete(ctx, resolved.Kind, resolved.ID, resolved.ParentID)
			}
			return s.Ops.Trash(ctx, resolved.Kind, resolved.ID, resolved.ParentID)
		},
	}
	cmd.Flags().BoolVar(&permanent, "permanent", false, "bypass the trash and delete permanently")
	return cmd
}
