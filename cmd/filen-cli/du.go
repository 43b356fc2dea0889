package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// newDuCommand is a supplemental feature: recursively sum
// file sizes under a folder.
func newDuCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "du [path]",
		Short: "recursively sum file sizes under a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			total, err := s.Ops.DiskUsage(context.Background(), path)
			if err != nil {
				return err
			}
			fmt.Println(total)
			return nil
		},
	}
}
