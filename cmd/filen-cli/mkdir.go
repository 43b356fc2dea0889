package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newMkdirCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "create a remote folder, and any missing parents (mkdir -p semantics)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			_, err = s.Ops.MkdirAll(context.Background(), args[0], nil, nil)
			return err
		},
	}
}
