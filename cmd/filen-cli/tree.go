package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newTreeCommand() *cobra.Command {
	var maxDepth int
	cmd := &cobra.Command{
		Use:   "tree [path]",
		Short: "print a folder's subtree as ASCII box-drawing lines",
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
			lines, err := s.Ops.Tree(context.Background(), path, maxDepth)
			if err != nil {
				return err
			}
			for _, l := range lines {
				fmt.Println(l.Text)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxDepth, "maxdepth", -1, "maximum recursion depth (-1 = unbounded)")
	return cmd
}
