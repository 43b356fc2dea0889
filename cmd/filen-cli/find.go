package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/pathops"
)

func newFindCommand() *cobra.Command {
	var start string
	var maxDepth int
	cmd := &cobra.Command{
		Use:   "find <glob-pattern>",
		Short: "find files by a case-insensitive glob pattern, starting at --start (default /)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			matches, err := s.Ops.Find(context.Background(), start, args[0], maxDepth)
			if err != nil {
				return err
			}
			printMatches(matches)
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", "/", "folder to start the search from")
	cmd.Flags().IntVar(&maxDepth, "maxdepth", -1, "maximum recursion depth (-1 = unbounded)")
	return cmd
}

func newSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "search the whole tree for files whose name contains query (client-side; the service has no server-side search)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			matches, err := s.Ops.Search(context.Background(), args[0])
			if err != nil {
				return err
			}
			printMatches(matches)
			return nil
		},
	}
}

func printMatches(matches []pathops.Match) {
	for _, m := range matches {
		fmt.Println(m.Path)
	}
}
