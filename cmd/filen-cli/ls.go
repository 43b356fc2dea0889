package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/transport"
)

func newLsCommand() *cobra.Command {
	var trash bool
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "list a remote folder's contents (folders before files)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			ctx := context.Background()

			parentID := s.Identity.BaseFolderID
			if trash {
				parentID = transport.TrashFolderID
			} else if len(args) == 1 {
				folder, err := s.Resolver.ResolveFolder(ctx, args[0])
				if err != nil {
					return err
				}
				parentID = folder.ID
			}

			folders, err := s.Directory.ListFolders(ctx, parentID)
			if err != nil {
				return err
			}
			files, err := s.Directory.ListFiles(ctx, parentID)
			if err != nil {
				return err
			}

			for _, f := range folders {
				line := f.Name + "/"
				if trash {
					line = fmt.Sprintf("%-36s %s/", f.ID, f.Name)
				}
				fmt.Println(line)
			}
			for _, f := range files {
				if trash {
					fmt.Printf("%-36s %-40s %10d\n", f.ID, f.Name, f.Size)
					continue
				}
				fmt.Printf("%-40s %10d\n", f.Name, f.Size)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&trash, "trash", false, "list the trash instead of a folder (trashed items are identified by uuid)")
	return cmd
}
