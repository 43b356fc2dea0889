package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/model"
)

// newStatCommand is a supplemental feature: print a
// single object's decrypted metadata without listing its siblings.
func newStatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "print a file or folder's decrypted metadata",
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

			fmt.Println("path:  ", resolved.ResolvedPath)
			fmt.Println("id:    ", resolved.ID)
			fmt.Println("parent:", resolved.ParentID)
			if resolved.Kind == model.KindFolder {
				fmt.Println("kind:   folder")
				return nil
			}
			f := resolved.File
			fmt.Println("kind:   file")
			fmt.Println("size:  ", f.Size)
			fmt.Println("mime:  ", f.Mime)
			fmt.Println("chunks:", f.Chunks)
			fmt.Println("hash:  ", f.TotalHash)
			fmt.Println("mtime: ", time.UnixMilli(f.LastModifiedMs).UTC().Format(time.RFC3339))
			return nil
		},
	}
}
