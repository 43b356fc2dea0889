package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newWhoamiCommand is a supplemented feature: report the logged-in
// identity without making a network call.
func newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "print the currently logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			fmt.Println(s.Identity.Email)
			fmt.Println("base folder:", s.Identity.BaseFolderID)
			fmt.Println("master keys:", len(s.Identity.MasterKeys))
			return nil
		},
	}
}
