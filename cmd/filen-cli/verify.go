package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/download"
)

// newVerifyCommand is a supplemental feature: download a
// remote file to a throwaway location and compare its recomputed SHA-512
// against the hash carried in its metadata envelope, surfacing silent
// bitrot or a corrupted upload.
func newVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <remote-path>",
		Short: "re-download a file and confirm its content hash matches its stored metadata",
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
			if resolved.File == nil {
				return bail("verify: %s is a folder", args[0])
			}
			if resolved.File.TotalHash == "" {
				fmt.Println("OK (empty file, no hash to verify)")
				return nil
			}

			tmp, err := os.CreateTemp("", "filen-cli-verify-*")
			if err != nil {
				return err
			}
			tmpPath := tmp.Name()
			_ = tmp.Close()
			defer os.Remove(tmpPath)

			if _, err := s.Download.Download(ctx, download.Input{FileID: resolved.ID, DestinationPath: tmpPath}); err != nil {
				return err
			}

			f, err := os.Open(tmpPath)
			if err != nil {
				return err
			}
			defer f.Close()

			hasher := cryptoutil.NewStreamingHash()
			if _, err := io.Copy(hasher, f); err != nil {
				return err
			}
			actual := hasher.SumHex()

			if actual != resolved.File.TotalHash {
				return bail("verify: hash mismatch: expected %s, got %s", resolved.File.TotalHash, actual)
			}
			fmt.Println("OK")
			return nil
		},
	}
}
