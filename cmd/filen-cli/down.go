package main

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/batch"
)

func newDownCommand() *cobra.Command {
	var recursive bool
	var include, exclude []string
	var conflict string
	var force, interactive bool

	cmd := &cobra.Command{
		Use:   "download <remote-path> <local-destination>",
		Short: "download a remote file or folder to a local destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remoteSource := args[0]
			localDest := args[1]

			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			ctx := context.Background()

			id := batch.ID(batch.KindDownload, []string{remoteSource}, localDest)
			state, found, err := batch.Load(id)
			if err != nil {
				return err
			}
			if !found {
				tasks, err := batch.BuildDownloadTasks(ctx, s.Resolver, s.Directory, remoteSource, localDest, recursive, batch.Filter{Include: include, Exclude: exclude})
				if err != nil {
					return err
				}
				state = batch.State{OperationType: batch.KindDownload, TargetRemotePath: remoteSource, LocalDestination: &localDest, Tasks: tasks}
			}

			bar := progressbar.Default(int64(len(state.Tasks)), "downloading")
			opts := batch.Options{
				Conflict:    batch.ConflictPolicy(conflict),
				Force:       force,
				Interactive: interactive,
				Prompt:      promptYesNo,
			}
			summary, err := s.Batch.RunDownload(ctx, id, &state, opts)
			_ = bar.Set(len(state.Tasks))
			if err != nil {
				return err
			}

			fmt.Printf("completed=%d skipped=%d errors=%d\n", summary.Completed, summary.Skipped, summary.Errors)
			if summary.ExitCode() != 0 {
				return bail("download finished with %d error(s); rerun to resume", summary.Errors)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into a remote folder source")
	cmd.Flags().StringArrayVar(&include, "include", nil, "glob pattern to permit (repeatable); empty means permit all")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "glob pattern to deny (repeatable)")
	cmd.Flags().StringVar(&conflict, "conflict", "", "conflict policy: skip|overwrite|newer (default skip)")
	cmd.Flags().BoolVar(&force, "force", false, "suppress prompts and overwrite conflicts")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "prompt before overwriting an existing destination")
	return cmd
}
