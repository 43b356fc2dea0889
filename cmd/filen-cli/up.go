package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/batch"
)

func newUpCommand() *cobra.Command {
	var recursive bool
	var include, exclude []string
	var conflict string
	var force, interactive bool

	cmd := &cobra.Command{
		Use:   "up <source...> <remote-target-folder>",
		Short: "upload one or more local files/folders into a remote folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := args[:len(args)-1]
			target := args[len(args)-1]

			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			ctx := context.Background()

			id := batch.ID(batch.KindUpload, sources, target)
			state, found, err := batch.Load(id)
			if err != nil {
				return err
			}
			if !found {
				tasks, err := batch.BuildUploadTasks(sources, target, recursive, batch.Filter{Include: include, Exclude: exclude})
				if err != nil {
					return err
				}
				state = batch.State{OperationType: batch.KindUpload, TargetRemotePath: target, Tasks: tasks}
			}

			bar := progressbar.Default(int64(len(state.Tasks)), "uploading")
			opts := batch.Options{
				Conflict:    batch.ConflictPolicy(conflict),
				Force:       force,
				Interactive: interactive,
				Prompt:      promptYesNo,
			}
			summary, err := s.Batch.RunUpload(ctx, id, &state, opts)
			_ = bar.Set(len(state.Tasks))
			if err != nil {
				return err
			}

			fmt.Printf("completed=%d skipped=%d errors=%d\n", summary.Completed, summary.Skipped, summary.Errors)
			if summary.ExitCode() != 0 {
				return bail("upload finished with %d error(s); rerun to resume", summary.Errors)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into source directories")
	cmd.Flags().StringArrayVar(&include, "include", nil, "glob pattern to permit (repeatable); empty means permit all")
	cmd.Flags().StringArrayVar(&exclude, "exclude", nil, "glob pattern to deny (repeatable)")
	cmd.Flags().StringVar(&conflict, "conflict", "", "conflict policy: skip|overwrite|newer (default skip)")
	cmd.Flags().BoolVar(&force, "force", false, "suppress prompts and overwrite conflicts")
	cmd.Flags().BoolVar(&interactive, "interactive", false, "prompt before overwriting an existing destination")
	return cmd
}

// promptYesNo implements the interactive conflict prompt. Gated on
// go-isatty: a non-terminal stdin (piped/scripted invocation) always
// defaults to No rather than blocking on a read that will never resolve.
func promptYesNo(question string) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false
	}
	fmt.Print(question + " [y/N] ")
	answer := promptLine("")
	return answer == "y" || answer == "Y"
}
