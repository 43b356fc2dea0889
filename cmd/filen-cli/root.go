package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/batch"
	"github.com/CrispStrobe/filen-dart/internal/cache"
	"github.com/CrispStrobe/filen-dart/internal/config"
	"github.com/CrispStrobe/filen-dart/internal/credentials"
	"github.com/CrispStrobe/filen-dart/internal/directory"
	"github.com/CrispStrobe/filen-dart/internal/download"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/pathops"
	"github.com/CrispStrobe/filen-dart/internal/pathresolve"
	"github.com/CrispStrobe/filen-dart/internal/transport"
	"github.com/CrispStrobe/filen-dart/internal/upload"
)

// globalFlags holds the persistent flags shared by every subcommand.
type globalFlags struct {
	apiBase string
	verbose bool
}

var flags globalFlags

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "filen-cli",
		Short:         "command-line client for an end-to-end encrypted cloud storage service",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flags.apiBase, "api-base", config.DefaultAPIBase, "override the API base URL")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCommand(),
		newWhoamiCommand(),
		newLsCommand(),
		newMkdirCommand(),
		newMvCommand(),
		newRenameCommand(),
		newRmCommand(),
		newRestoreCommand(),
		newFindCommand(),
		newSearchCommand(),
		newTreeCommand(),
		newCpCommand(),
		newUpCommand(),
		newDownCommand(),
		newStatCommand(),
		newDuCommand(),
		newVerifyCommand(),
		newWebDAVCommand(),
	)
	return root
}

// session is the bootstrapped set of engine components a logged-in command
// operates against, built fresh for every invocation: no daemon, no
// shared process state across runs.
type session struct {
	Identity  model.Identity
	Transport *transport.Client
	Cache     *cache.Listing
	Directory *directory.Service
	Resolver  *pathresolve.Resolver
	Ops       *pathops.Service
	Upload    *upload.Engine
	Download  *download.Engine
	Batch     *batch.Controller
	Log       logrus.FieldLogger
}

// newSession loads the persisted identity and wires every engine component
// together. Returns credentials.ErrNotFound if the user has not logged in.
func newSession() (*session, error) {
	id, err := credentials.Load()
	if err != nil {
		return nil, err
	}

	log := logrus.StandardLogger()
	if flags.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	opts := config.New(
		config.WithAPIBase(flags.apiBase),
		config.WithLogger(log),
	)

	tr := transport.New(opts.APIBase, opts.IngestBase, opts.EgestBase, id.APIKey, opts.Retries, opts.HTTPTimeout, log)
	listing := cache.New(opts.ListingCacheTTL)
	dir := directory.New(tr, listing, id, log)
	resolver := pathresolve.New(dir)
	ops := pathops.New(tr, dir, listing, resolver, id, log)
	up := upload.New(tr, listing, id, opts.ChunkTimeout, log)
	dl := download.New(tr, dir, log)
	ctrl := batch.New(resolver, ops, up, dl, log)

	return &session{
		Identity:  id,
		Transport: tr,
		Cache:     listing,
		Directory: dir,
		Resolver:  resolver,
		Ops:       ops,
		Upload:    up,
		Download:  dl,
		Batch:     ctrl,
		Log:       log,
	}, nil
}

// bail formats a user-facing error consistently across commands.
func bail(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}
