package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/CrispStrobe/filen-dart/internal/webdav"
)

// newWebDAVCommand exposes the engine over WebDAV as a standalone server.
func newWebDAVCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-webdav",
		Short: "expose the remote tree over WebDAV (PROPFIND/GET/PUT/MKCOL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return bail("not logged in: %w", err)
			}
			h := &webdav.Handler{
				Resolver: s.Resolver,
				Dir:      s.Directory,
				Ops:      s.Ops,
				Upload:   s.Upload,
				Download: s.Download,
			}
			fmt.Println("serving WebDAV on", addr)
			return http.ListenAndServe(addr, webdav.NewServeMux(h))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8765", "address to listen on")
	return cmd
}
