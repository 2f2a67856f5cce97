package cli

import (
	"os"

	"github.com/isdelr/bookfinder-be/internal/client/session"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the bookctl command tree. The App is constructed once
// flags are parsed and handed to every subcommand.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	var (
		serverURL  string
		sessionDir string
		app        *App
	)

	root := &cobra.Command{
		Use:           "bookctl",
		Short:         "BookFinder CLI - browse and curate the book catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if sessionDir == "" {
				dir, err := session.DefaultDir()
				if err != nil {
					return err
				}
				sessionDir = dir
			}
			var err error
			app, err = newApp(opts, serverURL, sessionDir)
			return err
		},
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Out)
	root.SetIn(opts.In)

	defaultServer := os.Getenv("BOOKFINDER_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "BookFinder API server URL (also set via BOOKFINDER_SERVER)")
	root.PersistentFlags().StringVar(&sessionDir, "session-dir", "", "Directory holding session.json (default ~/.bookfinder)")

	current := func() *App { return app }
	root.AddCommand(
		newRegisterCmd(current),
		newLoginCmd(current),
		newLogoutCmd(current),
		newStatusCmd(current),
		newBooksCmd(current),
	)
	return root
}
