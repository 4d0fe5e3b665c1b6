package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/leca/menudesk/internal/app"
	"github.com/leca/menudesk/internal/config"
	"github.com/leca/menudesk/internal/notify"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:          "menuctl",
		Short:        "Menu asset and bill session tooling",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(newOptimizeCmd())
	root.AddCommand(newUploadCmd())
	root.AddCommand(newSessionsCmd())
	return root
}

// openApp loads the configuration from the environment and opens its backends.
func openApp(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return app.New(ctx, cfg, slog.Default())
}

// printNotifier prints user-facing notices on the command's error stream.
type printNotifier struct {
	w io.Writer
}

func (p printNotifier) Notify(_ context.Context, message string, severity notify.Severity) {
	fmt.Fprintf(p.w, "%s: %s\n", severity, message)
}
