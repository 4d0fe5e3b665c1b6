package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Bill session maintenance",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete expired bill sessions from the remote table",
		Long: `Delete every remote bill session whose expiry lies in the past.

The purge is best-effort: failures are logged and the command still exits 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.Manager.PurgeExpiredRemote(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "purge finished")
			return nil
		},
	})
	return cmd
}
