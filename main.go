package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"leadcrm_backend/internals/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leadcrm",
		Short: "Lead distribution and attendance backend",
		Long: `leadcrm serves the lead distribution engine and the staff attendance tracker.
Without a subcommand it runs the HTTP API.`,
		SilenceUsage: true,
	}
	serve := cli.ServeCmd()
	rootCmd.RunE = serve.RunE

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.SeedCmd())
	rootCmd.AddCommand(cli.TokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
