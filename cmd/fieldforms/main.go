package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/fieldforms/internal/cli"
	"github.com/example/fieldforms/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "fieldforms",
		Short:   "fieldforms - offline-first field data capture",
		Version: version.String(),
		Long: `fieldforms captures utility field data (leak repairs, mains, retirements,
services) as structured submissions, keeps them durable locally, and syncs
them to the remote record store whenever connectivity allows.`,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.FormCmd())
	rootCmd.AddCommand(cli.QueueCmd())
	rootCmd.AddCommand(cli.SyncCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
