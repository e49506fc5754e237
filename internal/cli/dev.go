package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/fieldforms/internal/devserver"
)

var devCmd = &cobra.Command{
	Use:   "dev",
	Short: "Developer tools",
}

var devServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a local in-memory record store",
	Long:  "Serve the record store protocol at /exec for offline development and demos. Records live in memory and vanish on exit.",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		accessKey, _ := cmd.Flags().GetString("access-key")

		fmt.Printf("Dev record store listening on http://%s/exec\n", addr)
		fmt.Printf("Point the client at it with: fieldforms init --api-url http://%s/exec\n", addr)

		return devserver.NewServer(accessKey).Router().Run(addr)
	},
}

// DevCmd returns the dev command group
func DevCmd() *cobra.Command {
	devServeCmd.Flags().String("addr", "127.0.0.1:8787", "Listen address")
	devServeCmd.Flags().String("access-key", "", "Require this access key (empty disables the check)")

	devCmd.AddCommand(devServeCmd)
	return devCmd
}
