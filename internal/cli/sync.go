package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/fieldforms/internal/wire"
)

// SyncCmd returns the sync command
func SyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Replay queued submissions to the record store",
		Long:  "Deliver queued submissions oldest first, stopping at the first failure.",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := wire.SyncService().TrySync(cmd.Context())
			if err != nil {
				return err
			}

			switch {
			case !result.Online:
				fmt.Println(color.New(color.FgYellow).Sprint("● ") + result.Status)
			case result.FailedID != "":
				fmt.Println(color.New(color.FgRed).Sprint("✗ ") + result.Status)
			default:
				fmt.Println(color.New(color.FgGreen).Sprint("✓ ") + result.Status)
			}
			return nil
		},
	}
}
