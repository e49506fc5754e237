package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/fieldforms/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active form and pending local work",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()

			endpoint := cfg.APIURL
			if endpoint == "" {
				endpoint = color.New(color.FgYellow).Sprint("(not configured; run fieldforms init)")
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Record store:\t%s\n", endpoint)
			fmt.Fprintf(w, "Device:\t%s\n", cfg.DeviceID)
			if cfg.ActiveSubmissionID != "" {
				fmt.Fprintf(w, "Active form:\t%s (%s mode)\n", cfg.ActiveSubmissionID, cfg.Mode)
			} else {
				fmt.Fprintf(w, "Active form:\t(none)\n")
			}
			w.Flush()

			drafts, err := wire.SyncService().ListDrafts(cmd.Context())
			if err != nil {
				return err
			}
			queued, err := wire.SyncService().ListQueue(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Println()
			fmt.Printf("Local drafts: %d\n", len(drafts))
			if len(queued) > 0 {
				fmt.Println(color.New(color.FgYellow).Sprintf("Awaiting sync: %d", len(queued)))
			} else {
				fmt.Println("Awaiting sync: 0")
			}

			return nil
		},
	}
}
