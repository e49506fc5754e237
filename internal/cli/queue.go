package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/fieldforms/internal/ports/primary"
	"github.com/example/fieldforms/internal/wire"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect the sync queue and local drafts",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List records waiting for sync, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		stored, err := wire.SyncService().ListQueue(cmd.Context())
		if err != nil {
			return err
		}
		if len(stored) == 0 {
			fmt.Println("Queue is empty")
			return nil
		}
		printStored(stored)
		return nil
	},
}

var queueDraftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List resumable local drafts, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		stored, err := wire.SyncService().ListDrafts(cmd.Context())
		if err != nil {
			return err
		}
		if len(stored) == 0 {
			fmt.Println("No local drafts")
			return nil
		}
		printStored(stored)
		return nil
	},
}

func printStored(stored []*primary.StoredSubmission) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPAGE TYPE\tOP\tCREATED\tUPDATED")
	fmt.Fprintln(w, "--\t---------\t--\t-------\t-------")
	for _, s := range stored {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.SubmissionID, s.PageType, s.Op, s.CreatedAt, s.UpdatedAt)
	}
	w.Flush()
}

// QueueCmd returns the queue command group
func QueueCmd() *cobra.Command {
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueDraftsCmd)
	return queueCmd
}
