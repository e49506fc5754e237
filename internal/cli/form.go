package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/fieldforms/internal/ports/primary"
	"github.com/example/fieldforms/internal/wire"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Work on the active field form",
	Long:  "Start, edit, fill in, and submit the active field data form",
}

// resumeActive rebuilds capture state for commands that mutate an already
// started form.
func resumeActive(ctx context.Context) error {
	resumed, err := wire.ResumeCapture(ctx)
	if err != nil {
		return err
	}
	if !resumed {
		return fmt.Errorf("no resumable draft\nHint: start with \"fieldforms form new\" or reload with \"fieldforms form edit <id>\"")
	}
	return nil
}

var formNewCmd = &cobra.Command{
	Use:   "new [page-type]",
	Short: "Start a new form (Leak Repair, Mains, Retirement, Services)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pageType := ""
		if len(args) > 0 {
			pageType = args[0]
		}

		resp, err := wire.FormService().StartNew(cmd.Context(), primary.StartNewRequest{PageType: pageType})
		if err != nil {
			return err
		}
		if err := wire.SaveSession(); err != nil {
			return err
		}

		fmt.Println(color.New(color.FgGreen).Sprint("✓ ") + resp.Status)
		return nil
	},
}

var formEditCmd = &cobra.Command{
	Use:   "edit [submission-id]",
	Short: "Fetch an existing record and switch to edit mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := wire.FormService().LoadForEdit(cmd.Context(), primary.LoadForEditRequest{SubmissionID: args[0]})
		if err != nil {
			return err
		}
		if !resp.Loaded {
			fmt.Println(resp.Status)
			return nil
		}
		if err := wire.SaveSession(); err != nil {
			return err
		}

		fmt.Println(color.New(color.FgGreen).Sprint("✓ ") + resp.Status)
		return nil
	},
}

var formSetCmd = &cobra.Command{
	Use:   "set [field] [value]",
	Short: "Set a scalar field on the active form",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resumeActive(cmd.Context()); err != nil {
			return err
		}

		resp, err := wire.FormService().SetField(cmd.Context(), primary.SetFieldRequest{Name: args[0], Value: args[1]})
		if err != nil {
			return err
		}

		fmt.Println(resp.Status)
		return nil
	},
}

var formRowCmd = &cobra.Command{
	Use:   "row",
	Short: "Manage repeater rows (materials, tests, structures)",
}

var formRowAddCmd = &cobra.Command{
	Use:   "add [group]",
	Short: "Append a row to a repeater group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resumeActive(cmd.Context()); err != nil {
			return err
		}

		resp, err := wire.FormService().AddRow(cmd.Context(), primary.AddRowRequest{Group: args[0]})
		if err != nil {
			return err
		}

		fmt.Println(resp.Status)
		return nil
	},
}

var formRowSetCmd = &cobra.Command{
	Use:   "set [group] [row-index] [key] [value]",
	Short: "Set one cell of a repeater row",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resumeActive(cmd.Context()); err != nil {
			return err
		}

		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("row index must be a number, got %q", args[1])
		}

		resp, err := wire.FormService().SetRowValue(cmd.Context(), primary.SetRowValueRequest{
			Group: args[0],
			Index: index,
			Key:   args[2],
			Value: args[3],
		})
		if err != nil {
			return err
		}

		fmt.Println(resp.Status)
		return nil
	},
}

var formRowRmCmd = &cobra.Command{
	Use:   "rm [group] [row-index]",
	Short: "Remove a repeater row",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resumeActive(cmd.Context()); err != nil {
			return err
		}

		index, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("row index must be a number, got %q", args[1])
		}

		resp, err := wire.FormService().RemoveRow(cmd.Context(), primary.RemoveRowRequest{Group: args[0], Index: index})
		if err != nil {
			return err
		}

		fmt.Println(resp.Status)
		return nil
	},
}

var formPhotoCmd = &cobra.Command{
	Use:   "photo [file]",
	Short: "Attach a photo (at most five per form)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resumeActive(cmd.Context()); err != nil {
			return err
		}

		filename, dataURL, err := readAttachment(args[0])
		if err != nil {
			return err
		}

		resp, err := wire.FormService().AttachPhoto(cmd.Context(), primary.AttachPhotoRequest{Filename: filename, DataURL: dataURL})
		if err != nil {
			return err
		}

		fmt.Println(resp.Status)
		return nil
	},
}

var formSketchCmd = &cobra.Command{
	Use:   "sketch",
	Short: "Manage the sketch attachment",
}

var formSketchSetCmd = &cobra.Command{
	Use:   "set [file]",
	Short: "Replace the sketch with an image file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resumeActive(cmd.Context()); err != nil {
			return err
		}

		filename, dataURL, err := readAttachment(args[0])
		if err != nil {
			return err
		}

		resp, err := wire.FormService().SetSketch(cmd.Context(), primary.SetSketchRequest{Filename: filename, DataURL: dataURL})
		if err != nil {
			return err
		}

		fmt.Println(resp.Status)
		return nil
	},
}

var formSketchClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Wipe the sketch",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resumeActive(cmd.Context()); err != nil {
			return err
		}

		resp, err := wire.FormService().ClearSketch(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(resp.Status)
		return nil
	},
}

var formShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the outgoing payload for the active form",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resumeActive(cmd.Context()); err != nil {
			return err
		}

		resp, err := wire.FormService().BuildPayload(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(string(resp.JSON))
		return nil
	},
}

var formSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Deliver the active form now, or queue it when offline",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resumeActive(cmd.Context()); err != nil {
			return err
		}

		resp, err := wire.FormService().SubmitNow(cmd.Context())
		if err != nil {
			return err
		}
		if err := wire.SaveSession(); err != nil {
			return err
		}

		if resp.Delivered {
			fmt.Println(color.New(color.FgGreen).Sprint("✓ ") + resp.Status)
			if resp.Drained > 0 {
				fmt.Printf("Also synced %d queued record(s)\n", resp.Drained)
			}
		} else {
			fmt.Println(color.New(color.FgYellow).Sprint("● ") + resp.Status)
		}
		return nil
	},
}

var formQueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Queue the active form for later sync without transmitting",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := resumeActive(cmd.Context()); err != nil {
			return err
		}

		resp, err := wire.FormService().QueueForSync(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println(resp.Status)
		return nil
	},
}

// FormCmd returns the form command group
func FormCmd() *cobra.Command {
	formRowCmd.AddCommand(formRowAddCmd)
	formRowCmd.AddCommand(formRowSetCmd)
	formRowCmd.AddCommand(formRowRmCmd)

	formSketchCmd.AddCommand(formSketchSetCmd)
	formSketchCmd.AddCommand(formSketchClearCmd)

	formCmd.AddCommand(formNewCmd)
	formCmd.AddCommand(formEditCmd)
	formCmd.AddCommand(formSetCmd)
	formCmd.AddCommand(formRowCmd)
	formCmd.AddCommand(formPhotoCmd)
	formCmd.AddCommand(formSketchCmd)
	formCmd.AddCommand(formShowCmd)
	formCmd.AddCommand(formSubmitCmd)
	formCmd.AddCommand(formQueueCmd)

	return formCmd
}
