package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Manage locally saved record drafts",
	Long:  `Save working copies of a record under a name and restore them later.`,
}

var draftSaveCmd = &cobra.Command{
	Use:   "save <name> <file>",
	Short: "Save a record file as a draft",
	Args:  cobra.ExactArgs(2),
	RunE:  runDraftSave,
}

var draftShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print or restore a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftShow,
}

var draftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List drafts, newest first",
	Args:  cobra.NoArgs,
	RunE:  runDraftList,
}

var draftDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a draft",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftDelete,
}

func init() {
	draftSaveCmd.Flags().String("ssp", "", "Remote document the draft belongs to")
	draftShowCmd.Flags().StringP("out", "o", "", "Record file to write (default: stdout)")
	draftCmd.AddCommand(draftSaveCmd)
	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftListCmd)
	draftCmd.AddCommand(draftDeleteCmd)
	rootCmd.AddCommand(draftCmd)
}

func runDraftSave(cmd *cobra.Command, args []string) error {
	if draftService == nil {
		return errNotConfigured("drafts")
	}

	record, err := readRecord(args[1])
	if err != nil {
		return err
	}
	sspID, _ := cmd.Flags().GetString("ssp")

	draft, err := draftService.Save(cmd.Context(), args[0], sspID, record)
	if err != nil {
		return err
	}
	cmd.Printf("Saved draft %q (%s)\n", draft.Name, draft.ID)
	return nil
}

func runDraftShow(cmd *cobra.Command, args []string) error {
	if draftService == nil {
		return errNotConfigured("drafts")
	}

	draft, err := draftService.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return printRecord(cmd, draft.Record)
	}
	if err := writeRecord(out, draft.Record); err != nil {
		return err
	}
	cmd.Printf("Draft %q written to %s\n", draft.Name, out)
	return nil
}

func runDraftList(cmd *cobra.Command, _ []string) error {
	if draftService == nil {
		return errNotConfigured("drafts")
	}

	drafts, err := draftService.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		cmd.Println("No drafts saved.")
		return nil
	}

	cmd.Printf("%-24s %-20s %s\n", "NAME", "UPDATED", "SSP")
	for _, d := range drafts {
		ssp := d.SSPID
		if ssp == "" {
			ssp = "-"
		}
		cmd.Printf("%-24s %-20s %s\n", d.Name, d.UpdatedAt.Local().Format(time.DateTime), ssp)
	}
	return nil
}

func runDraftDelete(cmd *cobra.Command, args []string) error {
	if draftService == nil {
		return errNotConfigured("drafts")
	}

	if err := draftService.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Deleted draft %q\n", args[0])
	return nil
}
