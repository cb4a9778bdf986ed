package cli

import (
	"github.com/spf13/cobra"
)

var narrativeCmd = &cobra.Command{
	Use:   "narrative <file> <field>",
	Short: "Draft a narrative field with the drafting service",
	Long: `Ask the configured drafting service for a narrative field, using the
record's other values as context. The text is cleaned before it is shown.

With --write the text is stored in the record file.`,
	Args: cobra.ExactArgs(2),
	RunE: runNarrative,
}

func init() {
	narrativeCmd.Flags().Bool("write", false, "Store the drafted text in the record file")
	rootCmd.AddCommand(narrativeCmd)
}

func runNarrative(cmd *cobra.Command, args []string) error {
	if narrativeService == nil || !narrativeService.Available() {
		return errNotConfigured("narrative drafting (set narrative.url)")
	}

	path, field := args[0], args[1]
	record, err := readRecord(path)
	if err != nil {
		return err
	}

	text, err := narrativeService.Draft(cmd.Context(), record, field)
	if err != nil {
		return err
	}

	if write, _ := cmd.Flags().GetBool("write"); !write {
		cmd.Println(text)
		return nil
	}
	record.Set(field, text)
	if err := writeRecord(path, record); err != nil {
		return err
	}
	cmd.Printf("Wrote %s (%d characters) to %s\n", field, len([]rune(text)), path)
	return nil
}
