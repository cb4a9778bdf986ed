package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ssp-cli/internal/core/services"
)

var diffCmd = &cobra.Command{
	Use:   "diff <ssp-id> <file>",
	Short: "Show what changed since the last sync",
	Long: `Compare a record file with the last record synced for a document.

Changed sections are listed first, then a text patch for every changed
narrative field. Works offline.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errNotConfigured("sync")
	}

	sspID := args[0]
	record, err := readRecord(args[1])
	if err != nil {
		return err
	}

	restore(cmd, sspID)
	baseline := syncOrchestrator.Baseline()
	if baseline == nil {
		cmd.Printf("No synced record for %s; comparing against an empty record.\n", sspID)
	}

	changed := services.ChangedSections(baseline, record)
	if len(changed) == 0 {
		cmd.Println("No changes since last sync.")
		return nil
	}

	cmd.Println("Changed sections:")
	for _, key := range changed {
		cmd.Printf("  %s\n", key)
	}

	for _, d := range services.DiffNarratives(baseline, record) {
		cmd.Println()
		cmd.Printf("--- %s [%s] +%d -%d\n", d.Field, d.Section, d.Inserted, d.Deleted)
		cmd.Print(d.Patch)
	}
	return nil
}
