package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/logger"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronise records with the remote SSP store",
	Long: `Load, save and list SSP documents on the remote store.

Only sections that changed since the last sync are sent by 'sync save'.
The last synced record is kept locally per document, so change detection
carries across runs. 'sync full' also replaces every collection.`,
}

var syncLoadCmd = &cobra.Command{
	Use:   "load <ssp-id>",
	Short: "Load a document from the remote store",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncLoad,
}

var syncSaveCmd = &cobra.Command{
	Use:   "save <ssp-id> <file>",
	Short: "Push changed sections of a record",
	Args:  cobra.ExactArgs(2),
	RunE:  runSyncSave,
}

var syncFullCmd = &cobra.Command{
	Use:   "full <ssp-id> <file>",
	Short: "Push the record and replace every collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runSyncFull,
}

var syncListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remote documents",
	Args:  cobra.NoArgs,
	RunE:  runSyncList,
}

var syncNewCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Create a remote document",
	Args:  cobra.ExactArgs(1),
	RunE:  runSyncNew,
}

func init() {
	syncLoadCmd.Flags().StringP("out", "o", "", "Record file to write (default: stdout)")
	syncCmd.AddCommand(syncLoadCmd)
	syncCmd.AddCommand(syncSaveCmd)
	syncCmd.AddCommand(syncFullCmd)
	syncCmd.AddCommand(syncListCmd)
	syncCmd.AddCommand(syncNewCmd)
	rootCmd.AddCommand(syncCmd)
}

// requireOnline fails when the orchestrator has no remote store.
func requireOnline() error {
	if syncOrchestrator == nil {
		return errNotConfigured("sync")
	}
	if syncOrchestrator.State().Status == domain.SyncOffline {
		return errOffline
	}
	return nil
}

// restore loads the saved sync state for sspID. A missing snapshot is fine.
func restore(cmd *cobra.Command, sspID string) {
	err := syncOrchestrator.Restore(cmd.Context(), sspID)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrNotFound):
		logger.Debug("no saved state for %s", sspID)
	default:
		logger.Warn("restore %s: %v", sspID, err)
	}
}

// syncError reports the orchestrator's last error.
func syncError(action string) error {
	msg := syncOrchestrator.State().Error
	if msg == "" {
		msg = "another sync is in progress"
	}
	return fmt.Errorf("%s failed: %s", action, msg)
}

func runSyncLoad(cmd *cobra.Command, args []string) error {
	if err := requireOnline(); err != nil {
		return err
	}

	sspID := args[0]
	record := syncOrchestrator.LoadFromServer(cmd.Context(), sspID)
	if record == nil {
		return syncError("load")
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return printRecord(cmd, record)
	}
	if err := writeRecord(out, record); err != nil {
		return err
	}
	cmd.Printf("Loaded %s (%s) into %s\n", sspID, syncOrchestrator.State().Title, out)
	return nil
}

func runSyncSave(cmd *cobra.Command, args []string) error {
	if err := requireOnline(); err != nil {
		return err
	}

	sspID := args[0]
	record, err := readRecord(args[1])
	if err != nil {
		return err
	}

	restore(cmd, sspID)
	if !syncOrchestrator.SaveToServer(cmd.Context(), sspID, record) {
		return syncError("save")
	}
	cmd.Printf("Saved %s.\n", sspID)
	return nil
}

func runSyncFull(cmd *cobra.Command, args []string) error {
	if err := requireOnline(); err != nil {
		return err
	}

	sspID := args[0]
	record, err := readRecord(args[1])
	if err != nil {
		return err
	}

	restore(cmd, sspID)
	if !syncOrchestrator.FullSync(cmd.Context(), sspID, record) {
		return syncError("full sync")
	}
	cmd.Printf("Fully synchronised %s.\n", sspID)
	return nil
}

func runSyncList(cmd *cobra.Command, _ []string) error {
	if err := requireOnline(); err != nil {
		return err
	}

	docs := syncOrchestrator.List(cmd.Context())
	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	cmd.Printf("%-38s %-20s %s\n", "ID", "UPDATED", "TITLE")
	for _, d := range docs {
		updated := "-"
		if !d.UpdatedAt.IsZero() {
			updated = d.UpdatedAt.Local().Format(time.DateTime)
		}
		cmd.Printf("%-38s %-20s %s\n", d.ID, updated, d.Title)
	}
	return nil
}

func runSyncNew(cmd *cobra.Command, args []string) error {
	if err := requireOnline(); err != nil {
		return err
	}

	doc, err := syncOrchestrator.Create(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cmd.Printf("Created %s: %s\n", doc.ID, doc.Title)
	return nil
}
