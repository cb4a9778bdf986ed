package cli

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ssp-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/services"
)

var statusCmd = &cobra.Command{
	Use:   "status [ssp-id]",
	Short: "Show the sync status of a document",
	Long: `Print the sync state saved for a document: status, last sync time,
pending edits and the last error.

With --watch a live terminal view is opened instead. Pass --file to let
the view push the record file with 's' when it differs from the last sync.

Controls (with --watch):
  s    - Save pending edits
  x    - Dismiss error
  ?    - Toggle help
  q    - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolP("watch", "w", false, "Open the live status view")
	statusCmd.Flags().String("file", "", "Record file saved from the live view")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if syncOrchestrator == nil {
		return errNotConfigured("sync")
	}

	var sspID string
	if len(args) == 1 {
		sspID = args[0]
		restore(cmd, sspID)
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		printState(cmd, syncOrchestrator.State())
		return nil
	}

	file, _ := cmd.Flags().GetString("file")
	ports := &tui.Ports{Sync: syncOrchestrator}
	if file != "" {
		if sspID == "" {
			return fmt.Errorf("%w: --file needs an ssp-id", domain.ErrInvalidInput)
		}
		record, err := readRecord(file)
		if err != nil {
			return err
		}
		if len(services.ChangedSections(syncOrchestrator.Baseline(), record)) > 0 {
			syncOrchestrator.MarkDirty()
		}
		ports.Saver = services.NewAutoSaver(syncOrchestrator, sspID, recordSource(file), 0)
	}

	return runStatusView(cmd, ports)
}

func runStatusView(cmd *cobra.Command, ports *tui.Ports) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func printState(cmd *cobra.Command, st domain.SyncState) {
	cmd.Printf("Status:        %s\n", st.Status)
	if st.SSPID != "" {
		doc := st.SSPID
		if st.Title != "" {
			doc = fmt.Sprintf("%s (%s)", st.Title, st.SSPID)
		}
		cmd.Printf("Document:      %s\n", doc)
	}
	last := "never"
	if st.LastSyncedAt != nil {
		last = st.LastSyncedAt.Local().Format(time.DateTime)
	}
	cmd.Printf("Last synced:   %s\n", last)
	pending := "no"
	if st.PendingChanges {
		pending = "yes"
	}
	cmd.Printf("Pending edits: %s\n", pending)
	if st.Error != "" {
		cmd.Printf("Error:         %s\n", st.Error)
	}
}
