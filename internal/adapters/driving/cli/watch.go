package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/services"
	"github.com/custodia-labs/ssp-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch <ssp-id> <file>",
	Short: "Push a record file whenever it changes",
	Long: `Watch a record file and push changed sections to the remote store.

Every write to the file marks the record dirty. Pending edits are saved on
the --interval tick, so a burst of writes becomes one save. Runs until
interrupted.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", services.DefaultAutoSaveInterval, "How often pending edits are saved")
	rootCmd.AddCommand(watchCmd)
}

// recordSource reads the working record from path on every save.
func recordSource(path string) services.RecordSource {
	return func(context.Context) (*domain.ComplianceRecord, error) {
		return readRecord(path)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireOnline(); err != nil {
		return err
	}

	sspID := args[0]
	path, err := filepath.Abs(args[1])
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[1], err)
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch %s: %w", args[1], err)
	}
	interval, _ := cmd.Flags().GetDuration("interval")

	restore(cmd, sspID)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close() //nolint:errcheck

	// Editors often replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	saver := services.NewAutoSaver(syncOrchestrator, sspID, recordSource(path), interval)
	saveErr := make(chan error, 1)
	go func() { saveErr <- saver.Start(ctx) }()
	defer saver.Stop() //nolint:errcheck

	states, unsubscribe := syncOrchestrator.Subscribe()
	defer unsubscribe()

	cmd.Printf("Watching %s for %s (%s). Press Ctrl+C to stop.\n", args[1], sspID, saver)

	var last domain.SyncStatus
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-saveErr:
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isRecordWrite(ev, path) {
				logger.Debug("watch: %s", ev)
				syncOrchestrator.MarkDirty()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		case st, ok := <-states:
			if !ok {
				return nil
			}
			if st.Status == last {
				continue
			}
			last = st.Status
			if st.Error != "" {
				cmd.Printf("%s: %s\n", st.Status, st.Error)
			} else {
				cmd.Printf("%s\n", st.Status)
			}
		}
	}
}

// isRecordWrite reports whether ev changed the file at path.
func isRecordWrite(ev fsnotify.Event, path string) bool {
	if filepath.Clean(ev.Name) != path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}
