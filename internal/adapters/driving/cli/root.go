// Package cli provides the cobra command tree for ssp.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ssp-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired by main. Commands check for nil before use.
var (
	validatorService driving.RecordValidator
	exporterService  driving.OSCALExporter
	importerService  driving.OSCALImporter
	syncOrchestrator driving.SyncOrchestrator
	draftService     driving.DraftService
	narrativeService driving.NarrativeService
	settingsService  driving.SettingsService
)

// Services groups the driving ports the commands run against.
type Services struct {
	Validator driving.RecordValidator
	Exporter  driving.OSCALExporter
	Importer  driving.OSCALImporter
	Sync      driving.SyncOrchestrator
	Drafts    driving.DraftService
	Narrative driving.NarrativeService
	Settings  driving.SettingsService
}

// SetServices installs the services used by every command.
func SetServices(s Services) {
	validatorService = s.Validator
	exporterService = s.Exporter
	importerService = s.Importer
	syncOrchestrator = s.Sync
	draftService = s.Drafts
	narrativeService = s.Narrative
	settingsService = s.Settings
}

// SetVersion sets the version reported by `ssp version`.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "ssp",
	Short: "Keep System Security Plan records in sync and export them as OSCAL",
	Long: `ssp edits System Security Plan compliance records locally, keeps them in
sync with a remote SSP store and converts them to and from OSCAL.

Records are JSON files with the flat wizard field layout. Without a remote
store URL the tool runs offline: validation, export, import and drafts
still work.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if v, _ := cmd.Flags().GetBool("verbose"); v {
			logger.SetVerbose(true)
		}
		if j, _ := cmd.Flags().GetBool("log-json"); j {
			logger.SetJSON(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write log lines as JSON")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
