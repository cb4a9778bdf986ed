// Command ssp keeps System Security Plan compliance records in sync with a
// remote SSP store and converts them to and from OSCAL.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/codec"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/remote"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ssp-cli/internal/core/services"
	"github.com/custodia-labs/ssp-cli/internal/logger"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	defer store.Close() //nolint:errcheck

	var remoteStore driven.RemoteStore
	if settings.Remote.IsConfigured() {
		client, err := remote.NewClient(ctx, remote.Config{
			BaseURL:   settings.Remote.URL,
			Token:     settings.Remote.Token,
			RateLimit: settings.Remote.RateLimit,
			Timeout:   settings.Remote.Timeout,
		})
		if err != nil {
			logger.Warn("remote store disabled: %v", err)
		} else {
			remoteStore = client
		}
	}

	var drafter driven.NarrativeDrafter
	if settings.Narrative.IsConfigured() {
		d := ollama.NewDrafter(ollama.Config{
			BaseURL: settings.Narrative.BaseURL,
			Model:   settings.Narrative.Model,
		})
		defer d.Close() //nolint:errcheck
		drafter = d
	}

	oscalCodec := codec.New()

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Validator: services.NewValidator(),
		Exporter:  services.NewExporter(oscalCodec),
		Importer:  services.NewImporter(oscalCodec),
		Sync:      services.NewSyncOrchestrator(remoteStore, store.SnapshotStore()),
		Drafts:    services.NewDraftService(store.DraftStore()),
		Narrative: services.NewNarrativeService(drafter),
		Settings:  settingsService,
	})

	return cli.Execute(ctx)
}
