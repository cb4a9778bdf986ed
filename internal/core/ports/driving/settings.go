package driving

import "github.com/custodia-labs/ssp-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with environment overrides applied.
	Get() (*domain.AppSettings, error)

	// Save validates and persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates one setting by its config key, e.g. "remote.url".
	Set(key, value string) error

	// Validate checks settings against their constraints.
	Validate(settings *domain.AppSettings) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ConfigPath returns where settings are persisted.
	ConfigPath() string
}
