package domain

import "time"

// RemoteSettings configures the remote SSP store connection.
type RemoteSettings struct {
	// URL is the API base URL. Empty means offline mode.
	URL string `validate:"omitempty,url"`

	// Token is the bearer token presented to the store.
	Token string

	// RateLimit is the maximum number of requests per second (0 = unlimited).
	RateLimit float64 `validate:"gte=0"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `validate:"gte=0"`
}

// IsConfigured returns true if a remote store URL is set.
func (r RemoteSettings) IsConfigured() bool {
	return r.URL != ""
}

// NarrativeSettings configures the narrative drafting collaborator.
type NarrativeSettings struct {
	// BaseURL is the drafting service endpoint. Empty disables drafting.
	BaseURL string `validate:"omitempty,url"`

	// Model is the model name passed to the drafting service.
	Model string
}

// IsConfigured returns true if a drafting endpoint is set.
func (n NarrativeSettings) IsConfigured() bool {
	return n.BaseURL != ""
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Remote holds the remote store connection.
	Remote RemoteSettings

	// DataDir is where drafts and sync snapshots are stored.
	DataDir string

	// Narrative holds the drafting collaborator settings.
	Narrative NarrativeSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The remote store is left unconfigured, so the tool starts offline.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Remote: RemoteSettings{
			RateLimit: 10,
			Timeout:   30 * time.Second,
		},
		Narrative: NarrativeSettings{
			Model: "llama3.2",
		},
	}
}
