package driven

// ConfigStore persists the flat, dotted settings keys behind
// services.SettingsService: remote.url, remote.token, remote.rate_limit,
// remote.timeout_seconds, data.dir, narrative.url and narrative.model.
type ConfigStore interface {
	// Get returns the raw value for key and whether it is set.
	Get(key string) (any, bool)

	// GetString returns key as a string, or "" when unset or not a string.
	GetString(key string) string

	// GetInt returns key as an int, or 0 when unset or not a whole number.
	// Used for remote.timeout_seconds.
	GetInt(key string) int

	// Set stores value under key and persists it immediately.
	Set(key string, value any) error

	// Save writes all settings to storage.
	Save() error

	// Load replaces in-memory settings with what storage holds.
	Load() error

	// Path is where settings are stored, for `ssp config show`.
	Path() string
}
