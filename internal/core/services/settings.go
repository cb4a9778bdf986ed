package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyRemoteURL      = "remote.url"
	KeyRemoteToken    = "remote.token"
	KeyRemoteRate     = "remote.rate_limit"
	KeyRemoteTimeout  = "remote.timeout_seconds"
	KeyDataDir        = "data.dir"
	KeyNarrativeURL   = "narrative.url"
	KeyNarrativeModel = "narrative.model"
)

// Environment variables that override stored settings.
//
//nolint:gosec // G101: variable names only.
const (
	EnvRemoteURL   = "SSP_REMOTE_URL"
	EnvRemoteToken = "SSP_REMOTE_TOKEN"
)

// SettingKeys lists every key accepted by Set.
var SettingKeys = []string{
	KeyRemoteURL, KeyRemoteToken, KeyRemoteRate, KeyRemoteTimeout,
	KeyDataDir, KeyNarrativeURL, KeyNarrativeModel,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	validate    *validator.Validate
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		validate:    validator.New(),
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Remote: domain.RemoteSettings{
			URL:       s.configStore.GetString(KeyRemoteURL),
			Token:     s.configStore.GetString(KeyRemoteToken),
			RateLimit: s.getFloat(KeyRemoteRate, defaults.Remote.RateLimit),
			Timeout:   s.getSeconds(KeyRemoteTimeout, defaults.Remote.Timeout),
		},
		DataDir: s.getString(KeyDataDir, defaults.DataDir),
		Narrative: domain.NarrativeSettings{
			BaseURL: s.configStore.GetString(KeyNarrativeURL),
			Model:   s.getString(KeyNarrativeModel, defaults.Narrative.Model),
		},
	}

	if v, ok := s.lookupEnv(EnvRemoteURL); ok && v != "" {
		settings.Remote.URL = v
	}
	if v, ok := s.lookupEnv(EnvRemoteToken); ok && v != "" {
		settings.Remote.Token = v
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := s.Validate(settings); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{KeyRemoteURL, settings.Remote.URL},
		{KeyRemoteRate, settings.Remote.RateLimit},
		{KeyRemoteTimeout, int(settings.Remote.Timeout / time.Second)},
		{KeyDataDir, settings.DataDir},
		{KeyNarrativeURL, settings.Narrative.BaseURL},
		{KeyNarrativeModel, settings.Narrative.Model},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// An empty token never clears a stored one.
	if settings.Remote.Token != "" {
		if err := s.configStore.Set(KeyRemoteToken, settings.Remote.Token); err != nil {
			return fmt.Errorf("save %s: %w", KeyRemoteToken, err)
		}
	}

	return nil
}

// Set updates one setting by key. Numeric keys are parsed and the result
// is validated before anything is written.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch key {
	case KeyRemoteURL:
		settings.Remote.URL = value
	case KeyRemoteToken:
		if value == "" {
			return fmt.Errorf("%s: %w: token must not be empty", key, domain.ErrInvalidInput)
		}
		settings.Remote.Token = value
	case KeyRemoteRate:
		rate, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %w: %q is not a number", key, domain.ErrInvalidInput, value)
		}
		settings.Remote.RateLimit = rate
	case KeyRemoteTimeout:
		secs, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w: %q is not a whole number of seconds", key, domain.ErrInvalidInput, value)
		}
		settings.Remote.Timeout = time.Duration(secs) * time.Second
	case KeyDataDir:
		settings.DataDir = value
	case KeyNarrativeURL:
		settings.Narrative.BaseURL = value
	case KeyNarrativeModel:
		settings.Narrative.Model = value
	default:
		return fmt.Errorf("unknown setting %q: %w", key, domain.ErrInvalidInput)
	}

	return s.Save(settings)
}

// Validate checks settings against their struct tags.
func (s *SettingsService) Validate(settings *domain.AppSettings) error {
	if settings == nil {
		return fmt.Errorf("settings: %w", domain.ErrInvalidInput)
	}
	err := s.validate.Struct(settings)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate settings: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ConfigPath returns where settings are persisted.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := raw.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Second
}
