package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/services"
)

func TestMaskToken(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Short token", input: "abc123", expected: "****"},
		{name: "Exactly 8 chars", input: "12345678", expected: "****"},
		{name: "Long token", input: "tok-1234567890abcdef", expected: "tok-...cdef"},
		{name: "Empty token", input: "", expected: "****"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, maskToken(tt.input))
		})
	}
}

func newConfigServices(values map[string]any) (Services, *memory.ConfigStore) {
	store := memory.NewConfigStoreWith(values)
	s := offlineServices()
	s.Settings = services.NewSettingsService(store)
	return s, store
}

func TestConfigShowCmd(t *testing.T) {
	t.Setenv(services.EnvRemoteURL, "")
	t.Setenv(services.EnvRemoteToken, "")

	t.Run("defaults", func(t *testing.T) {
		s, _ := newConfigServices(nil)
		useServices(t, s)

		out, err := execute(t, "config", "show")
		require.NoError(t, err)
		assert.Contains(t, out, "URL: (not set, offline)")
		assert.Contains(t, out, "Token: (not set)")
		assert.Contains(t, out, "Model: llama3.2")
		assert.Contains(t, out, "Configuration is valid.")
		assert.Contains(t, out, "File: :memory:")
	})

	t.Run("token is masked", func(t *testing.T) {
		s, _ := newConfigServices(map[string]any{
			services.KeyRemoteURL:   "https://ssp.example.gov/api",
			services.KeyRemoteToken: "secret-token-value",
		})
		useServices(t, s)

		out, err := execute(t, "config")
		require.NoError(t, err)
		assert.Contains(t, out, "URL: https://ssp.example.gov/api")
		assert.Contains(t, out, "Token: secr...alue")
		assert.NotContains(t, out, "secret-token-value")
	})
}

func TestConfigSetCmd(t *testing.T) {
	t.Setenv(services.EnvRemoteURL, "")
	t.Setenv(services.EnvRemoteToken, "")
	s, store := newConfigServices(nil)
	useServices(t, s)

	out, err := execute(t, "config", "set", services.KeyRemoteURL, "https://ssp.example.gov")
	require.NoError(t, err)
	assert.Contains(t, out, "Set remote.url = https://ssp.example.gov")
	assert.Equal(t, "https://ssp.example.gov", store.GetString(services.KeyRemoteURL))

	_, err = execute(t, "config", "set", services.KeyRemoteRate, "fast")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = execute(t, "config", "set", "remote.colour", "blue")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfigTokenCmd(t *testing.T) {
	t.Setenv(services.EnvRemoteURL, "")
	t.Setenv(services.EnvRemoteToken, "")
	s, store := newConfigServices(nil)
	useServices(t, s)

	rootCmd.SetIn(strings.NewReader("  tok-1234567890abcdef\n"))
	out, err := execute(t, "config", "token")
	require.NoError(t, err)
	assert.Contains(t, out, "Token saved (tok-...cdef)")
	assert.Equal(t, "tok-1234567890abcdef", store.GetString(services.KeyRemoteToken))

	rootCmd.SetIn(strings.NewReader("\n"))
	_, err = execute(t, "config", "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token entered")
}
