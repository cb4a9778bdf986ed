package file

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_EnvDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	t.Setenv(EnvConfigDir, dir)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestDefaultDir_Home(t *testing.T) {
	t.Setenv(EnvConfigDir, "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".ssp"), dir)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("remote.url", "https://ssp.example.gov/api"))
	require.NoError(t, store.Set("remote.timeout_seconds", 30))
	require.NoError(t, store.Set("remote.rate_limit", 2.5))

	assert.Equal(t, "https://ssp.example.gov/api", store.GetString("remote.url"))
	assert.Equal(t, 30, store.GetInt("remote.timeout_seconds"))

	// Wrong types and missing keys yield zero values.
	assert.Empty(t, store.GetString("remote.timeout_seconds"))
	assert.Zero(t, store.GetInt("remote.url"))
	assert.Zero(t, store.GetInt("remote.rate_limit"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("remote.url", "https://ssp.example.gov/api"))
	require.NoError(t, store.Set("narrative.model", "llama3"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[remote]")
	assert.Contains(t, string(data), "[narrative]")
	assert.NotContains(t, string(data), "remote.url")
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("remote.url", "https://a.example"))
	require.NoError(t, store.Set("remote.timeout_seconds", 45))
	require.NoError(t, store.Set("data.dir", "/var/lib/ssp"))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", reloaded.GetString("remote.url"))
	assert.Equal(t, 45, reloaded.GetInt("remote.timeout_seconds"))
	assert.Equal(t, "/var/lib/ssp", reloaded.GetString("data.dir"))
}

func TestConfigStore_LoadHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := "[remote]\nurl = \"https://b.example\"\nrate_limit = 1.5\n\n[narrative]\nurl = \"http://localhost:11434\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "https://b.example", store.GetString("remote.url"))
	assert.Equal(t, "http://localhost:11434", store.GetString("narrative.url"))

	val, ok := store.Get("remote.rate_limit")
	require.True(t, ok)
	assert.InDelta(t, 1.5, val, 0.0001)
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Load())
	_, ok := store.Get("anything")
	assert.False(t, ok)
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.NoError(t, store.Save())
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("[remote\nurl = "), 0600))

	_, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("remote.token", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_KeyConflictRestoresValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("remote.url", "https://a.example"))

	err = store.Set("remote", "flat")
	assert.Error(t, err)
	_, ok := store.Get("remote")
	assert.False(t, ok)
	assert.Equal(t, "https://a.example", store.GetString("remote.url"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("remote.url", "https://a.example")
		}()
		go func() {
			defer wg.Done()
			_ = store.GetString("remote.url")
		}()
	}
	wg.Wait()

	assert.Equal(t, "https://a.example", store.GetString("remote.url"))
}

func TestNestMap(t *testing.T) {
	nested, err := nestMap(map[string]any{"a.b.c": 1, "a.d": "x", "e": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": map[string]any{"c": 1}, "d": "x"},
		"e": true,
	}, nested)
	assert.Equal(t, map[string]any{"a.b.c": 1, "a.d": "x", "e": true}, flattenMap(nested, ""))
}
