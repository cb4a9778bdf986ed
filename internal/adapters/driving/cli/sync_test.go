package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

func TestSyncCmd_Offline(t *testing.T) {
	useServices(t, offlineServices())

	for _, args := range [][]string{
		{"sync", "list"},
		{"sync", "new", "Payroll"},
		{"sync", "load", "ssp-1"},
		{"sync", "save", "ssp-1", "record.json"},
		{"watch", "ssp-1", "record.json"},
	} {
		_, err := execute(t, args...)
		assert.ErrorIs(t, err, errOffline, args)
	}
}

func TestSyncCmd_NotConfigured(t *testing.T) {
	useServices(t, Services{})
	_, err := execute(t, "sync", "list")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestSyncListCmd(t *testing.T) {
	s, _ := onlineServices(t)
	useServices(t, s)

	out, err := execute(t, "sync", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "ssp-1")
	assert.Contains(t, out, "Payroll")
}

func TestSyncNewCmd(t *testing.T) {
	s, store := onlineServices(t)
	useServices(t, s)

	out, err := execute(t, "sync", "new", "Benefits")
	require.NoError(t, err)
	assert.Contains(t, out, "Created ssp-2: Benefits")
	assert.Equal(t, 1, store.count("POST /ssps"))
}

func TestSyncLoadCmd(t *testing.T) {
	s, _ := onlineServices(t)
	useServices(t, s)

	dest := filepath.Join(t.TempDir(), "record.json")
	out, err := execute(t, "sync", "load", "ssp-1", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Loaded ssp-1 (Payroll)")

	got := readTempRecord(t, dest)
	assert.Equal(t, "Payroll", got.Get(domain.FieldSysName))
	assert.Equal(t, "PAY", got.Get(domain.FieldSysAcronym))
	assert.Equal(t, "The boundary covers the web tier.", got.Get(domain.FieldBndNarrative))

	st := s.Sync.State()
	assert.Equal(t, domain.SyncSynced, st.Status)
	assert.NotNil(t, st.LastSyncedAt)
}

func TestSyncLoadCmd_Failure(t *testing.T) {
	s, _ := onlineServices(t)
	useServices(t, s)

	_, err := execute(t, "sync", "load", "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load failed")
	assert.Contains(t, err.Error(), "not found")
}

func TestSyncSaveCmd(t *testing.T) {
	s, store := onlineServices(t)
	useServices(t, s)

	path := filepath.Join(t.TempDir(), "record.json")
	_, err := execute(t, "sync", "load", "ssp-1", "--out", path)
	require.NoError(t, err)

	// Unchanged: nothing is sent.
	out, err := execute(t, "sync", "save", "ssp-1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved ssp-1.")
	assert.Zero(t, store.count("PUT "))

	record := readTempRecord(t, path)
	record.Set(domain.FieldBndNarrative, "The boundary covers the web and data tiers.")
	require.NoError(t, writeRecord(path, record))

	_, err = execute(t, "sync", "save", "ssp-1", path)
	require.NoError(t, err)
	assert.Equal(t, 1, store.count("PUT /ssps/ssp-1/sections/"+domain.FieldBndNarrative))
	assert.False(t, s.Sync.State().PendingChanges)
}

func TestSyncFullCmd(t *testing.T) {
	s, store := onlineServices(t)
	useServices(t, s)

	r := sampleRecord()
	r.SetRows(domain.CollectionPortsProtocols, []domain.Row{
		{"port": "443", "protocol": "TCP", "svc": "HTTPS"},
	})

	out, err := execute(t, "sync", "full", "ssp-1", writeTempRecord(t, r))
	require.NoError(t, err)
	assert.Contains(t, out, "Fully synchronised ssp-1.")
	assert.Positive(t, store.count("PUT /ssps/ssp-1/sections/"))
	assert.Positive(t, store.count("POST /ssps/ssp-1/ports-protocols"))
}
