package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

func TestStatusCmd(t *testing.T) {
	s, _ := onlineServices(t)
	useServices(t, s)

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:        idle")
	assert.Contains(t, out, "Last synced:   never")

	_, err = execute(t, "sync", "load", "ssp-1", "--out", filepath.Join(t.TempDir(), "r.json"))
	require.NoError(t, err)

	out, err = execute(t, "status", "ssp-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:        synced")
	assert.Contains(t, out, "Document:      Payroll (ssp-1)")
	assert.Contains(t, out, "Pending edits: no")
	assert.NotContains(t, out, "never")
}

func TestStatusCmd_FileNeedsID(t *testing.T) {
	useServices(t, offlineServices())

	_, err := execute(t, "status", "--watch", "--file", "record.json")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDiffCmd(t *testing.T) {
	s, _ := onlineServices(t)
	useServices(t, s)

	path := filepath.Join(t.TempDir(), "record.json")
	_, err := execute(t, "sync", "load", "ssp-1", "--out", path)
	require.NoError(t, err)

	out, err := execute(t, "diff", "ssp-1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No changes since last sync.")

	record := readTempRecord(t, path)
	record.Set(domain.FieldBndNarrative, "The boundary covers the web and data tiers.")
	require.NoError(t, writeRecord(path, record))

	out, err = execute(t, "diff", "ssp-1", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Changed sections:")
	assert.Contains(t, out, "  "+domain.FieldBndNarrative)
	assert.Contains(t, out, "--- "+domain.FieldBndNarrative)
	assert.Contains(t, out, "@@")
}

func TestDiffCmd_NoBaseline(t *testing.T) {
	useServices(t, offlineServices())

	out, err := execute(t, "diff", "ssp-9", writeTempRecord(t, sampleRecord()))
	require.NoError(t, err)
	assert.Contains(t, out, "No synced record for ssp-9")
	assert.Contains(t, out, "Changed sections:")
}
