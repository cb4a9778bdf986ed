package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

func TestRecordSource(t *testing.T) {
	path := writeTempRecord(t, sampleRecord())

	got, err := recordSource(path)(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Payroll", got.Get(domain.FieldSysName))

	_, err = recordSource(filepath.Join(t.TempDir(), "missing.json"))(context.Background())
	assert.Error(t, err)
}

func TestWatch_MissingFile(t *testing.T) {
	s, _ := onlineServices(t)
	useServices(t, s)

	_, err := execute(t, "watch", "ssp-1", filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
