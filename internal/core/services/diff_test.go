package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

func TestDiffNarratives(t *testing.T) {
	base := domain.NewComplianceRecord()
	base.Set(domain.FieldBndNarrative, "The boundary includes the web tier.")
	base.Set(domain.FieldDFNarrative, "Unchanged.")
	base.Set(domain.FieldSysName, "Payroll")

	cur := base.Clone()
	cur.Set(domain.FieldBndNarrative, "The boundary includes the web and data tiers.")
	cur.Set(domain.FieldNetNarrative, "New text")
	cur.Set(domain.FieldSysName, "Renamed")

	diffs := DiffNarratives(base, cur)

	require.Len(t, diffs, 2)
	assert.Equal(t, domain.FieldBndNarrative, diffs[0].Field)
	assert.Equal(t, domain.SectionFor(domain.FieldBndNarrative), diffs[0].Section)
	assert.Contains(t, diffs[0].Patch, "@@")
	assert.Positive(t, diffs[0].Inserted)

	assert.Equal(t, domain.FieldNetNarrative, diffs[1].Field)
	assert.Equal(t, len("New text"), diffs[1].Inserted)
	assert.Zero(t, diffs[1].Deleted)
}

func TestDiffNarratives_Removed(t *testing.T) {
	base := domain.NewComplianceRecord()
	base.Set(domain.FieldIRPurpose, "gone")

	diffs := DiffNarratives(base, domain.NewComplianceRecord())

	require.Len(t, diffs, 1)
	assert.Equal(t, 4, diffs[0].Deleted)
}

func TestDiffNarratives_NilBaselineAndWhitespace(t *testing.T) {
	cur := domain.NewComplianceRecord()
	cur.Set(domain.FieldBndNarrative, "line one\r\nline two")

	diffs := DiffNarratives(nil, cur)
	require.Len(t, diffs, 1)

	base := domain.NewComplianceRecord()
	base.Set(domain.FieldBndNarrative, "line one  \nline two")
	assert.Empty(t, DiffNarratives(base, cur))
}
