package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
	assert.Equal(t, 80, bar.Width())
}

func TestBar_SetDocument(t *testing.T) {
	bar := NewBar(nil, nil)

	bar.SetDocument("ssp-1", "Payroll")
	assert.Equal(t, "Payroll (ssp-1)", bar.Label())

	bar.SetDocument("ssp-1", "")
	assert.Equal(t, "ssp-1", bar.Label())

	bar.SetDocument("", "ignored")
	assert.Empty(t, bar.Label())
}

func TestBar_View(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(100)

	assert.Contains(t, bar.View(), "No document")
	assert.Contains(t, bar.View(), "s: save now")

	bar.SetDocument("ssp-1", "Payroll")
	assert.Contains(t, bar.View(), "Payroll (ssp-1)")

	bar.SetMessage("Saved")
	assert.Contains(t, bar.View(), "Saved")
	assert.NotContains(t, bar.View(), "Payroll (ssp-1)")
}

func TestBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(5)
	assert.NotEmpty(t, bar.View())
}
