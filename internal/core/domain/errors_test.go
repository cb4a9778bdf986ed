package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrNotConfigured", ErrNotConfigured},
		{"ErrRemoteUnavailable", ErrRemoteUnavailable},
		{"ErrNotExportReady", ErrNotExportReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrInvalidInput))
}

func TestImportError_Message(t *testing.T) {
	err := &ImportError{Kind: ImportEmpty, Message: "File is empty"}
	assert.Equal(t, "File is empty", err.Error())

	wrapped := &ImportError{Kind: ImportInvalidJSON, Message: "Invalid JSON", Err: errors.New("unexpected EOF")}
	assert.Equal(t, "Invalid JSON: unexpected EOF", wrapped.Error())
}

func TestImportError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("import: %w", &ImportError{Kind: ImportTooLarge, Message: "too big"})

	assert.True(t, errors.Is(err, &ImportError{Kind: ImportTooLarge}))
	assert.False(t, errors.Is(err, &ImportError{Kind: ImportEmpty}))
	assert.True(t, IsImportError(err, ImportTooLarge))
	assert.False(t, IsImportError(errors.New("other"), ImportTooLarge))
}

func TestImportError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ImportError{Kind: ImportInvalidXML, Message: "Invalid XML", Err: cause}
	assert.ErrorIs(t, err, cause)
}

func TestImportErrorKind_String(t *testing.T) {
	assert.Equal(t, "too_large", ImportTooLarge.String())
	assert.Equal(t, "no_system_security_plan", ImportNoSystemSecurityPlan.String())
	assert.Equal(t, "unknown", ImportErrorKind(99).String())
}
