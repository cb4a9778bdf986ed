package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured indicates a required collaborator (remote store, drafter) is not set up.
	ErrNotConfigured = errors.New("not configured")

	// ErrRemoteUnavailable indicates the remote SSP store could not be reached.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrNotExportReady indicates the record does not satisfy the export capability check.
	ErrNotExportReady = errors.New("record is not ready for export")
)

// StatusError is implemented by transport errors that carry an HTTP-like status.
// Services classify remote failures through it without importing adapters.
type StatusError interface {
	error
	Status() int
	ServerMessage() string
}

// ImportErrorKind classifies OSCAL import failures.
type ImportErrorKind int

// Import error kinds.
const (
	ImportTooLarge ImportErrorKind = iota + 1
	ImportEmpty
	ImportInvalidJSON
	ImportInvalidXML
	ImportInvalidYAML
	ImportUnsupportedFormat
	ImportNoSystemSecurityPlan
)

// String returns a short name for the kind.
func (k ImportErrorKind) String() string {
	switch k {
	case ImportTooLarge:
		return "too_large"
	case ImportEmpty:
		return "empty"
	case ImportInvalidJSON:
		return "invalid_json"
	case ImportInvalidXML:
		return "invalid_xml"
	case ImportInvalidYAML:
		return "invalid_yaml"
	case ImportUnsupportedFormat:
		return "unsupported_format"
	case ImportNoSystemSecurityPlan:
		return "no_system_security_plan"
	default:
		return "unknown"
	}
}

// ImportError is returned by the OSCAL importer. Message is user facing and
// callers may match on its content to present targeted guidance.
type ImportError struct {
	Kind    ImportErrorKind
	Message string
	Err     error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// Is matches another *ImportError of the same kind, so errors.Is(err, &ImportError{Kind: ImportEmpty}) works.
func (e *ImportError) Is(target error) bool {
	var t *ImportError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// IsImportError reports whether err is an import error of the given kind.
func IsImportError(err error, kind ImportErrorKind) bool {
	var ie *ImportError
	if errors.As(err, &ie) {
		return ie.Kind == kind
	}
	return false
}
