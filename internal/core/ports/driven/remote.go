package driven

import (
	"context"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// RemoteStore is the SSP backend. Every call is a network round trip.
//
// Failures carrying an HTTP-like status implement domain.StatusError so
// callers can tell not-found, method-not-allowed and conflict apart from
// everything else.
type RemoteStore interface {
	// ListDocuments returns the available SSP documents.
	ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error)

	// CreateDocument creates an empty SSP document and returns its summary.
	CreateDocument(ctx context.Context, title string) (*domain.DocumentSummary, error)

	// GetDocument returns the primary document envelope.
	GetDocument(ctx context.Context, sspID string) (*domain.DocumentEnvelope, error)

	// PutSection replaces one section of the primary document. Content is a
	// string for narrative sections or an object for structured groups.
	PutSection(ctx context.Context, sspID, key string, content any) error

	// GetResource fetches an auxiliary singleton resource.
	GetResource(ctx context.Context, sspID, resource string) (map[string]any, error)

	// PutResource replaces an auxiliary singleton resource.
	PutResource(ctx context.Context, sspID, resource string, body map[string]any) error

	// ListRows fetches every row of an auxiliary collection.
	ListRows(ctx context.Context, sspID, resource string) ([]map[string]string, error)

	// DeleteRows clears an auxiliary collection.
	DeleteRows(ctx context.Context, sspID, resource string) error

	// CreateRow appends one row to an auxiliary collection.
	CreateRow(ctx context.Context, sspID, resource string, row map[string]string) error
}
