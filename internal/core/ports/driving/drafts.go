package driving

import (
	"context"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// DraftService manages named local working copies.
type DraftService interface {
	// Save stores record under name, creating or updating the draft.
	Save(ctx context.Context, name, sspID string, record *domain.ComplianceRecord) (*domain.Draft, error)

	// Get retrieves a draft by name.
	Get(ctx context.Context, name string) (*domain.Draft, error)

	// List returns all drafts.
	List(ctx context.Context) ([]domain.Draft, error)

	// Delete removes a draft.
	Delete(ctx context.Context, name string) error
}
