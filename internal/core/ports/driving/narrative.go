package driving

import (
	"context"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// NarrativeService drafts narrative fields through the optional drafter.
type NarrativeService interface {
	// Available reports whether a drafter is configured.
	Available() bool

	// Draft generates sanitised text for a narrative field of record.
	Draft(ctx context.Context, record *domain.ComplianceRecord, field string) (string, error)

	// Sanitize applies the narrative output contract to text.
	Sanitize(text string) string
}
