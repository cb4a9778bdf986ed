package driving

import "github.com/custodia-labs/ssp-cli/internal/core/domain"

// RecordValidator checks a compliance record. It has no side effects.
type RecordValidator interface {
	// Validate returns the structured validation report.
	Validate(record *domain.ComplianceRecord) domain.ValidationResult
}
