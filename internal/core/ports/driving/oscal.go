package driving

import "github.com/custodia-labs/ssp-cli/internal/core/domain"

// OSCALExporter converts compliance records to OSCAL documents.
type OSCALExporter interface {
	// Export builds a fresh document tree. It never fails; missing values
	// are filled with defaults.
	Export(record *domain.ComplianceRecord) *domain.OSCALDocument

	// Render exports and encodes the record. Unless force is set the
	// record must pass domain.IsExportReady.
	Render(record *domain.ComplianceRecord, format domain.Format, force bool) ([]byte, error)
}

// OSCALImporter converts OSCAL documents back to compliance records.
type OSCALImporter interface {
	// Import parses file. Failures are *domain.ImportError.
	Import(file domain.ImportFile) (*domain.ImportResult, error)
}
