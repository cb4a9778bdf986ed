package driven

import "github.com/custodia-labs/ssp-cli/internal/core/domain"

// OSCALCodec serialises OSCAL documents.
type OSCALCodec interface {
	// Encode renders doc in the given format.
	Encode(doc *domain.OSCALDocument, format domain.Format) ([]byte, error)

	// DecodeTree parses data into the generic JSON-shaped tree: objects are
	// map[string]any, arrays []any, scalars string, float64 or bool.
	// Every format decodes to the same tree shape.
	DecodeTree(data []byte, format domain.Format) (map[string]any, error)
}
