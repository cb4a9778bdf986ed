package driven

import "context"

// NarrativeDrafter produces first-draft narrative text for a record field.
// This is an optional service; when nil, drafting is unavailable.
// Output is untrusted and is sanitised by the caller before use.
type NarrativeDrafter interface {
	// Draft generates narrative text for the request.
	Draft(ctx context.Context, req NarrativeRequest) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// NarrativeRequest describes the narrative to draft.
type NarrativeRequest struct {
	// Field is the narrative field name, e.g. "bndNarrative".
	Field string

	// Section is the section the field belongs to.
	Section string

	// Facts are non-narrative record values given as context.
	Facts map[string]string

	// MaxTokens bounds the generated length.
	MaxTokens int
}
