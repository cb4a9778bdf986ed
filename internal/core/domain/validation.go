package domain

// ValidationError is one problem found in a compliance record.
type ValidationError struct {
	// Field is the offending field name.
	Field string `json:"field"`

	// Section is the wizard section the field belongs to.
	Section string `json:"section"`

	// Message is a human readable description.
	Message string `json:"message"`
}

// ValidationResult is the structured report returned by the field validator.
// Validation problems are never raised as errors.
type ValidationResult struct {
	IsValid       bool              `json:"isValid"`
	Errors        []ValidationError `json:"errors"`
	ErrorCount    int               `json:"errorCount"`
	SectionErrors map[string]int    `json:"sectionErrors"`
}

// ErrorsFor returns the errors reported against field.
func (r ValidationResult) ErrorsFor(field string) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// ErrorsIn returns the errors reported in section.
func (r ValidationResult) ErrorsIn(section string) []ValidationError {
	var out []ValidationError
	for _, e := range r.Errors {
		if e.Section == section {
			out = append(out, e)
		}
	}
	return out
}
