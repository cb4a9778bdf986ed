package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
)

// Ensure Validator implements the interface.
var _ driving.RecordValidator = (*Validator)(nil)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Validator checks compliance records against the required-field, format
// and cross-field rules.
type Validator struct{}

// NewValidator creates a new record validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate runs the three passes and returns the report. Problems are never
// returned as errors.
func (v *Validator) Validate(record *domain.ComplianceRecord) domain.ValidationResult {
	var errs []domain.ValidationError
	add := func(field, msg string) {
		errs = append(errs, domain.ValidationError{
			Field:   field,
			Section: domain.SectionFor(field),
			Message: msg,
		})
	}

	// Required fields.
	for _, rf := range domain.RequiredFields {
		if !record.Has(rf.Field) {
			add(rf.Field, rf.Label+" is required")
		}
	}

	// Formats. Blank values are only a required-field concern.
	for _, f := range domain.EmailFields {
		if val := strings.TrimSpace(record.Get(f)); val != "" && !emailPattern.MatchString(val) {
			add(f, fmt.Sprintf("%s must be a valid email address", labelFor(f)))
		}
	}
	for _, f := range domain.ImpactFields {
		if !record.Has(f) {
			continue
		}
		if _, ok := domain.NormalizeImpact(record.Get(f)); !ok {
			add(f, fmt.Sprintf("%s must be one of %s", labelFor(f), strings.Join(domain.ImpactLevels, ", ")))
		}
	}
	for _, f := range domain.NarrativeFields {
		if n := utf8.RuneCountInString(record.Get(f)); n > domain.MaxNarrativeLength {
			add(f, fmt.Sprintf("%s exceeds the maximum length of %s characters (%s)",
				labelFor(f), thousands(domain.MaxNarrativeLength), thousands(n)))
		}
	}

	// Cross-field rules.
	if strings.EqualFold(strings.TrimSpace(record.Get(domain.FieldPTACollectsPII)), "Yes") &&
		!record.Has(domain.FieldPTAPIARequired) {
		add(domain.FieldPTAPIARequired, "PIA determination is required when the system collects PII")
	}
	for _, f := range []string{domain.FieldRTO, domain.FieldRPO} {
		if record.Has(f) && !containsDigit(record.Get(f)) {
			add(f, fmt.Sprintf("%s should include a numeric value (e.g. \"4 hours\")", strings.ToUpper(f)))
		}
	}

	return newResult(errs)
}

func newResult(errs []domain.ValidationError) domain.ValidationResult {
	sections := make(map[string]int)
	for _, e := range errs {
		sections[e.Section]++
	}
	if errs == nil {
		errs = []domain.ValidationError{}
	}
	return domain.ValidationResult{
		IsValid:       len(errs) == 0,
		Errors:        errs,
		ErrorCount:    len(errs),
		SectionErrors: sections,
	}
}

func labelFor(field string) string {
	for _, rf := range domain.RequiredFields {
		if rf.Field == field {
			return rf.Label
		}
	}
	return field
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

// thousands formats n with comma separators.
func thousands(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
