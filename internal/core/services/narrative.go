package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ssp-cli/internal/logger"
)

// Ensure NarrativeService implements the interface.
var _ driving.NarrativeService = (*NarrativeService)(nil)

// defaultNarrativeTokens bounds drafter output.
const defaultNarrativeTokens = 1024

var (
	markupTag    = regexp.MustCompile(`(?s)<[^>]*>`)
	scriptBlock  = regexp.MustCompile(`(?is)<(script|style)\b.*?</(script|style)\s*>`)
	blankLines   = regexp.MustCompile(`\n{3,}`)
	inlineSpaces = regexp.MustCompile(`[ \t]+`)
)

// NarrativeService drafts narrative fields and sanitises drafter output.
type NarrativeService struct {
	drafter driven.NarrativeDrafter
}

// NewNarrativeService creates a new narrative service.
// The drafter is optional (can be nil).
func NewNarrativeService(drafter driven.NarrativeDrafter) *NarrativeService {
	return &NarrativeService{drafter: drafter}
}

// Available reports whether a drafter is configured.
func (s *NarrativeService) Available() bool {
	return s.drafter != nil
}

// Draft asks the drafter for field and returns the sanitised result. Only
// non-narrative values of record are passed as context.
func (s *NarrativeService) Draft(ctx context.Context, record *domain.ComplianceRecord, field string) (string, error) {
	if s.drafter == nil {
		return "", fmt.Errorf("narrative drafting: %w", domain.ErrNotConfigured)
	}
	if !domain.IsNarrative(field) {
		return "", fmt.Errorf("%w: %q is not a narrative field", domain.ErrInvalidInput, field)
	}

	req := driven.NarrativeRequest{
		Field:     field,
		Section:   domain.SectionFor(field),
		Facts:     narrativeFacts(record),
		MaxTokens: defaultNarrativeTokens,
	}

	logger.Debug("drafting %s with %s (%d facts)", field, s.drafter.ModelName(), len(req.Facts))
	text, err := s.drafter.Draft(ctx, req)
	if err != nil {
		return "", fmt.Errorf("draft %s: %w", field, err)
	}

	clean := s.Sanitize(text)
	if clean == "" {
		return "", fmt.Errorf("draft %s: drafter returned no usable text", field)
	}
	return clean, nil
}

// Sanitize removes markup and control characters, normalises whitespace and
// truncates to the narrative length limit.
func (s *NarrativeService) Sanitize(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = scriptBlock.ReplaceAllString(text, "")
	text = markupTag.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	text = strings.Map(func(r rune) rune {
		switch {
		case r == '\n':
			return r
		case r == '\t':
			return ' '
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
			return -1
		}
		return r
	}, text)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(inlineSpaces.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) > domain.MaxNarrativeLength {
		text = strings.TrimSpace(string([]rune(text)[:domain.MaxNarrativeLength]))
	}
	return text
}

// narrativeFacts collects the record's non-narrative scalar values.
// Email addresses are never sent.
func narrativeFacts(record *domain.ComplianceRecord) map[string]string {
	facts := make(map[string]string)
	if record == nil {
		return facts
	}
	for k, v := range record.Fields {
		switch domain.TypeOf(k) {
		case domain.FieldTypeNarrative, domain.FieldTypeEmail:
			continue
		}
		if strings.TrimSpace(v) == "" {
			continue
		}
		facts[k] = v
	}
	return facts
}
