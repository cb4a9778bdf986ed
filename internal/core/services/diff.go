package services

import (
	"sort"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// NarrativeDiff is the text difference of one narrative field.
type NarrativeDiff struct {
	Field    string
	Section  string
	Patch    string
	Inserted int
	Deleted  int
}

// DiffNarratives compares every narrative field of current against
// baseline and returns a patch per changed field, ordered by field name.
// A nil baseline diffs against empty text.
func DiffNarratives(baseline, current *domain.ComplianceRecord) []NarrativeDiff {
	fields := make(map[string]bool)
	for _, r := range []*domain.ComplianceRecord{baseline, current} {
		if r == nil {
			continue
		}
		for k := range r.Fields {
			if domain.IsNarrative(k) {
				fields[k] = true
			}
		}
	}

	names := make([]string, 0, len(fields))
	for k := range fields {
		names = append(names, k)
	}
	sort.Strings(names)

	dmp := diffmatchpatch.New()
	var out []NarrativeDiff
	for _, field := range names {
		before := normalizeText(baseline.Get(field))
		after := normalizeText(current.Get(field))
		if before == after {
			continue
		}

		diffs := dmp.DiffMain(before, after, false)
		diffs = dmp.DiffCleanupSemantic(diffs)

		d := NarrativeDiff{
			Field:   field,
			Section: domain.SectionFor(field),
			Patch:   dmp.PatchToText(dmp.PatchMake(before, diffs)),
		}
		for _, diff := range diffs {
			switch diff.Type {
			case diffmatchpatch.DiffInsert:
				d.Inserted += len([]rune(diff.Text))
			case diffmatchpatch.DiffDelete:
				d.Deleted += len([]rune(diff.Text))
			}
		}
		out = append(out, d)
	}
	return out
}

// normalizeText converts CRLF to LF and trims trailing whitespace per line.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
