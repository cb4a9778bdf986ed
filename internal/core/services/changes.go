package services

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// SectionContents projects a record onto the remote section layout. Only
// populated sections appear:
//
//   - each narrative field is its own section, keyed by field name, holding a string
//   - fields owned by an auxiliary singleton are grouped under its resource name
//   - remaining scalar fields are grouped under their section name
//   - controls are grouped under "controls"
//   - each synchronised collection is keyed by its kind
func SectionContents(record *domain.ComplianceRecord) map[string]any {
	out := make(map[string]any)
	if record == nil {
		return out
	}

	group := func(key string) map[string]string {
		m, ok := out[key].(map[string]string)
		if !ok {
			m = make(map[string]string)
			out[key] = m
		}
		return m
	}

	for field, value := range record.Fields {
		if value == "" {
			continue
		}
		switch {
		case domain.IsNarrative(field):
			out[field] = value
		default:
			if s, ok := domain.SingletonFor(field); ok {
				group(s.Resource)[field] = value
				continue
			}
			group(domain.SectionFor(field))[field] = value
		}
	}

	if len(record.Controls) > 0 {
		controls := make(map[string]domain.ControlEntry, len(record.Controls))
		for id, c := range record.Controls {
			controls[id] = c
		}
		out[domain.ControlsKey] = controls
	}

	for _, spec := range domain.SyncedCollections() {
		if rows := record.Rows(spec.Kind); len(rows) > 0 {
			out[string(spec.Kind)] = rows
		}
	}
	return out
}

// ChangedSections returns the sorted section keys whose serialised content
// differs between previous and current. A nil previous treats every
// populated section as changed.
//
// Equality is byte comparison of the JSON encoding. Object keys encode in
// sorted order, but collection rows keep their order, so reordering an
// otherwise identical collection counts as a change.
func ChangedSections(previous, current *domain.ComplianceRecord) []string {
	cur := SectionContents(current)
	if previous == nil {
		return sortedKeys(cur)
	}
	prev := SectionContents(previous)

	changed := make(map[string]struct{})
	for key, value := range cur {
		if !sameJSON(prev[key], value) {
			changed[key] = struct{}{}
		}
	}
	for key := range prev {
		if _, ok := cur[key]; !ok {
			changed[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(changed))
	for k := range changed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sameJSON(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ja, jb)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// isCollectionSection reports whether key names a synchronised collection.
func isCollectionSection(key string) (domain.CollectionSpec, bool) {
	spec, ok := domain.SpecFor(domain.CollectionKind(key))
	if !ok || !spec.Synced() {
		return domain.CollectionSpec{}, false
	}
	return spec, true
}

// emptySection is the content pushed when a section was cleared locally.
func emptySection(key string) any {
	if domain.IsNarrative(key) {
		return ""
	}
	return map[string]string{}
}
