package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ControlsKey is the record property holding per-control implementation entries.
const ControlsKey = "controls"

// ControlEntry is the wizard's implementation record for a single control.
type ControlEntry struct {
	// Status is the implementation state (implemented, partial, planned, alternative, not-applicable).
	Status string `json:"status,omitempty"`

	// Description is the free-text implementation narrative.
	Description string `json:"description,omitempty"`
}

// ComplianceRecord is the canonical in-memory SSP document. Every field is
// optional; nothing is structurally required until validation or export.
type ComplianceRecord struct {
	Fields      map[string]string
	Collections map[CollectionKind][]Row
	Controls    map[string]ControlEntry
}

// NewComplianceRecord returns an empty record.
func NewComplianceRecord() *ComplianceRecord {
	return &ComplianceRecord{
		Fields:      make(map[string]string),
		Collections: make(map[CollectionKind][]Row),
		Controls:    make(map[string]ControlEntry),
	}
}

// Get returns a scalar field, or "" when unset.
func (r *ComplianceRecord) Get(field string) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	return r.Fields[field]
}

// Has reports whether field is present and non-blank after trimming.
func (r *ComplianceRecord) Has(field string) bool {
	return strings.TrimSpace(r.Get(field)) != ""
}

// Set assigns a scalar field.
func (r *ComplianceRecord) Set(field, value string) {
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[field] = value
}

// Rows returns the rows of a collection.
func (r *ComplianceRecord) Rows(kind CollectionKind) []Row {
	if r == nil || r.Collections == nil {
		return nil
	}
	return r.Collections[kind]
}

// SetRows replaces a collection.
func (r *ComplianceRecord) SetRows(kind CollectionKind, rows []Row) {
	if r.Collections == nil {
		r.Collections = make(map[CollectionKind][]Row)
	}
	r.Collections[kind] = rows
}

// SetControl assigns a control entry keyed by its upper-cased id.
func (r *ComplianceRecord) SetControl(id string, entry ControlEntry) {
	if r.Controls == nil {
		r.Controls = make(map[string]ControlEntry)
	}
	r.Controls[strings.ToUpper(strings.TrimSpace(id))] = entry
}

// ControlIDs returns the control ids in sorted order.
func (r *ComplianceRecord) ControlIDs() []string {
	ids := make([]string, 0, len(r.Controls))
	for id := range r.Controls {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Clone returns a deep copy of the record.
func (r *ComplianceRecord) Clone() *ComplianceRecord {
	if r == nil {
		return nil
	}
	out := NewComplianceRecord()
	for k, v := range r.Fields {
		out.Fields[k] = v
	}
	for kind, rows := range r.Collections {
		cp := make([]Row, len(rows))
		for i, row := range rows {
			cp[i] = row.Clone()
		}
		out.Collections[kind] = cp
	}
	for id, c := range r.Controls {
		out.Controls[id] = c
	}
	return out
}

// IsEmpty reports whether the record carries no data at all.
func (r *ComplianceRecord) IsEmpty() bool {
	if r == nil {
		return true
	}
	for _, v := range r.Fields {
		if v != "" {
			return false
		}
	}
	for _, rows := range r.Collections {
		if len(rows) > 0 {
			return false
		}
	}
	return len(r.Controls) == 0
}

// IsExportReady reports whether the record satisfies the validated-record
// capability: the export field subset is present and the impact levels are
// drawn from {Low, Moderate, High}.
func IsExportReady(r *ComplianceRecord) bool {
	for _, f := range ExportRequiredFields {
		if !r.Has(f) {
			return false
		}
	}
	for _, f := range ImpactFields {
		if _, ok := NormalizeImpact(r.Get(f)); !ok {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the record as the flat wizard object.
func (r ComplianceRecord) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+len(r.Collections)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	for _, spec := range Collections {
		rows := r.Collections[spec.Kind]
		if len(rows) == 0 {
			continue
		}
		out[spec.LocalKey] = rows
	}
	if len(r.Controls) > 0 {
		out[ControlsKey] = r.Controls
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the flat wizard object, validating value shapes
// against the field schema.
func (r *ComplianceRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	rec := NewComplianceRecord()
	for key, value := range raw {
		switch {
		case key == ControlsKey:
			controls, err := decodeControls(value)
			if err != nil {
				return err
			}
			for id, c := range controls {
				rec.SetControl(id, c)
			}
		default:
			if spec, ok := SpecForLocalKey(key); ok {
				rows, err := decodeRows(key, value)
				if err != nil {
					return err
				}
				if len(rows) > 0 {
					rec.Collections[spec.Kind] = rows
				}
				continue
			}
			s, present, err := decodeScalar(key, value)
			if err != nil {
				return err
			}
			if present {
				rec.Fields[key] = s
			}
		}
	}

	*r = *rec
	return nil
}

func decodeScalar(key string, value json.RawMessage) (string, bool, error) {
	var v any
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return "", false, fmt.Errorf("%w: field %q: %w", ErrInvalidInput, key, err)
	}
	s, ok := stringify(v)
	if !ok {
		if v == nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("%w: field %q must be a %s value", ErrInvalidInput, key, TypeOf(key))
	}
	return s, true, nil
}

func decodeRows(key string, value json.RawMessage) ([]Row, error) {
	var items []map[string]any
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: collection %q must be an array of objects: %w", ErrInvalidInput, key, err)
	}
	rows := make([]Row, 0, len(items))
	for _, item := range items {
		row := make(Row, len(item))
		for k, v := range item {
			if s, ok := stringify(v); ok {
				row[k] = s
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeControls(value json.RawMessage) (map[string]ControlEntry, error) {
	var items map[string]json.RawMessage
	if err := json.Unmarshal(value, &items); err != nil {
		return nil, fmt.Errorf("%w: controls must be an object: %w", ErrInvalidInput, err)
	}
	out := make(map[string]ControlEntry, len(items))
	for id, item := range items {
		var entry ControlEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			// A bare string is taken as the narrative.
			var text string
			if err2 := json.Unmarshal(item, &text); err2 != nil {
				return nil, fmt.Errorf("%w: control %q: %w", ErrInvalidInput, id, err)
			}
			entry.Description = text
		}
		out[id] = entry
	}
	return out, nil
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}
