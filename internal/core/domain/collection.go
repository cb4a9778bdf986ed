package domain

import "strings"

// CollectionKind identifies a list-valued part of a compliance record.
type CollectionKind string

// Collection kinds.
const (
	CollectionInfoTypes          CollectionKind = "info-types"
	CollectionPortsProtocols     CollectionKind = "ports-protocols"
	CollectionCryptoModules      CollectionKind = "crypto-modules"
	CollectionSeparationDuties   CollectionKind = "separation-duties"
	CollectionPolicyMappings     CollectionKind = "policy-mappings"
	CollectionSCRMSuppliers      CollectionKind = "scrm-suppliers"
	CollectionCMBaselines        CollectionKind = "cm-baselines"
	CollectionBoundaryComponents CollectionKind = "boundary-components"
)

// Row is one entry of a collection. It has no identity beyond its position.
type Row map[string]string

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// CollectionSpec describes how a collection is stored locally and remotely.
type CollectionSpec struct {
	Kind CollectionKind

	// LocalKey is the property name in the record JSON.
	LocalKey string

	// Identifiers must all be non-blank for a row to be transmitted.
	Identifiers []string

	// Resource is the remote collection path segment. Empty when the
	// collection is not synchronised.
	Resource string

	// FieldMap renames local row fields to remote field names. Fields not
	// listed are sent unchanged.
	FieldMap map[string]string
}

// Synced reports whether the collection has a remote counterpart.
func (s CollectionSpec) Synced() bool {
	return s.Resource != ""
}

// IsValidRow reports whether every identifying field of r is non-blank.
func (s CollectionSpec) IsValidRow(r Row) bool {
	for _, id := range s.Identifiers {
		if strings.TrimSpace(r[id]) == "" {
			return false
		}
	}
	return true
}

// ToRemote maps a local row to the remote schema's field names.
func (s CollectionSpec) ToRemote(r Row) map[string]string {
	out := make(map[string]string, len(r))
	for k, v := range r {
		if remote, ok := s.FieldMap[k]; ok {
			out[remote] = v
			continue
		}
		out[k] = v
	}
	return out
}

// FromRemote maps a remote row back to local field names.
func (s CollectionSpec) FromRemote(remote map[string]string) Row {
	inverse := make(map[string]string, len(s.FieldMap))
	for local, rem := range s.FieldMap {
		inverse[rem] = local
	}
	out := make(Row, len(remote))
	for k, v := range remote {
		if k == "id" || k == "ssp_id" {
			continue
		}
		if local, ok := inverse[k]; ok {
			out[local] = v
			continue
		}
		out[k] = v
	}
	return out
}

// Collections lists every collection kind in a fixed order.
var Collections = []CollectionSpec{
	{
		Kind:        CollectionInfoTypes,
		LocalKey:    "infoTypes",
		Identifiers: []string{"nistId", "name"},
		Resource:    "info-types",
		FieldMap: map[string]string{
			"nistId": "nist_id",
			"conf":   "confidentiality_impact",
			"integ":  "integrity_impact",
			"avail":  "availability_impact",
		},
	},
	{
		Kind:        CollectionPortsProtocols,
		LocalKey:    "ppsRows",
		Identifiers: []string{"port"},
		Resource:    "ports-protocols",
		FieldMap: map[string]string{
			"svc":    "service_name",
			"usedBy": "used_by",
		},
	},
	{
		Kind:        CollectionCryptoModules,
		LocalKey:    "cryptoMods",
		Identifiers: []string{"mod"},
		Resource:    "crypto-modules",
		FieldMap: map[string]string{
			"mod":   "module_name",
			"cert":  "certificate_number",
			"level": "validation_level",
			"use":   "usage",
		},
	},
	{
		Kind:        CollectionSeparationDuties,
		LocalKey:    "sepDutyRows",
		Identifiers: []string{"role"},
		Resource:    "separation-duties",
		FieldMap: map[string]string{
			"duties":     "duty_description",
			"conflicts":  "conflicting_roles",
			"mitigation": "mitigation",
		},
	},
	{
		Kind:        CollectionPolicyMappings,
		LocalKey:    "policyRows",
		Identifiers: []string{"family"},
		Resource:    "policy-mappings",
		FieldMap: map[string]string{
			"family":   "control_family",
			"title":    "policy_title",
			"owner":    "policy_owner",
			"reviewed": "last_reviewed",
		},
	},
	{
		Kind:        CollectionSCRMSuppliers,
		LocalKey:    "scrmRows",
		Identifiers: []string{"supplier"},
		Resource:    "scrm-entries",
		FieldMap: map[string]string{
			"supplier":    "supplier_name",
			"product":     "product_name",
			"criticality": "criticality_level",
		},
	},
	{
		Kind:        CollectionCMBaselines,
		LocalKey:    "cmBaselines",
		Identifiers: []string{"component"},
		Resource:    "cm-baselines",
		FieldMap: map[string]string{
			"component": "component_name",
			"baseline":  "baseline_standard",
		},
	},
	{
		Kind:        CollectionBoundaryComponents,
		LocalKey:    "bndComponents",
		Identifiers: []string{"name"},
	},
}

// SyncedCollections returns the collection specs that have a remote resource.
func SyncedCollections() []CollectionSpec {
	out := make([]CollectionSpec, 0, len(Collections))
	for _, c := range Collections {
		if c.Synced() {
			out = append(out, c)
		}
	}
	return out
}

// SpecFor returns the spec for kind.
func SpecFor(kind CollectionKind) (CollectionSpec, bool) {
	for _, c := range Collections {
		if c.Kind == kind {
			return c, true
		}
	}
	return CollectionSpec{}, false
}

// SpecForLocalKey returns the spec whose LocalKey is key.
func SpecForLocalKey(key string) (CollectionSpec, bool) {
	for _, c := range Collections {
		if c.LocalKey == key {
			return c, true
		}
	}
	return CollectionSpec{}, false
}
