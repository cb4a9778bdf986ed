package domain

// SingletonSpec describes an auxiliary single-object resource on the remote
// store and the record fields it owns.
type SingletonSpec struct {
	// Resource is the remote path segment.
	Resource string

	// Prefixes select owned fields by camelCase prefix.
	Prefixes []string
}

// Owns reports whether field is stored on this resource.
func (s SingletonSpec) Owns(field string) bool {
	for _, p := range s.Prefixes {
		if hasWordPrefix(field, p) {
			return true
		}
	}
	return false
}

// Singletons lists the auxiliary singleton resources in a fixed order.
var Singletons = []SingletonSpec{
	{Resource: "rmf-tracking", Prefixes: []string{"rmf"}},
	{Resource: "digital-identity", Prefixes: []string{"dil", "di"}},
	{Resource: "privacy-analysis", Prefixes: []string{"pta", "pia", "sorn"}},
	{Resource: "config-management", Prefixes: []string{"cm"}},
	{Resource: "scrm-plan", Prefixes: []string{"scrm"}},
	{Resource: "poam-summary", Prefixes: []string{"poam"}},
}

// SingletonFor returns the singleton resource owning field, if any.
// Narrative fields are never owned by a singleton; they are pushed as
// primary-document sections.
func SingletonFor(field string) (SingletonSpec, bool) {
	if IsNarrative(field) {
		return SingletonSpec{}, false
	}
	for _, s := range Singletons {
		if s.Owns(field) {
			return s, true
		}
	}
	return SingletonSpec{}, false
}

// IsSingletonResource reports whether key names a singleton resource.
func IsSingletonResource(key string) bool {
	for _, s := range Singletons {
		if s.Resource == key {
			return true
		}
	}
	return false
}
