package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
)

// Ensure Exporter implements the interface.
var _ driving.OSCALExporter = (*Exporter)(nil)

// Placeholders substituted for missing values. The importer skips them.
const (
	placeholderSystemName   = "[System Name]"
	placeholderDescription  = "[System Description]"
	placeholderBoundary     = "[Authorization Boundary Description]"
	placeholderOrganization = "[Organization]"
	defaultControlNarrative = "[Implementation narrative to be provided]"
	defaultCryptoUsage      = "FIPS 140 validated cryptographic module"
	defaultDocVersion       = "1.0"
	serviceComponentTitle   = "Ports, Protocols and Services"
)

// Property names used on exported components.
const (
	propAuthorizationType   = "authorization-type"
	propSecurityZone        = "security-zone"
	propValidationReference = "validation-reference"
	propValidationLevel     = "validation-level"
	propVendor              = "vendor-name"
)

// Component types used on export.
const (
	componentThisSystem = "this-system"
	componentValidation = "validation"
	componentService    = "service"
	componentHardware   = "hardware"
)

// personnelRole binds a responsible-party role to its record fields.
type personnelRole struct {
	RoleID     string
	Title      string
	NameField  string
	EmailField string
}

var personnelRoles = []personnelRole{
	{"system-owner", "System Owner", domain.FieldSOName, domain.FieldSOEmail},
	{"authorizing-official", "Authorizing Official", domain.FieldAOName, domain.FieldAOEmail},
	{"information-system-security-officer", "Information System Security Officer", domain.FieldISSOName, domain.FieldISSOEmail},
	{"information-system-security-manager", "Information System Security Manager", domain.FieldISSMName, domain.FieldISSMEmail},
	{"security-control-assessor", "Security Control Assessor", domain.FieldSCAName, domain.FieldSCAEmail},
	{"privacy-officer", "Privacy Officer", domain.FieldPOName, domain.FieldPOEmail},
}

const profileBase = "https://raw.githubusercontent.com/usnistgov/oscal-content/main/nist.gov/SP800-53/rev5/json/"

// baselineProfiles maps control baselines to their NIST profile.
var baselineProfiles = map[string]string{
	"Low":      profileBase + "NIST_SP-800-53_rev5_LOW-baseline_profile.json",
	"Moderate": profileBase + "NIST_SP-800-53_rev5_MODERATE-baseline_profile.json",
	"High":     profileBase + "NIST_SP-800-53_rev5_HIGH-baseline_profile.json",
}

// policyFamilies are the control families whose -1 policy control is
// allocated to every baseline.
var policyFamilies = []string{
	"ac", "at", "au", "ca", "cm", "cp", "ia", "ir", "ma",
	"mp", "pe", "pl", "ps", "ra", "sa", "sc", "si", "sr",
}

var systemStates = map[string]bool{
	"operational":              true,
	"under-development":        true,
	"under-major-modification": true,
	"disposition":              true,
	"other":                    true,
}

// Exporter builds OSCAL SSP documents from compliance records.
type Exporter struct {
	codec   driven.OSCALCodec
	newUUID func() string
	now     func() time.Time
}

// NewExporter creates a new exporter. Codec is only needed by Render.
func NewExporter(codec driven.OSCALCodec) *Exporter {
	return &Exporter{
		codec:   codec,
		newUUID: NewUUID,
		now:     time.Now,
	}
}

// Render exports record and encodes it in format. Unless force is set the
// record must satisfy domain.IsExportReady.
func (e *Exporter) Render(record *domain.ComplianceRecord, format domain.Format, force bool) ([]byte, error) {
	if !force && !domain.IsExportReady(record) {
		return nil, fmt.Errorf("%w: check %s", domain.ErrNotExportReady, strings.Join(exportProblems(record), ", "))
	}
	if e.codec == nil {
		return nil, fmt.Errorf("render: %w", domain.ErrNotConfigured)
	}
	data, err := e.codec.Encode(e.Export(record), format)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return data, nil
}

// exportProblems lists the export fields that are missing or invalid.
func exportProblems(record *domain.ComplianceRecord) []string {
	var out []string
	for _, f := range domain.ExportRequiredFields {
		if !record.Has(f) {
			out = append(out, f)
			continue
		}
		if domain.TypeOf(f) == domain.FieldTypeImpact {
			if _, ok := domain.NormalizeImpact(record.Get(f)); !ok {
				out = append(out, f)
			}
		}
	}
	return out
}

// Export builds a fresh document tree from record. It never fails: missing
// values are replaced with placeholders and an empty control set with the
// baseline policy controls. Only UUIDs and the timestamp vary between calls.
func (e *Exporter) Export(record *domain.ComplianceRecord) *domain.OSCALDocument {
	if record == nil {
		record = domain.NewComplianceRecord()
	}

	thisSystem := e.thisSystemComponent(record)
	metadata, users := e.metadata(record)

	components := []domain.Component{thisSystem}
	components = append(components, e.boundaryComponents(record)...)
	components = append(components, e.cryptoComponents(record)...)
	if svc, ok := e.serviceComponent(record); ok {
		components = append(components, svc)
	}

	return &domain.OSCALDocument{
		SystemSecurityPlan: &domain.SystemSecurityPlan{
			UUID:                  e.newUUID(),
			Metadata:              metadata,
			ImportProfile:         domain.ImportProfile{Href: profileFor(record.Get(domain.FieldCtrlBaseline))},
			SystemCharacteristics: e.systemCharacteristics(record),
			SystemImplementation: domain.SystemImplementation{
				Users:      users,
				Components: components,
			},
			ControlImplementation: e.controlImplementation(record, thisSystem.UUID),
		},
	}
}

// lastModified uses the record's document date, falling back to the clock
// when it is unset or unparseable.
func (e *Exporter) lastModified(record *domain.ComplianceRecord) string {
	if v := strings.TrimSpace(record.Get(domain.FieldDocDate)); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
		if t, err := time.Parse(time.DateOnly, v); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return e.now().UTC().Format(time.RFC3339)
}

func (e *Exporter) metadata(record *domain.ComplianceRecord) (domain.Metadata, []domain.User) {
	title := placeholderSystemName + " System Security Plan"
	if record.Has(domain.FieldSysName) {
		title = strings.TrimSpace(record.Get(domain.FieldSysName)) + " System Security Plan"
	}

	md := domain.Metadata{
		Title:        title,
		LastModified: e.lastModified(record),
		Version:      valueOr(record, domain.FieldDocVersion, defaultDocVersion),
		OSCALVersion: domain.OSCALVersion,
	}

	md.Parties = append(md.Parties, domain.Party{
		UUID: e.newUUID(),
		Type: "organization",
		Name: valueOr(record, domain.FieldOwningAgency, placeholderOrganization),
	})

	var users []domain.User
	for _, role := range personnelRoles {
		name := strings.TrimSpace(record.Get(role.NameField))
		email := strings.TrimSpace(record.Get(role.EmailField))
		if name == "" && email == "" {
			continue
		}
		party := domain.Party{UUID: e.newUUID(), Type: "person", Name: name}
		if email != "" {
			party.EmailAddresses = []string{email}
		}
		md.Parties = append(md.Parties, party)
		md.Roles = append(md.Roles, domain.Role{ID: role.RoleID, Title: role.Title})
		md.ResponsibleParties = append(md.ResponsibleParties, domain.ResponsibleParty{
			RoleID:     role.RoleID,
			PartyUUIDs: []string{party.UUID},
		})
		users = append(users, domain.User{UUID: e.newUUID(), Title: role.Title, RoleIDs: []string{role.RoleID}})
	}

	if len(users) == 0 {
		users = []domain.User{{UUID: e.newUUID(), Title: "System User"}}
	}
	return md, users
}

func (e *Exporter) systemCharacteristics(record *domain.ComplianceRecord) domain.SystemCharacteristics {
	sc := domain.SystemCharacteristics{
		SystemIDs: []domain.SystemID{{
			IdentifierType: "https://ietf.org/rfc/rfc4122",
			ID:             e.newUUID(),
		}},
		SystemName:      valueOr(record, domain.FieldSysName, placeholderSystemName),
		SystemNameShort: strings.TrimSpace(record.Get(domain.FieldSysAcronym)),
		Description:     valueOr(record, domain.FieldSysDescription, placeholderDescription),
		SecurityImpactLevel: domain.SecurityImpactLevel{
			Confidentiality: record.Get(domain.FieldConfidentiality),
			Integrity:       record.Get(domain.FieldIntegrity),
			Availability:    record.Get(domain.FieldAvailability),
		},
		SecuritySensitivityLevel: sensitivityLevel(record),
		Status:                   domain.Status{State: systemState(record.Get(domain.FieldSysStatus))},
		AuthorizationBoundary: domain.Narrative{
			Description: valueOr(record, domain.FieldBndNarrative, placeholderBoundary),
		},
		SystemInformation: domain.SystemInformation{
			InformationTypes: e.informationTypes(record),
		},
	}

	if record.Has(domain.FieldAuthType) {
		sc.Props = append(sc.Props, domain.Property{
			Name:  propAuthorizationType,
			Value: strings.TrimSpace(record.Get(domain.FieldAuthType)),
		})
	}
	if record.Has(domain.FieldNetNarrative) {
		sc.NetworkArchitecture = &domain.Narrative{Description: record.Get(domain.FieldNetNarrative)}
	}
	if record.Has(domain.FieldDFNarrative) {
		sc.DataFlow = &domain.Narrative{Description: record.Get(domain.FieldDFNarrative)}
	}
	return sc
}

func (e *Exporter) informationTypes(record *domain.ComplianceRecord) []domain.InformationType {
	rows := record.Rows(domain.CollectionInfoTypes)
	out := make([]domain.InformationType, 0, len(rows))
	for _, row := range rows {
		it := domain.InformationType{
			UUID:        e.newUUID(),
			Title:       row["name"],
			Description: row["description"],
		}
		if it.Description == "" {
			it.Description = row["name"]
		}
		if id := strings.TrimSpace(row["nistId"]); id != "" {
			it.Categorizations = []domain.Categorization{{
				System:             domain.InformationTypeSystem,
				InformationTypeIDs: []string{id},
			}}
		}
		it.ConfidentialityImpact = impactOf(row["conf"])
		it.IntegrityImpact = impactOf(row["integ"])
		it.AvailabilityImpact = impactOf(row["avail"])
		out = append(out, it)
	}
	return out
}

func (e *Exporter) thisSystemComponent(record *domain.ComplianceRecord) domain.Component {
	return domain.Component{
		UUID:        e.newUUID(),
		Type:        componentThisSystem,
		Title:       valueOr(record, domain.FieldSysName, placeholderSystemName),
		Description: valueOr(record, domain.FieldSysDescription, placeholderDescription),
		Status:      domain.Status{State: "operational"},
	}
}

func (e *Exporter) boundaryComponents(record *domain.ComplianceRecord) []domain.Component {
	var out []domain.Component
	for _, row := range record.Rows(domain.CollectionBoundaryComponents) {
		name := strings.TrimSpace(row["name"])
		if name == "" {
			continue
		}
		c := domain.Component{
			UUID:        e.newUUID(),
			Type:        firstNonBlank(row["type"], componentHardware),
			Title:       name,
			Description: firstNonBlank(row["description"], name),
			Status:      domain.Status{State: "operational"},
		}
		if zone := strings.TrimSpace(row["zone"]); zone != "" {
			c.Props = append(c.Props, domain.Property{Name: propSecurityZone, Value: zone})
		}
		out = append(out, c)
	}
	return out
}

func (e *Exporter) cryptoComponents(record *domain.ComplianceRecord) []domain.Component {
	var out []domain.Component
	for _, row := range record.Rows(domain.CollectionCryptoModules) {
		mod := strings.TrimSpace(row["mod"])
		if mod == "" {
			continue
		}
		c := domain.Component{
			UUID:        e.newUUID(),
			Type:        componentValidation,
			Title:       mod,
			Description: firstNonBlank(row["use"], defaultCryptoUsage),
			Status:      domain.Status{State: "operational"},
		}
		for _, p := range []struct{ name, field string }{
			{propValidationReference, "cert"},
			{propValidationLevel, "level"},
			{propVendor, "vendor"},
		} {
			if v := strings.TrimSpace(row[p.field]); v != "" {
				c.Props = append(c.Props, domain.Property{Name: p.name, Value: v})
			}
		}
		out = append(out, c)
	}
	return out
}

// serviceComponent aggregates the ports and protocols rows into one
// component with a protocol per distinct service name.
func (e *Exporter) serviceComponent(record *domain.ComplianceRecord) (domain.Component, bool) {
	rows := record.Rows(domain.CollectionPortsProtocols)
	if len(rows) == 0 {
		return domain.Component{}, false
	}

	var order []string
	byService := make(map[string]*domain.Protocol)
	for _, row := range rows {
		svc := firstNonBlank(row["svc"], row["protocol"], "unspecified")
		p, ok := byService[svc]
		if !ok {
			p = &domain.Protocol{
				UUID:  e.newUUID(),
				Name:  strings.ToLower(strings.ReplaceAll(svc, " ", "-")),
				Title: svc,
			}
			byService[svc] = p
			order = append(order, svc)
		}
		if pr, ok := parsePortRange(row["port"], row["protocol"]); ok {
			p.PortRanges = append(p.PortRanges, pr)
		}
	}

	protocols := make([]domain.Protocol, 0, len(order))
	for _, svc := range order {
		protocols = append(protocols, *byService[svc])
	}
	return domain.Component{
		UUID:        e.newUUID(),
		Type:        componentService,
		Title:       serviceComponentTitle,
		Description: "Network services exposed by the system",
		Status:      domain.Status{State: "operational"},
		Protocols:   protocols,
	}, true
}

func (e *Exporter) controlImplementation(record *domain.ComplianceRecord, componentUUID string) domain.ControlImplementation {
	ci := domain.ControlImplementation{
		Description: "Control implementation for " + valueOr(record, domain.FieldSysName, placeholderSystemName),
	}

	requirement := func(id string, entry domain.ControlEntry) domain.ImplementedRequirement {
		return domain.ImplementedRequirement{
			UUID:      e.newUUID(),
			ControlID: strings.ToLower(id),
			ByComponents: []domain.ByComponent{{
				ComponentUUID:        componentUUID,
				UUID:                 e.newUUID(),
				Description:          firstNonBlank(entry.Description, defaultControlNarrative),
				ImplementationStatus: &domain.Status{State: implementationState(entry.Status)},
			}},
		}
	}

	if len(record.Controls) == 0 {
		for _, fam := range policyFamilies {
			ci.ImplementedRequirements = append(ci.ImplementedRequirements,
				requirement(fam+"-1", domain.ControlEntry{}))
		}
		return ci
	}

	for _, id := range record.ControlIDs() {
		ci.ImplementedRequirements = append(ci.ImplementedRequirements, requirement(id, record.Controls[id]))
	}
	return ci
}

// parsePortRange parses "443" or "8000-8080".
func parsePortRange(port, transport string) (domain.PortRange, bool) {
	port = strings.TrimSpace(port)
	lo, hi, isRange := strings.Cut(port, "-")
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return domain.PortRange{}, false
	}
	end := start
	if isRange {
		if end, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil {
			return domain.PortRange{}, false
		}
	}
	return domain.PortRange{
		Start:     start,
		End:       end,
		Transport: strings.ToUpper(firstNonBlank(transport, "TCP")),
	}, true
}

func profileFor(baseline string) string {
	if level, ok := domain.NormalizeImpact(baseline); ok {
		return baselineProfiles[level]
	}
	return baselineProfiles["Moderate"]
}

// baselineFromProfile is the inverse of profileFor.
func baselineFromProfile(href string) string {
	upper := strings.ToUpper(href)
	for _, level := range domain.ImpactLevels {
		if strings.Contains(upper, strings.ToUpper(level)+"-BASELINE") {
			return level
		}
	}
	return ""
}

func systemState(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	s = strings.ReplaceAll(s, " ", "-")
	if s == "" {
		return "operational"
	}
	if systemStates[s] {
		return s
	}
	return "other"
}

func implementationState(status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	if s == "" {
		return "planned"
	}
	return strings.ReplaceAll(s, " ", "-")
}

// sensitivityLevel is the high-water mark of the three impact levels.
func sensitivityLevel(record *domain.ComplianceRecord) string {
	rank := map[string]int{"Low": 1, "Moderate": 2, "High": 3}
	best := ""
	for _, f := range domain.ImpactFields {
		if level, ok := domain.NormalizeImpact(record.Get(f)); ok && rank[level] > rank[best] {
			best = level
		}
	}
	if best == "" {
		return ""
	}
	return "fips-199-" + strings.ToLower(best)
}

func impactOf(level string) *domain.Impact {
	if strings.TrimSpace(level) == "" {
		return nil
	}
	return &domain.Impact{Base: level}
}

func valueOr(record *domain.ComplianceRecord, field, fallback string) string {
	if record.Has(field) {
		return record.Get(field)
	}
	return fallback
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
