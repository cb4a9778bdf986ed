package domain

import (
	"strings"
	"unicode"
)

// Section names group fields for validation reporting and change detection.
const (
	SectionSystemInfo            = "system_info"
	SectionFIPS199               = "fips_199"
	SectionControlBaseline       = "control_baseline"
	SectionRMFLifecycle          = "rmf_lifecycle"
	SectionAuthorizationBoundary = "authorization_boundary"
	SectionDataFlow              = "data_flow"
	SectionNetworkArchitecture   = "network_architecture"
	SectionPersonnel             = "personnel"
	SectionDigitalIdentity       = "digital_identity"
	SectionContingencyPlan       = "contingency_plan"
	SectionIncidentResponse      = "incident_response"
	SectionContinuousMonitoring  = "continuous_monitoring"
	SectionPrivacy               = "privacy"
	SectionConfigManagement      = "configuration_management"
)

// Scalar field names used by the wizard.
const (
	FieldSysName        = "sysName"
	FieldSysAcronym     = "sysAcronym"
	FieldSysDescription = "sysDescription"
	FieldSysStatus      = "sysStatus"
	FieldOwningAgency   = "owningAgency"
	FieldAuthType       = "authType"
	FieldDocVersion     = "docVersion"
	FieldDocDate        = "docDate"

	FieldConfidentiality = "confidentiality"
	FieldIntegrity       = "integrity"
	FieldAvailability    = "availability"

	FieldCtrlBaseline   = "ctrlBaseline"
	FieldRMFCurrentStep = "rmfCurrentStep"

	FieldBndNarrative = "bndNarrative"
	FieldDFNarrative  = "dfNarrative"
	FieldNetNarrative = "netNarrative"

	FieldSOName    = "soName"
	FieldSOEmail   = "soEmail"
	FieldAOName    = "aoName"
	FieldAOEmail   = "aoEmail"
	FieldISSOName  = "issoName"
	FieldISSOEmail = "issoEmail"
	FieldISSMName  = "issmName"
	FieldISSMEmail = "issmEmail"
	FieldSCAName   = "scaName"
	FieldSCAEmail  = "scaEmail"
	FieldPOName    = "poName"
	FieldPOEmail   = "poEmail"

	FieldDILIAL = "dilIal"

	FieldPTACollectsPII = "ptaCollectsPii"
	FieldPTAPIARequired = "ptaPiaRequired"
	FieldPTANarrative   = "ptaNarrative"
	FieldPIANarrative   = "piaNarrative"

	FieldCPPurpose = "cpPurpose"
	FieldRTO       = "rto"
	FieldRPO       = "rpo"

	FieldIRPurpose    = "irPurpose"
	FieldISCMStrategy = "iscmStrategy"
)

// FieldType is the schema tag for a scalar field.
type FieldType string

// Field types.
const (
	FieldTypeText      FieldType = "text"
	FieldTypeNarrative FieldType = "narrative"
	FieldTypeEmail     FieldType = "email"
	FieldTypeImpact    FieldType = "impact"
	FieldTypeYesNo     FieldType = "yes_no"
)

// MaxNarrativeLength is the upper bound on narrative field length, in characters.
const MaxNarrativeLength = 50000

// Impact levels accepted for FIPS 199 fields.
var ImpactLevels = []string{"Low", "Moderate", "High"}

// NarrativeFields are long-text fields bounded by MaxNarrativeLength.
// Each one is its own change-detection section.
var NarrativeFields = []string{
	FieldSysDescription,
	FieldBndNarrative,
	FieldDFNarrative,
	FieldNetNarrative,
	"rmfNotes",
	"diNarrative",
	FieldPTANarrative,
	FieldPIANarrative,
	"sepDutyNarrative",
	"policyNarrative",
	"scrmNarrative",
	"cmNarrative",
	FieldCPPurpose,
	FieldIRPurpose,
	FieldISCMStrategy,
	"poamNarrative",
}

// EmailFields are the personnel contact emails.
var EmailFields = []string{
	FieldSOEmail, FieldAOEmail, FieldISSOEmail, FieldISSMEmail, FieldSCAEmail, FieldPOEmail,
}

// ImpactFields are the FIPS 199 security objective fields.
var ImpactFields = []string{FieldConfidentiality, FieldIntegrity, FieldAvailability}

// RequiredField is one entry of the required-field table.
type RequiredField struct {
	Section string
	Field   string
	Label   string
}

// RequiredFields lists the fields every complete plan must carry, grouped by section.
var RequiredFields = []RequiredField{
	{SectionSystemInfo, FieldSysName, "System name"},
	{SectionSystemInfo, FieldSysDescription, "System description"},
	{SectionSystemInfo, FieldOwningAgency, "Owning agency"},
	{SectionSystemInfo, FieldAuthType, "Authorization type"},
	{SectionFIPS199, FieldConfidentiality, "Confidentiality impact"},
	{SectionFIPS199, FieldIntegrity, "Integrity impact"},
	{SectionFIPS199, FieldAvailability, "Availability impact"},
	{SectionControlBaseline, FieldCtrlBaseline, "Control baseline"},
	{SectionRMFLifecycle, FieldRMFCurrentStep, "Current RMF step"},
	{SectionAuthorizationBoundary, FieldBndNarrative, "Authorization boundary narrative"},
	{SectionDataFlow, FieldDFNarrative, "Data flow narrative"},
	{SectionNetworkArchitecture, FieldNetNarrative, "Network architecture narrative"},
	{SectionPersonnel, FieldSOName, "System owner name"},
	{SectionPersonnel, FieldSOEmail, "System owner email"},
	{SectionDigitalIdentity, FieldDILIAL, "Identity assurance level"},
	{SectionContingencyPlan, FieldCPPurpose, "Contingency plan purpose"},
	{SectionIncidentResponse, FieldIRPurpose, "Incident response purpose"},
	{SectionContinuousMonitoring, FieldISCMStrategy, "Continuous monitoring strategy"},
}

// ExportRequiredFields is the subset checked by IsExportReady.
var ExportRequiredFields = []string{
	FieldSysName, FieldSysDescription,
	FieldConfidentiality, FieldIntegrity, FieldAvailability,
	FieldCtrlBaseline, FieldAuthType, FieldOwningAgency,
}

// FieldSchema maps known scalar fields to their type. Fields not listed are text.
var FieldSchema = buildFieldSchema()

func buildFieldSchema() map[string]FieldType {
	schema := make(map[string]FieldType)
	for _, rf := range RequiredFields {
		schema[rf.Field] = FieldTypeText
	}
	for _, f := range NarrativeFields {
		schema[f] = FieldTypeNarrative
	}
	for _, f := range EmailFields {
		schema[f] = FieldTypeEmail
	}
	for _, f := range ImpactFields {
		schema[f] = FieldTypeImpact
	}
	schema[FieldPTACollectsPII] = FieldTypeYesNo
	schema[FieldPTAPIARequired] = FieldTypeYesNo
	return schema
}

// TypeOf returns the schema type of a scalar field.
func TypeOf(field string) FieldType {
	if t, ok := FieldSchema[field]; ok {
		return t
	}
	return FieldTypeText
}

// IsNarrative reports whether field is a narrative field.
func IsNarrative(field string) bool {
	return TypeOf(field) == FieldTypeNarrative
}

// NormalizeImpact returns the canonical impact level for v, matched case-insensitively.
func NormalizeImpact(v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, level := range ImpactLevels {
		if strings.EqualFold(v, level) {
			return level, true
		}
	}
	return "", false
}

// sectionPrefixes maps field-name prefixes to sections, longest first.
var sectionPrefixes = []struct {
	prefix  string
	section string
}{
	{"iscm", SectionContinuousMonitoring},
	{"isso", SectionPersonnel},
	{"issm", SectionPersonnel},
	{"sorn", SectionPrivacy},
	{"sca", SectionPersonnel},
	{"pta", SectionPrivacy},
	{"pia", SectionPrivacy},
	{"rto", SectionContingencyPlan},
	{"rpo", SectionContingencyPlan},
	{"so", SectionPersonnel},
	{"ao", SectionPersonnel},
	{"po", SectionPersonnel},
	{"cp", SectionContingencyPlan},
	{"ir", SectionIncidentResponse},
	{"cm", SectionConfigManagement},
}

// SectionFor returns the section a field belongs to. Fields in the required
// table use its section; others are inferred from their camelCase prefix.
func SectionFor(field string) string {
	for _, rf := range RequiredFields {
		if rf.Field == field {
			return rf.Section
		}
	}
	for _, p := range sectionPrefixes {
		if hasWordPrefix(field, p.prefix) {
			return p.section
		}
	}
	return SectionSystemInfo
}

// hasWordPrefix reports whether field starts with prefix followed by the end
// of the name or an upper-case letter or digit.
func hasWordPrefix(field, prefix string) bool {
	if !strings.HasPrefix(field, prefix) {
		return false
	}
	if len(field) == len(prefix) {
		return true
	}
	next := rune(field[len(prefix)])
	return unicode.IsUpper(next) || unicode.IsDigit(next) || next == '_'
}
