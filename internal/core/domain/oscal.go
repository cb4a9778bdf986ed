package domain

import "encoding/xml"

// OSCAL constants.
const (
	// OSCALVersion is the OSCAL compatibility line produced on export.
	OSCALVersion = "1.1.2"

	// OSCALNamespace is the XML namespace of OSCAL documents.
	OSCALNamespace = "http://csrc.nist.gov/ns/oscal/1.0"

	// SSPRootKey is the top-level key of an SSP document.
	SSPRootKey = "system-security-plan"

	// InformationTypeSystem is the categorization system for NIST SP 800-60 types.
	InformationTypeSystem = "https://doi.org/10.6028/NIST.SP.800-60v2r1"
)

// OSCALDocument is the document graph exchanged at the system boundary.
type OSCALDocument struct {
	SystemSecurityPlan *SystemSecurityPlan `json:"system-security-plan" yaml:"system-security-plan"`
}

// SystemSecurityPlan is the root OSCAL SSP assembly.
type SystemSecurityPlan struct {
	XMLName               xml.Name              `json:"-" yaml:"-" xml:"http://csrc.nist.gov/ns/oscal/1.0 system-security-plan"`
	UUID                  string                `json:"uuid" yaml:"uuid" xml:"uuid,attr"`
	Metadata              Metadata              `json:"metadata" yaml:"metadata" xml:"metadata"`
	ImportProfile         ImportProfile         `json:"import-profile" yaml:"import-profile" xml:"import-profile"`
	SystemCharacteristics SystemCharacteristics `json:"system-characteristics" yaml:"system-characteristics" xml:"system-characteristics"`
	SystemImplementation  SystemImplementation  `json:"system-implementation" yaml:"system-implementation" xml:"system-implementation"`
	ControlImplementation ControlImplementation `json:"control-implementation" yaml:"control-implementation" xml:"control-implementation"`
}

// Metadata is the OSCAL document metadata block.
type Metadata struct {
	Title              string             `json:"title" yaml:"title" xml:"title"`
	LastModified       string             `json:"last-modified" yaml:"last-modified" xml:"last-modified"`
	Version            string             `json:"version" yaml:"version" xml:"version"`
	OSCALVersion       string             `json:"oscal-version" yaml:"oscal-version" xml:"oscal-version"`
	Roles              []Role             `json:"roles,omitempty" yaml:"roles,omitempty" xml:"role"`
	Parties            []Party            `json:"parties,omitempty" yaml:"parties,omitempty" xml:"party"`
	ResponsibleParties []ResponsibleParty `json:"responsible-parties,omitempty" yaml:"responsible-parties,omitempty" xml:"responsible-party"`
}

// Role is a role definition referenced by responsible parties and users.
type Role struct {
	ID    string `json:"id" yaml:"id" xml:"id,attr"`
	Title string `json:"title" yaml:"title" xml:"title"`
}

// Party is a person or organization.
type Party struct {
	UUID           string   `json:"uuid" yaml:"uuid" xml:"uuid,attr"`
	Type           string   `json:"type" yaml:"type" xml:"type,attr"`
	Name           string   `json:"name,omitempty" yaml:"name,omitempty" xml:"name,omitempty"`
	EmailAddresses []string `json:"email-addresses,omitempty" yaml:"email-addresses,omitempty" xml:"email-address"`
}

// ResponsibleParty links a role to one or more parties.
type ResponsibleParty struct {
	RoleID     string   `json:"role-id" yaml:"role-id" xml:"role-id,attr"`
	PartyUUIDs []string `json:"party-uuids" yaml:"party-uuids" xml:"party-uuid"`
}

// ImportProfile references the baseline profile the SSP implements.
type ImportProfile struct {
	Href string `json:"href" yaml:"href" xml:"href,attr"`
}

// Property is an OSCAL name/value property.
type Property struct {
	Name  string `json:"name" yaml:"name" xml:"name,attr"`
	Value string `json:"value" yaml:"value" xml:"value,attr"`
}

// SystemID is a system identifier.
type SystemID struct {
	IdentifierType string `json:"identifier-type,omitempty" yaml:"identifier-type,omitempty" xml:"identifier-type,attr,omitempty"`
	ID             string `json:"id" yaml:"id" xml:",chardata"`
}

// SystemCharacteristics describes the system under authorization.
type SystemCharacteristics struct {
	SystemIDs                []SystemID          `json:"system-ids" yaml:"system-ids" xml:"system-id"`
	SystemName               string              `json:"system-name" yaml:"system-name" xml:"system-name"`
	SystemNameShort          string              `json:"system-name-short,omitempty" yaml:"system-name-short,omitempty" xml:"system-name-short,omitempty"`
	Description              string              `json:"description" yaml:"description" xml:"description"`
	Props                    []Property          `json:"props,omitempty" yaml:"props,omitempty" xml:"prop"`
	SecuritySensitivityLevel string              `json:"security-sensitivity-level,omitempty" yaml:"security-sensitivity-level,omitempty" xml:"security-sensitivity-level,omitempty"`
	SystemInformation        SystemInformation   `json:"system-information" yaml:"system-information" xml:"system-information"`
	SecurityImpactLevel      SecurityImpactLevel `json:"security-impact-level" yaml:"security-impact-level" xml:"security-impact-level"`
	Status                   Status              `json:"status" yaml:"status" xml:"status"`
	AuthorizationBoundary    Narrative           `json:"authorization-boundary" yaml:"authorization-boundary" xml:"authorization-boundary"`
	NetworkArchitecture      *Narrative          `json:"network-architecture,omitempty" yaml:"network-architecture,omitempty" xml:"network-architecture,omitempty"`
	DataFlow                 *Narrative          `json:"data-flow,omitempty" yaml:"data-flow,omitempty" xml:"data-flow,omitempty"`
}

// Narrative wraps a description block.
type Narrative struct {
	Description string `json:"description" yaml:"description" xml:"description"`
}

// SystemInformation lists the information types processed by the system.
type SystemInformation struct {
	InformationTypes []InformationType `json:"information-types" yaml:"information-types" xml:"information-type"`
}

// InformationType is a categorized NIST SP 800-60 information type.
type InformationType struct {
	UUID                  string           `json:"uuid" yaml:"uuid" xml:"uuid,attr"`
	Title                 string           `json:"title" yaml:"title" xml:"title"`
	Description           string           `json:"description" yaml:"description" xml:"description"`
	Categorizations       []Categorization `json:"categorizations,omitempty" yaml:"categorizations,omitempty" xml:"categorization"`
	ConfidentialityImpact *Impact          `json:"confidentiality-impact,omitempty" yaml:"confidentiality-impact,omitempty" xml:"confidentiality-impact,omitempty"`
	IntegrityImpact       *Impact          `json:"integrity-impact,omitempty" yaml:"integrity-impact,omitempty" xml:"integrity-impact,omitempty"`
	AvailabilityImpact    *Impact          `json:"availability-impact,omitempty" yaml:"availability-impact,omitempty" xml:"availability-impact,omitempty"`
}

// Categorization references information type identifiers in a categorization system.
type Categorization struct {
	System             string   `json:"system" yaml:"system" xml:"system,attr"`
	InformationTypeIDs []string `json:"information-type-ids" yaml:"information-type-ids" xml:"information-type-id"`
}

// Impact is an impact level for one security objective.
type Impact struct {
	Base string `json:"base" yaml:"base" xml:"base"`
}

// SecurityImpactLevel holds the overall FIPS 199 security objectives.
type SecurityImpactLevel struct {
	Confidentiality string `json:"security-objective-confidentiality" yaml:"security-objective-confidentiality" xml:"security-objective-confidentiality"`
	Integrity       string `json:"security-objective-integrity" yaml:"security-objective-integrity" xml:"security-objective-integrity"`
	Availability    string `json:"security-objective-availability" yaml:"security-objective-availability" xml:"security-objective-availability"`
}

// Status is an operational or implementation state.
type Status struct {
	State string `json:"state" yaml:"state" xml:"state,attr"`
}

// SystemImplementation lists users and components of the system.
type SystemImplementation struct {
	Users      []User      `json:"users" yaml:"users" xml:"user"`
	Components []Component `json:"components" yaml:"components" xml:"component"`
}

// User is a type of system user, bound to roles.
type User struct {
	UUID    string   `json:"uuid" yaml:"uuid" xml:"uuid,attr"`
	Title   string   `json:"title" yaml:"title" xml:"title"`
	RoleIDs []string `json:"role-ids,omitempty" yaml:"role-ids,omitempty" xml:"role-id"`
}

// Component is a system component.
type Component struct {
	UUID        string     `json:"uuid" yaml:"uuid" xml:"uuid,attr"`
	Type        string     `json:"type" yaml:"type" xml:"type,attr"`
	Title       string     `json:"title" yaml:"title" xml:"title"`
	Description string     `json:"description" yaml:"description" xml:"description"`
	Props       []Property `json:"props,omitempty" yaml:"props,omitempty" xml:"prop"`
	Status      Status     `json:"status" yaml:"status" xml:"status"`
	Protocols   []Protocol `json:"protocols,omitempty" yaml:"protocols,omitempty" xml:"protocol"`
}

// Prop returns the value of the named property, or "".
func (c Component) Prop(name string) string {
	for _, p := range c.Props {
		if p.Name == name {
			return p.Value
		}
	}
	return ""
}

// Protocol is a network protocol offered by a service component.
type Protocol struct {
	UUID       string      `json:"uuid" yaml:"uuid" xml:"uuid,attr"`
	Name       string      `json:"name" yaml:"name" xml:"name,attr"`
	Title      string      `json:"title,omitempty" yaml:"title,omitempty" xml:"title,omitempty"`
	PortRanges []PortRange `json:"port-ranges" yaml:"port-ranges" xml:"port-range"`
}

// PortRange is an inclusive port range on a transport.
type PortRange struct {
	Start     int    `json:"start" yaml:"start" xml:"start,attr"`
	End       int    `json:"end" yaml:"end" xml:"end,attr"`
	Transport string `json:"transport" yaml:"transport" xml:"transport,attr"`
}

// ControlImplementation holds per-control implementation records.
type ControlImplementation struct {
	Description             string                   `json:"description" yaml:"description" xml:"description"`
	ImplementedRequirements []ImplementedRequirement `json:"implemented-requirements" yaml:"implemented-requirements" xml:"implemented-requirement"`
}

// ImplementedRequirement describes how one control is implemented.
type ImplementedRequirement struct {
	UUID         string        `json:"uuid" yaml:"uuid" xml:"uuid,attr"`
	ControlID    string        `json:"control-id" yaml:"control-id" xml:"control-id,attr"`
	Props        []Property    `json:"props,omitempty" yaml:"props,omitempty" xml:"prop"`
	ByComponents []ByComponent `json:"by-components,omitempty" yaml:"by-components,omitempty" xml:"by-component"`
}

// ByComponent is a component's contribution to an implemented requirement.
type ByComponent struct {
	ComponentUUID        string  `json:"component-uuid" yaml:"component-uuid" xml:"component-uuid,attr"`
	UUID                 string  `json:"uuid" yaml:"uuid" xml:"uuid,attr"`
	Description          string  `json:"description" yaml:"description" xml:"description"`
	ImplementationStatus *Status `json:"implementation-status,omitempty" yaml:"implementation-status,omitempty" xml:"implementation-status,omitempty"`
}

// DocumentInfo summarises an imported document's metadata.
type DocumentInfo struct {
	Title        string `json:"title"`
	Version      string `json:"version"`
	LastModified string `json:"lastModified"`
	OSCALVersion string `json:"oscalVersion"`
}

// ImportResult is the outcome of importing an OSCAL document.
type ImportResult struct {
	Data         *ComplianceRecord `json:"data"`
	SourceFormat string            `json:"sourceFormat"`
	DocumentInfo DocumentInfo      `json:"documentInfo"`
}
