package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driving"
	"github.com/custodia-labs/ssp-cli/internal/logger"
)

// Ensure Importer implements the interface.
var _ driving.OSCALImporter = (*Importer)(nil)

// placeholders are exported stand-ins that never become record values.
var placeholders = map[string]bool{
	placeholderSystemName:   true,
	placeholderDescription:  true,
	placeholderBoundary:     true,
	placeholderOrganization: true,
	defaultControlNarrative: true,
	defaultCryptoUsage:      true,
}

// Importer parses OSCAL SSP documents back into compliance records.
type Importer struct {
	codec   driven.OSCALCodec
	maxSize int64
}

// NewImporter creates a new importer using codec to parse documents.
func NewImporter(codec driven.OSCALCodec) *Importer {
	return &Importer{codec: codec, maxSize: domain.MaxImportSize}
}

// Import checks the file's size, detects its format, parses it into the
// generic tree and maps the tree onto a record. Every failure is a
// *domain.ImportError.
func (i *Importer) Import(file domain.ImportFile) (*domain.ImportResult, error) {
	size := file.ReportedSize()
	if size > i.maxSize {
		return nil, &domain.ImportError{
			Kind:    domain.ImportTooLarge,
			Message: fmt.Sprintf("File too large: %s exceeds the maximum of %s", megabytes(size), megabytes(i.maxSize)),
		}
	}
	if size == 0 || len(bytes.TrimSpace(file.Data)) == 0 {
		return nil, &domain.ImportError{Kind: domain.ImportEmpty, Message: "File is empty"}
	}

	format, ok := detectFormat(file)
	if !ok {
		return nil, &domain.ImportError{
			Kind:    domain.ImportUnsupportedFormat,
			Message: "Unsupported file format: expected .json, .xml, .oscal or .yaml",
		}
	}
	logger.Debug("importing %q as %s (%d bytes)", file.Name, format, size)

	tree, err := i.codec.DecodeTree(file.Data, format)
	if err != nil {
		return nil, parseError(format, err)
	}

	root, ok := tree[domain.SSPRootKey].(map[string]any)
	if !ok {
		return nil, &domain.ImportError{
			Kind:    domain.ImportNoSystemSecurityPlan,
			Message: "No system-security-plan found in document",
		}
	}

	return &domain.ImportResult{
		Data:         mapPlan(root),
		SourceFormat: string(format),
		DocumentInfo: documentInfo(root),
	}, nil
}

// detectFormat uses the file extension, then the content type, then the
// first significant byte.
func detectFormat(file domain.ImportFile) (domain.Format, bool) {
	if f, ok := domain.FormatFromName(file.Name); ok {
		return f, true
	}
	if f, ok := domain.FormatFromContentType(file.ContentType); ok {
		return f, true
	}
	trimmed := bytes.TrimLeft(file.Data, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return "", false
	}
	switch trimmed[0] {
	case '{':
		return domain.FormatJSON, true
	case '<':
		return domain.FormatXML, true
	}
	return "", false
}

func parseError(format domain.Format, err error) *domain.ImportError {
	switch format {
	case domain.FormatXML:
		return &domain.ImportError{Kind: domain.ImportInvalidXML, Message: "Invalid XML", Err: err}
	case domain.FormatYAML:
		return &domain.ImportError{Kind: domain.ImportInvalidYAML, Message: "Invalid YAML", Err: err}
	default:
		return &domain.ImportError{Kind: domain.ImportInvalidJSON, Message: "Invalid JSON", Err: err}
	}
}

// megabytes renders n bytes as "51.0 MB".
func megabytes(n int64) string {
	return strconv.FormatFloat(float64(n)/(1024*1024), 'f', 1, 64) + " MB"
}

// documentInfo reads metadata straight from the tree so it survives
// malformed sections elsewhere in the document.
func documentInfo(root map[string]any) domain.DocumentInfo {
	md, _ := root["metadata"].(map[string]any)
	str := func(key string) string {
		s, _ := scalarString(md[key])
		return s
	}
	return domain.DocumentInfo{
		Title:        str("title"),
		Version:      str("version"),
		LastModified: str("last-modified"),
		OSCALVersion: str("oscal-version"),
	}
}

// decodeSection decodes one subtree into out. A malformed subtree is
// logged and skipped.
func decodeSection(root map[string]any, key string, out any) bool {
	raw, ok := root[key]
	if !ok {
		return false
	}
	data, err := json.Marshal(raw)
	if err != nil {
		logger.Warn("import: re-encode %s: %v", key, err)
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		logger.Warn("import: skipping malformed %s: %v", key, err)
		return false
	}
	return true
}

// mapPlan is the inverse of the exporter's mapping. Values absent from the
// document stay unset.
func mapPlan(root map[string]any) *domain.ComplianceRecord {
	record := domain.NewComplianceRecord()
	set := func(field, value string) {
		value = strings.TrimSpace(value)
		if value == "" || placeholders[value] {
			return
		}
		record.Set(field, value)
	}

	var md domain.Metadata
	if decodeSection(root, "metadata", &md) {
		mapMetadata(md, set)
	}

	var profile domain.ImportProfile
	if decodeSection(root, "import-profile", &profile) {
		set(domain.FieldCtrlBaseline, baselineFromProfile(profile.Href))
	}

	var sc domain.SystemCharacteristics
	if decodeSection(root, "system-characteristics", &sc) {
		mapCharacteristics(record, sc, set)
	}

	var si domain.SystemImplementation
	if decodeSection(root, "system-implementation", &si) {
		mapImplementation(record, si)
	}

	var ci domain.ControlImplementation
	if decodeSection(root, "control-implementation", &ci) {
		mapControls(record, ci)
	}

	return record
}

func mapMetadata(md domain.Metadata, set func(field, value string)) {
	if md.Version != defaultDocVersion {
		set(domain.FieldDocVersion, md.Version)
	}

	parties := make(map[string]domain.Party, len(md.Parties))
	for _, p := range md.Parties {
		parties[p.UUID] = p
		if p.Type == "organization" {
			set(domain.FieldOwningAgency, p.Name)
		}
	}

	for _, rp := range md.ResponsibleParties {
		role, ok := roleByID(rp.RoleID)
		if !ok || len(rp.PartyUUIDs) == 0 {
			continue
		}
		p, ok := parties[rp.PartyUUIDs[0]]
		if !ok {
			continue
		}
		set(role.NameField, p.Name)
		if len(p.EmailAddresses) > 0 {
			set(role.EmailField, p.EmailAddresses[0])
		}
	}
}

func roleByID(id string) (personnelRole, bool) {
	for _, r := range personnelRoles {
		if r.RoleID == id {
			return r, true
		}
	}
	return personnelRole{}, false
}

func mapCharacteristics(record *domain.ComplianceRecord, sc domain.SystemCharacteristics, set func(field, value string)) {
	set(domain.FieldSysName, sc.SystemName)
	set(domain.FieldSysAcronym, sc.SystemNameShort)
	set(domain.FieldSysDescription, sc.Description)
	set(domain.FieldConfidentiality, sc.SecurityImpactLevel.Confidentiality)
	set(domain.FieldIntegrity, sc.SecurityImpactLevel.Integrity)
	set(domain.FieldAvailability, sc.SecurityImpactLevel.Availability)
	set(domain.FieldSysStatus, sc.Status.State)
	set(domain.FieldBndNarrative, sc.AuthorizationBoundary.Description)
	if sc.NetworkArchitecture != nil {
		set(domain.FieldNetNarrative, sc.NetworkArchitecture.Description)
	}
	if sc.DataFlow != nil {
		set(domain.FieldDFNarrative, sc.DataFlow.Description)
	}
	for _, p := range sc.Props {
		if p.Name == propAuthorizationType {
			set(domain.FieldAuthType, p.Value)
		}
	}

	var rows []domain.Row
	for _, it := range sc.SystemInformation.InformationTypes {
		row := domain.Row{"name": it.Title}
		if it.Description != "" && it.Description != it.Title {
			row["description"] = it.Description
		}
		for _, c := range it.Categorizations {
			if len(c.InformationTypeIDs) > 0 {
				row["nistId"] = c.InformationTypeIDs[0]
				break
			}
		}
		for field, impact := range map[string]*domain.Impact{
			"conf":  it.ConfidentialityImpact,
			"integ": it.IntegrityImpact,
			"avail": it.AvailabilityImpact,
		} {
			if impact != nil && impact.Base != "" {
				row[field] = impact.Base
			}
		}
		rows = append(rows, row)
	}
	if len(rows) > 0 {
		record.SetRows(domain.CollectionInfoTypes, rows)
	}
}

func mapImplementation(record *domain.ComplianceRecord, si domain.SystemImplementation) {
	var boundary, crypto, pps []domain.Row

	for _, c := range si.Components {
		switch {
		case c.Type == componentThisSystem:
			continue
		case c.Type == componentValidation:
			row := domain.Row{"mod": c.Title}
			if c.Description != "" && !placeholders[c.Description] {
				row["use"] = c.Description
			}
			for field, prop := range map[string]string{
				"cert":   propValidationReference,
				"level":  propValidationLevel,
				"vendor": propVendor,
			} {
				if v := c.Prop(prop); v != "" {
					row[field] = v
				}
			}
			crypto = append(crypto, row)
		case c.Type == componentService && len(c.Protocols) > 0:
			pps = append(pps, protocolRows(c.Protocols)...)
		default:
			row := domain.Row{"name": c.Title, "type": c.Type}
			if c.Description != "" && c.Description != c.Title {
				row["description"] = c.Description
			}
			if zone := c.Prop(propSecurityZone); zone != "" {
				row["zone"] = zone
			}
			boundary = append(boundary, row)
		}
	}

	for kind, rows := range map[domain.CollectionKind][]domain.Row{
		domain.CollectionBoundaryComponents: boundary,
		domain.CollectionCryptoModules:      crypto,
		domain.CollectionPortsProtocols:     pps,
	} {
		if len(rows) > 0 {
			record.SetRows(kind, rows)
		}
	}
}

// protocolRows flattens protocols back to one row per port range.
func protocolRows(protocols []domain.Protocol) []domain.Row {
	var rows []domain.Row
	for _, p := range protocols {
		svc := firstNonBlank(p.Title, p.Name)
		if len(p.PortRanges) == 0 {
			rows = append(rows, domain.Row{"svc": svc})
			continue
		}
		for _, pr := range p.PortRanges {
			port := strconv.Itoa(pr.Start)
			if pr.End != 0 && pr.End != pr.Start {
				port += "-" + strconv.Itoa(pr.End)
			}
			row := domain.Row{"port": port, "svc": svc}
			if pr.Transport != "" {
				row["protocol"] = pr.Transport
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func mapControls(record *domain.ComplianceRecord, ci domain.ControlImplementation) {
	for _, req := range ci.ImplementedRequirements {
		if req.ControlID == "" {
			continue
		}
		var entry domain.ControlEntry
		var narratives []string
		for _, bc := range req.ByComponents {
			if entry.Status == "" && bc.ImplementationStatus != nil {
				entry.Status = bc.ImplementationStatus.State
			}
			if d := strings.TrimSpace(bc.Description); d != "" && !placeholders[d] {
				narratives = append(narratives, d)
			}
		}
		entry.Description = strings.Join(narratives, "\n\n")

		// Unfilled defaults carry nothing the user entered.
		if entry.Description == "" && (entry.Status == "" || entry.Status == "planned") {
			continue
		}
		record.SetControl(req.ControlID, entry)
	}
}
