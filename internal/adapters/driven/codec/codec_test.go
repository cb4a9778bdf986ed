package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/services"
)

func sampleRecord() *domain.ComplianceRecord {
	r := domain.NewComplianceRecord()
	r.Set(domain.FieldSysName, "Payroll")
	r.Set(domain.FieldSysAcronym, "PAY")
	r.Set(domain.FieldSysDescription, "Processes payroll & benefits <internal>")
	r.Set(domain.FieldConfidentiality, "Moderate")
	r.Set(domain.FieldIntegrity, "Moderate")
	r.Set(domain.FieldAvailability, "Low")
	r.Set(domain.FieldCtrlBaseline, "Low")
	r.Set(domain.FieldAuthType, "FedRAMP Agency")
	r.Set(domain.FieldOwningAgency, "Department of Examples")
	r.Set(domain.FieldDocVersion, "1.4")
	r.Set(domain.FieldISSOName, "Ira Officer")
	r.Set(domain.FieldISSOEmail, "isso@agency.gov")
	r.SetRows(domain.CollectionInfoTypes, []domain.Row{
		{"nistId": "C.3.5.1", "name": "Payroll", "conf": "Moderate"},
		{"nistId": "C.3.5.2", "name": "Benefits", "avail": "Low"},
	})
	r.SetRows(domain.CollectionPortsProtocols, []domain.Row{
		{"port": "443", "protocol": "TCP", "svc": "HTTPS"},
		{"port": "8000-8080", "protocol": "TCP", "svc": "HTTPS"},
	})
	r.SetRows(domain.CollectionCryptoModules, []domain.Row{
		{"mod": "OpenSSL FIPS", "cert": "4282", "use": "TLS"},
	})
	r.SetControl("ac-2", domain.ControlEntry{Status: "implemented", Description: "Managed in IdP"})
	return r
}

func roundTrip(t *testing.T, format domain.Format) *domain.ImportResult {
	t.Helper()
	c := New()
	data, err := services.NewExporter(c).Render(sampleRecord(), format, false)
	require.NoError(t, err)

	res, err := services.NewImporter(c).Import(domain.ImportFile{
		Name: "ssp" + format.Extension(),
		Data: data,
	})
	require.NoError(t, err)
	return res
}

func assertSampleRecord(t *testing.T, got *domain.ComplianceRecord) {
	t.Helper()
	want := sampleRecord()
	for _, f := range []string{
		domain.FieldSysName, domain.FieldSysAcronym, domain.FieldSysDescription,
		domain.FieldConfidentiality, domain.FieldIntegrity, domain.FieldAvailability,
		domain.FieldCtrlBaseline, domain.FieldAuthType, domain.FieldOwningAgency,
		domain.FieldDocVersion, domain.FieldISSOName, domain.FieldISSOEmail,
	} {
		assert.Equal(t, want.Get(f), got.Get(f), f)
	}
	assert.Equal(t, want.Rows(domain.CollectionInfoTypes), got.Rows(domain.CollectionInfoTypes))
	assert.Equal(t, want.Rows(domain.CollectionPortsProtocols), got.Rows(domain.CollectionPortsProtocols))
	assert.Equal(t, want.Rows(domain.CollectionCryptoModules), got.Rows(domain.CollectionCryptoModules))
	assert.Equal(t, want.Controls, got.Controls)
}

func TestRoundTrip_JSON(t *testing.T) {
	res := roundTrip(t, domain.FormatJSON)
	assert.Equal(t, "json", res.SourceFormat)
	assertSampleRecord(t, res.Data)
}

func TestRoundTrip_XML(t *testing.T) {
	res := roundTrip(t, domain.FormatXML)
	assert.Equal(t, "xml", res.SourceFormat)
	assert.Equal(t, "Payroll System Security Plan", res.DocumentInfo.Title)
	assert.Equal(t, domain.OSCALVersion, res.DocumentInfo.OSCALVersion)
	assertSampleRecord(t, res.Data)
}

func TestRoundTrip_YAML(t *testing.T) {
	res := roundTrip(t, domain.FormatYAML)
	assert.Equal(t, "yaml", res.SourceFormat)
	assert.Equal(t, "1.4", res.DocumentInfo.Version)
	assertSampleRecord(t, res.Data)
}

func TestEncode_XMLHeaderAndNamespace(t *testing.T) {
	doc := services.NewExporter(nil).Export(sampleRecord())
	data, err := New().Encode(doc, domain.FormatXML)
	require.NoError(t, err)

	s := string(data)
	assert.True(t, strings.HasPrefix(s, "<?xml"))
	assert.Contains(t, s, `xmlns="`+domain.OSCALNamespace+`"`)
	assert.Contains(t, s, `<port-range start="8000" end="8080" transport="TCP"></port-range>`)
	assert.Contains(t, s, "Processes payroll &amp; benefits &lt;internal&gt;")
}

func TestEncode_Errors(t *testing.T) {
	c := New()
	_, err := c.Encode(nil, domain.FormatJSON)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = c.Encode(&domain.OSCALDocument{SystemSecurityPlan: &domain.SystemSecurityPlan{}}, "pdf")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDecodeTree_JSON(t *testing.T) {
	c := New()

	tree, err := c.DecodeTree([]byte(`{"a": {"b": [1, "x"]}}`), domain.FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": map[string]any{"b": []any{float64(1), "x"}}}, tree)

	tree, err = c.DecodeTree([]byte(`[1, 2]`), domain.FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, tree)

	_, err = c.DecodeTree([]byte(`{"a":`), domain.FormatJSON)
	assert.Error(t, err)
}

func TestDecodeTree_YAML(t *testing.T) {
	tree, err := New().DecodeTree([]byte("a:\n  n: 3\n  when: 2026-03-01T12:00:00Z\n  list: [x, y]\n"), domain.FormatYAML)
	require.NoError(t, err)

	a := tree["a"].(map[string]any)
	assert.Equal(t, float64(3), a["n"])
	assert.Equal(t, "2026-03-01T12:00:00Z", a["when"])
	assert.Equal(t, []any{"x", "y"}, a["list"])

	_, err = New().DecodeTree([]byte("a: [unterminated"), domain.FormatYAML)
	assert.Error(t, err)
}

func TestDecodeTree_XMLShape(t *testing.T) {
	src := `<?xml version="1.0"?>
<system-security-plan xmlns="http://csrc.nist.gov/ns/oscal/1.0" uuid="u-1">
  <metadata>
    <title>Plan</title>
    <party uuid="p-1" type="person">
      <name>Ann</name>
      <email-address>ann@example.gov</email-address>
    </party>
  </metadata>
  <system-characteristics>
    <system-id identifier-type="https://ietf.org/rfc/rfc4122">sid-1</system-id>
    <system-information></system-information>
    <description>
      <p>First <em>important</em> paragraph.</p>
      <p>Second.</p>
    </description>
  </system-characteristics>
  <system-implementation>
    <component uuid="c-1" type="service">
      <protocol name="https">
        <port-range start="443" end="443" transport="TCP"/>
      </protocol>
    </component>
  </system-implementation>
</system-security-plan>`

	tree, err := New().DecodeTree([]byte(src), domain.FormatXML)
	require.NoError(t, err)

	ssp := tree[domain.SSPRootKey].(map[string]any)
	assert.Equal(t, "u-1", ssp["uuid"])
	assert.NotContains(t, ssp, "xmlns")

	md := ssp["metadata"].(map[string]any)
	assert.Equal(t, "Plan", md["title"])
	parties := md["parties"].([]any)
	require.Len(t, parties, 1)
	party := parties[0].(map[string]any)
	assert.Equal(t, "Ann", party["name"])
	assert.Equal(t, []any{"ann@example.gov"}, party["email-addresses"])

	sc := ssp["system-characteristics"].(map[string]any)
	assert.Equal(t, []any{map[string]any{
		"identifier-type": "https://ietf.org/rfc/rfc4122",
		"id":              "sid-1",
	}}, sc["system-ids"])
	assert.Nil(t, sc["system-information"])
	assert.Equal(t, "First important paragraph.\n\nSecond.", sc["description"])

	comp := ssp["system-implementation"].(map[string]any)["components"].([]any)[0].(map[string]any)
	pr := comp["protocols"].([]any)[0].(map[string]any)["port-ranges"].([]any)[0].(map[string]any)
	assert.Equal(t, float64(443), pr["start"])
	assert.Equal(t, "TCP", pr["transport"])
}

func TestDecodeTree_XMLErrors(t *testing.T) {
	c := New()
	for _, src := range []string{
		"",
		"<a><b></a>",
		"<a></a><b></b>",
		"<a>",
	} {
		_, err := c.DecodeTree([]byte(src), domain.FormatXML)
		assert.Error(t, err, src)
	}
}

func TestImport_XMLWithoutPlanRoot(t *testing.T) {
	_, err := services.NewImporter(New()).Import(domain.ImportFile{
		Name: "catalog.xml",
		Data: []byte(`<catalog uuid="x"><metadata><title>C</title></metadata></catalog>`),
	})
	assert.True(t, domain.IsImportError(err, domain.ImportNoSystemSecurityPlan))
}

func TestImport_InvalidXML(t *testing.T) {
	_, err := services.NewImporter(New()).Import(domain.ImportFile{
		Name: "bad.xml",
		Data: []byte(`<system-security-plan><metadata></system-security-plan>`),
	})
	assert.True(t, domain.IsImportError(err, domain.ImportInvalidXML))
	assert.Contains(t, err.Error(), "Invalid XML")
}
