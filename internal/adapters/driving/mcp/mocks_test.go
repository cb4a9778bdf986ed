package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/codec"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/services"
)

// mockDraftService fails every call with err.
type mockDraftService struct {
	err error
}

func (m *mockDraftService) Save(context.Context, string, string, *domain.ComplianceRecord) (*domain.Draft, error) {
	return nil, m.err
}

func (m *mockDraftService) Get(context.Context, string) (*domain.Draft, error) {
	return nil, m.err
}

func (m *mockDraftService) List(context.Context) ([]domain.Draft, error) {
	return nil, m.err
}

func (m *mockDraftService) Delete(context.Context, string) error {
	return m.err
}

// newTestPorts wires the real services over in-memory storage.
func newTestPorts() *Ports {
	c := codec.New()
	return &Ports{
		Validator: services.NewValidator(),
		Exporter:  services.NewExporter(c),
		Importer:  services.NewImporter(c),
		Sync:      services.NewSyncOrchestrator(nil, nil),
		Drafts:    services.NewDraftService(memory.NewDraftStore()),
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(newTestPorts())
	require.NoError(t, err)
	return s
}

func readyRecord() *domain.ComplianceRecord {
	r := domain.NewComplianceRecord()
	r.Set(domain.FieldSysName, "Payroll")
	r.Set(domain.FieldSysDescription, "Pays people")
	r.Set(domain.FieldConfidentiality, "Moderate")
	r.Set(domain.FieldIntegrity, "Moderate")
	r.Set(domain.FieldAvailability, "Low")
	r.Set(domain.FieldCtrlBaseline, "Moderate")
	r.Set(domain.FieldAuthType, "FedRAMP Agency")
	r.Set(domain.FieldOwningAgency, "Department of Examples")
	return r
}

func recordJSON(t *testing.T, r *domain.ComplianceRecord) string {
	t.Helper()
	data, err := json.Marshal(r)
	require.NoError(t, err)
	return string(data)
}
