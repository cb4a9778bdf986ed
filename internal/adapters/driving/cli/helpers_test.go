package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/codec"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/remote"
	"github.com/custodia-labs/ssp-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/services"
)

// execute runs the root command with args and returns its combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// useServices installs s for the duration of the test.
func useServices(t *testing.T, s Services) {
	t.Helper()
	SetServices(s)
	t.Cleanup(func() { SetServices(Services{}) })
}

// offlineServices wires the real services without a remote store.
func offlineServices() Services {
	c := codec.New()
	return Services{
		Validator: services.NewValidator(),
		Exporter:  services.NewExporter(c),
		Importer:  services.NewImporter(c),
		Sync:      services.NewSyncOrchestrator(nil, memory.NewSnapshotStore()),
		Drafts:    services.NewDraftService(memory.NewDraftStore()),
		Narrative: services.NewNarrativeService(nil),
		Settings:  services.NewSettingsService(memory.NewConfigStore()),
	}
}

// fakeStore is an in-process SSP store that records every request.
type fakeStore struct {
	mu       sync.Mutex
	requests []string
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/ssps":
		_, _ = w.Write([]byte(`[{"id":"ssp-1","title":"Payroll","updated_at":"2026-03-01T12:00:00Z"}]`))
	case r.Method == http.MethodPost && r.URL.Path == "/ssps":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "ssp-2", "title": body["title"]})
	case r.Method == http.MethodGet && r.URL.Path == "/ssps/ssp-1":
		_, _ = w.Write([]byte(`{"id":"ssp-1","title":"Payroll","sections":{
			"sysinfo":{"sysName":"Payroll","sysAcronym":"PAY"},
			"bndNarrative":"The boundary covers the web tier."}}`))
	case r.Method == http.MethodGet:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"not found"}`))
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeStore) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if strings.HasPrefix(r, prefix) {
			n++
		}
	}
	return n
}

// onlineServices wires the real services against a fake remote store.
func onlineServices(t *testing.T) (Services, *fakeStore) {
	t.Helper()
	store := &fakeStore{}
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)

	client, err := remote.NewClientWithHTTPClient(srv.URL, srv.Client())
	require.NoError(t, err)

	s := offlineServices()
	s.Sync = services.NewSyncOrchestrator(client, memory.NewSnapshotStore())
	return s, store
}

func sampleRecord() *domain.ComplianceRecord {
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

// writeTempRecord writes r into a temp dir and returns its path.
func writeTempRecord(t *testing.T, r *domain.ComplianceRecord) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "record.json")
	require.NoError(t, writeRecord(path, r))
	return path
}

func readTempRecord(t *testing.T, path string) *domain.ComplianceRecord {
	t.Helper()
	r, err := readRecord(path)
	require.NoError(t, err)
	return r
}

func readTempFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
