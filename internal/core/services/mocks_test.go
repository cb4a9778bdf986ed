package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
)

// Ensure mockRemote implements the interface.
var _ driven.RemoteStore = (*mockRemote)(nil)

// statusErr is a minimal domain.StatusError.
type statusErr struct {
	code int
	msg  string
	url  string
}

func (e *statusErr) Error() string {
	if e.url != "" {
		return fmt.Sprintf("HTTP %d: %s (URL: %s)", e.code, e.msg, e.url)
	}
	return fmt.Sprintf("HTTP %d: %s", e.code, e.msg)
}

func (e *statusErr) Status() int           { return e.code }
func (e *statusErr) ServerMessage() string { return e.msg }

// remoteCall records one call made against mockRemote.
type remoteCall struct {
	Op       string
	Resource string
	Row      map[string]string
}

// mockRemote is a scriptable in-memory remote store.
type mockRemote struct {
	mu    sync.Mutex
	calls []remoteCall

	docs     []domain.DocumentSummary
	envelope *domain.DocumentEnvelope
	singles  map[string]map[string]any
	rows     map[string][]map[string]string
	sections map[string]any

	// Hooks return an error to inject a failure. Nil means success.
	getDocErr    error
	listDocsErr  error
	putSectionFn func(key string) error
	getResErr    map[string]error
	listRowsErr  map[string]error
	deleteFn     func(resource string) error
	createFn     func(resource string, row map[string]string) error

	// block, when set, is received from at the start of GetDocument.
	entered chan struct{}
	block   chan struct{}
}

func newMockRemote() *mockRemote {
	return &mockRemote{
		singles:     make(map[string]map[string]any),
		rows:        make(map[string][]map[string]string),
		sections:    make(map[string]any),
		getResErr:   make(map[string]error),
		listRowsErr: make(map[string]error),
	}
}

func (m *mockRemote) record(c remoteCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

// callsFor returns the calls with op, optionally filtered by resource.
func (m *mockRemote) callsFor(op, resource string) []remoteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []remoteCall
	for _, c := range m.calls {
		if c.Op == op && (resource == "" || c.Resource == resource) {
			out = append(out, c)
		}
	}
	return out
}

func (m *mockRemote) ListDocuments(_ context.Context) ([]domain.DocumentSummary, error) {
	m.record(remoteCall{Op: "list"})
	if m.listDocsErr != nil {
		return nil, m.listDocsErr
	}
	return m.docs, nil
}

func (m *mockRemote) CreateDocument(_ context.Context, title string) (*domain.DocumentSummary, error) {
	m.record(remoteCall{Op: "create-doc", Resource: title})
	return &domain.DocumentSummary{ID: "new-1", Title: title}, nil
}

func (m *mockRemote) GetDocument(_ context.Context, sspID string) (*domain.DocumentEnvelope, error) {
	m.record(remoteCall{Op: "get-doc", Resource: sspID})
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	if m.getDocErr != nil {
		return nil, m.getDocErr
	}
	if m.envelope != nil {
		return m.envelope, nil
	}
	return &domain.DocumentEnvelope{ID: sspID, Sections: map[string]any{}}, nil
}

func (m *mockRemote) PutSection(_ context.Context, _, key string, content any) error {
	m.record(remoteCall{Op: "put-section", Resource: key})
	if m.putSectionFn != nil {
		if err := m.putSectionFn(key); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.sections[key] = content
	m.mu.Unlock()
	return nil
}

func (m *mockRemote) GetResource(_ context.Context, _, resource string) (map[string]any, error) {
	m.record(remoteCall{Op: "get-resource", Resource: resource})
	if err := m.getResErr[resource]; err != nil {
		return nil, err
	}
	return m.singles[resource], nil
}

func (m *mockRemote) PutResource(_ context.Context, _, resource string, body map[string]any) error {
	m.record(remoteCall{Op: "put-resource", Resource: resource})
	m.mu.Lock()
	m.singles[resource] = body
	m.mu.Unlock()
	return nil
}

func (m *mockRemote) ListRows(_ context.Context, _, resource string) ([]map[string]string, error) {
	m.record(remoteCall{Op: "list-rows", Resource: resource})
	if err := m.listRowsErr[resource]; err != nil {
		return nil, err
	}
	return m.rows[resource], nil
}

func (m *mockRemote) DeleteRows(_ context.Context, _, resource string) error {
	m.record(remoteCall{Op: "delete", Resource: resource})
	if m.deleteFn != nil {
		return m.deleteFn(resource)
	}
	return nil
}

func (m *mockRemote) CreateRow(_ context.Context, _, resource string, row map[string]string) error {
	m.record(remoteCall{Op: "create", Resource: resource, Row: row})
	if m.createFn != nil {
		return m.createFn(resource, row)
	}
	return nil
}

// mockSnapshots is an in-memory snapshot store.
type mockSnapshots struct {
	mu    sync.Mutex
	snaps map[string]domain.Snapshot
	err   error
}

func newMockSnapshots() *mockSnapshots {
	return &mockSnapshots{snaps: make(map[string]domain.Snapshot)}
}

func (m *mockSnapshots) SaveSnapshot(_ context.Context, sspID string, snap domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.snaps[sspID] = snap
	return nil
}

func (m *mockSnapshots) GetSnapshot(_ context.Context, sspID string) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snaps[sspID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &snap, nil
}

func (m *mockSnapshots) DeleteSnapshot(_ context.Context, sspID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snaps, sspID)
	return nil
}

var errBoom = errors.New("boom")

// jsonCodec is a JSON-only driven.OSCALCodec.
type jsonCodec struct{}

func (jsonCodec) Encode(doc *domain.OSCALDocument, format domain.Format) ([]byte, error) {
	if format != domain.FormatJSON {
		return nil, fmt.Errorf("encode %s: %w", format, domain.ErrInvalidInput)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func (jsonCodec) DecodeTree(data []byte, format domain.Format) (map[string]any, error) {
	if format != domain.FormatJSON {
		return nil, fmt.Errorf("decode %s: %w", format, domain.ErrInvalidInput)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}
