package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

func TestExtractDraftName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid draft URI", uri: "ssp://drafts/working", expected: "working"},
		{name: "invalid prefix", uri: "file://drafts/working", expected: ""},
		{name: "nested path", uri: "ssp://drafts/a/b", expected: ""},
		{name: "listing URI", uri: "ssp://drafts", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDraftName(tt.uri))
		})
	}
}

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestServer_handleDraftsResource(t *testing.T) {
	ctx := context.Background()
	ports := newTestPorts()
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, err = ports.Drafts.Save(ctx, "working", "ssp-1", readyRecord())
	require.NoError(t, err)

	res, err := server.handleDraftsResource(ctx, readRequest("ssp://drafts"))
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)

	var infos []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "working", infos[0]["name"])
	assert.Equal(t, "ssp-1", infos[0]["ssp_id"])
}

func TestServer_handleDraftResource(t *testing.T) {
	ctx := context.Background()
	ports := newTestPorts()
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, err = ports.Drafts.Save(ctx, "working", "", readyRecord())
	require.NoError(t, err)

	t.Run("returns the record", func(t *testing.T) {
		res, err := server.handleDraftResource(ctx, readRequest("ssp://drafts/working"))
		require.NoError(t, err)

		r := domain.NewComplianceRecord()
		require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), r))
		assert.Equal(t, "Payroll", r.Get(domain.FieldSysName))
	})

	t.Run("missing draft is not found", func(t *testing.T) {
		_, err := server.handleDraftResource(ctx, readRequest("ssp://drafts/other"))
		require.Error(t, err)
	})

	t.Run("malformed URI is not found", func(t *testing.T) {
		_, err := server.handleDraftResource(ctx, readRequest("ssp://drafts/"))
		require.Error(t, err)
	})

	t.Run("store errors are wrapped", func(t *testing.T) {
		failing, err := NewServer(&Ports{
			Validator: ports.Validator,
			Exporter:  ports.Exporter,
			Drafts:    &mockDraftService{err: errors.New("disk gone")},
		})
		require.NoError(t, err)

		_, err = failing.handleDraftResource(ctx, readRequest("ssp://drafts/working"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk gone")

		_, err = failing.handleDraftsResource(ctx, readRequest("ssp://drafts"))
		assert.Contains(t, err.Error(), "listing drafts")
	})
}
