package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// uriScheme is the custom URI scheme for ssp resources.
const uriScheme = "ssp://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Drafts == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "drafts",
		Name:        "drafts",
		Description: "Locally saved compliance record drafts",
		MIMEType:    "application/json",
	}, s.handleDraftsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "drafts/{name}",
		Name:        "draft-record",
		Description: "The compliance record of a saved draft",
		MIMEType:    "application/json",
	}, s.handleDraftResource)
}

// handleDraftsResource lists the saved drafts without their records.
func (s *Server) handleDraftsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	drafts, err := s.ports.Drafts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}

	type draftInfo struct {
		Name      string `json:"name"`
		SSPID     string `json:"ssp_id,omitempty"`
		UpdatedAt string `json:"updated_at"`
	}

	infos := make([]draftInfo, len(drafts))
	for i, d := range drafts {
		infos[i] = draftInfo{
			Name:      d.Name,
			SSPID:     d.SSPID,
			UpdatedAt: d.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
	}

	return jsonResource(req.Params.URI, infos)
}

// handleDraftResource returns one draft's record.
func (s *Server) handleDraftResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractDraftName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	draft, err := s.ports.Drafts.Get(ctx, name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("getting draft: %w", err)
	}

	return jsonResource(req.Params.URI, draft.Record)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDraftName extracts the draft name from a URI like ssp://drafts/{name}.
func extractDraftName(uri string) string {
	const prefix = uriScheme + "drafts/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
