package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

// ValidateInput is the input schema for the validate_record tool.
type ValidateInput struct {
	Record string `json:"record" jsonschema:"the compliance record as a JSON object string"`
}

// ValidateOutput is the output schema for the validate_record tool.
type ValidateOutput struct {
	IsValid       bool                     `json:"is_valid"`
	ErrorCount    int                      `json:"error_count"`
	Errors        []domain.ValidationError `json:"errors"`
	SectionErrors map[string]int           `json:"section_errors"`
	ExportReady   bool                     `json:"export_ready"`
}

// ExportInput is the input schema for the export_oscal tool.
type ExportInput struct {
	Record string `json:"record" jsonschema:"the compliance record as a JSON object string"`
	Format string `json:"format,omitempty" jsonschema:"json, xml or yaml (default json)"`
	Force  bool   `json:"force,omitempty" jsonschema:"export even when required fields are missing"`
}

// ExportOutput is the output schema for the export_oscal tool.
type ExportOutput struct {
	Format   string `json:"format"`
	Document string `json:"document"`
}

// ImportInput is the input schema for the import_oscal tool.
type ImportInput struct {
	Content string `json:"content" jsonschema:"the OSCAL system security plan document text"`
	Name    string `json:"name,omitempty" jsonschema:"file name, used to detect the format"`
}

// ImportOutput is the output schema for the import_oscal tool.
type ImportOutput struct {
	SourceFormat string              `json:"source_format"`
	Info         domain.DocumentInfo `json:"document_info"`
	Record       string              `json:"record"`
}

// StatusInput is the (empty) input schema for the sync_status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the sync_status tool.
type StatusOutput struct {
	Status         string `json:"status"`
	SSPID          string `json:"ssp_id,omitempty"`
	Title          string `json:"title,omitempty"`
	LastSyncedAt   string `json:"last_synced_at,omitempty"`
	PendingChanges bool   `json:"pending_changes"`
	Error          string `json:"error,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "validate_record",
		Description: "Validate a compliance record and list field errors by section",
	}, s.handleValidate)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_oscal",
		Description: "Export a compliance record as an OSCAL system security plan",
	}, s.handleExport)

	if s.ports.Importer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "import_oscal",
			Description: "Import an OSCAL system security plan into a compliance record",
		}, s.handleImport)
	}

	if s.ports.Sync != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "sync_status",
			Description: "Report the sync state of the open SSP document",
		}, s.handleStatus)
	}
}

func (s *Server) handleValidate(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ValidateInput,
) (*mcp.CallToolResult, ValidateOutput, error) {
	record, err := parseRecord(input.Record)
	if err != nil {
		return nil, ValidateOutput{}, err
	}

	res := s.ports.Validator.Validate(record)
	errs := res.Errors
	if errs == nil {
		errs = []domain.ValidationError{}
	}
	return nil, ValidateOutput{
		IsValid:       res.IsValid,
		ErrorCount:    res.ErrorCount,
		Errors:        errs,
		SectionErrors: res.SectionErrors,
		ExportReady:   domain.IsExportReady(record),
	}, nil
}

func (s *Server) handleExport(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ExportInput,
) (*mcp.CallToolResult, ExportOutput, error) {
	format, ok := domain.ParseFormat(input.Format)
	if !ok {
		return nil, ExportOutput{}, fmt.Errorf("unsupported format %q", input.Format)
	}

	record, err := parseRecord(input.Record)
	if err != nil {
		return nil, ExportOutput{}, err
	}

	data, err := s.ports.Exporter.Render(record, format, input.Force)
	if err != nil {
		return nil, ExportOutput{}, err
	}
	return nil, ExportOutput{Format: string(format), Document: string(data)}, nil
}

func (s *Server) handleImport(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ImportInput,
) (*mcp.CallToolResult, ImportOutput, error) {
	res, err := s.ports.Importer.Import(domain.ImportFile{
		Name: input.Name,
		Data: []byte(input.Content),
	})
	if err != nil {
		return nil, ImportOutput{}, err
	}

	data, err := json.Marshal(res.Data)
	if err != nil {
		return nil, ImportOutput{}, fmt.Errorf("encoding record: %w", err)
	}
	return nil, ImportOutput{
		SourceFormat: res.SourceFormat,
		Info:         res.DocumentInfo,
		Record:       string(data),
	}, nil
}

func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	st := s.ports.Sync.State()
	out := StatusOutput{
		Status:         string(st.Status),
		SSPID:          st.SSPID,
		Title:          st.Title,
		PendingChanges: st.PendingChanges,
		Error:          st.Error,
	}
	if st.LastSyncedAt != nil {
		out.LastSyncedAt = st.LastSyncedAt.UTC().Format(time.RFC3339)
	}
	return nil, out, nil
}

// parseRecord decodes a record from its JSON text. Blank text is an empty record.
func parseRecord(text string) (*domain.ComplianceRecord, error) {
	record := domain.NewComplianceRecord()
	if text == "" {
		return record, nil
	}
	if err := json.Unmarshal([]byte(text), record); err != nil {
		return nil, fmt.Errorf("parsing record: %w", err)
	}
	return record, nil
}
