// Package mcp provides an MCP (Model Context Protocol) server adapter for ssp.
// It lets AI assistants validate, export and import compliance records and
// read sync state and saved drafts.
package mcp

import "errors"

// ErrMissingValidator is returned when the record validator is not provided.
var ErrMissingValidator = errors.New("mcp: record validator is required")

// ErrMissingExporter is returned when the OSCAL exporter is not provided.
var ErrMissingExporter = errors.New("mcp: OSCAL exporter is required")
