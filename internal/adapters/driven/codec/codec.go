package codec

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
)

// Ensure Codec implements the interface.
var _ driven.OSCALCodec = (*Codec)(nil)

// Codec implements driven.OSCALCodec for JSON, XML and YAML.
type Codec struct {
	indent string
}

// New creates a codec that indents output with two spaces.
func New() *Codec {
	return &Codec{indent: "  "}
}

// Encode renders doc in format.
func (c *Codec) Encode(doc *domain.OSCALDocument, format domain.Format) ([]byte, error) {
	if doc == nil || doc.SystemSecurityPlan == nil {
		return nil, fmt.Errorf("encode: %w: empty document", domain.ErrInvalidInput)
	}

	switch format {
	case domain.FormatJSON:
		out, err := json.MarshalIndent(doc, "", c.indent)
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil

	case domain.FormatXML:
		var buf bytes.Buffer
		buf.WriteString(xml.Header)
		enc := xml.NewEncoder(&buf)
		enc.Indent("", c.indent)
		if err := enc.Encode(doc.SystemSecurityPlan); err != nil {
			return nil, err
		}
		buf.WriteByte('\n')
		return buf.Bytes(), nil

	case domain.FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(len(c.indent))
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil

	default:
		return nil, fmt.Errorf("encode: %w: unsupported format %q", domain.ErrInvalidInput, format)
	}
}

// DecodeTree parses data into a tree of map[string]any, []any, string,
// float64 and bool values. A document whose top level is not an object
// yields an empty tree.
func (c *Codec) DecodeTree(data []byte, format domain.Format) (map[string]any, error) {
	switch format {
	case domain.FormatJSON:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return asTree(v), nil

	case domain.FormatXML:
		return decodeXML(data)

	case domain.FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return asTree(normalizeYAML(v)), nil

	default:
		return nil, fmt.Errorf("decode: %w: unsupported format %q", domain.ErrInvalidInput, format)
	}
}

func asTree(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

// normalizeYAML converts yaml.v3 values to their JSON equivalents so the
// tree re-encodes as JSON.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalizeYAML(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalizeYAML(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = normalizeYAML(val)
		}
		return t
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case time.Time:
		return t.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
