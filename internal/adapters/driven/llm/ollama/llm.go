// Package ollama provides a narrative drafter backed by a local Ollama server.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
)

// Ensure Drafter implements the interface.
var _ driven.NarrativeDrafter = (*Drafter)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 4 << 10

// Config holds configuration for the Ollama drafter.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Drafter generates narrative drafts through Ollama's /api/generate.
type Drafter struct {
	client  *http.Client
	baseURL string
	model   string
}

// generateRequest is the Ollama /api/generate request format.
type generateRequest struct {
	Model   string   `json:"model"`
	System  string   `json:"system,omitempty"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// generateResponse is the Ollama /api/generate response format.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewDrafter creates a new Ollama drafter.
func NewDrafter(cfg Config) *Drafter {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Drafter{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}
}

const systemPrompt = "You write sections of a federal System Security Plan. " +
	"Respond with plain prose paragraphs only. Do not use markdown or HTML."

// Draft implements driven.NarrativeDrafter.
func (d *Drafter) Draft(ctx context.Context, req driven.NarrativeRequest) (string, error) {
	reqBody := generateRequest{
		Model:  d.model,
		System: systemPrompt,
		Prompt: buildPrompt(req),
		Stream: false,
		Options: &options{
			NumPredict:  req.MaxTokens,
			Temperature: 0.3,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return genResp.Response, nil
}

// buildPrompt lists the facts in key order followed by the instruction.
func buildPrompt(req driven.NarrativeRequest) string {
	var b strings.Builder
	if len(req.Facts) > 0 {
		keys := make([]string, 0, len(req.Facts))
		for k := range req.Facts {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString("System facts:\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, req.Facts[k])
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Write the %q narrative for the %q section.", req.Field, req.Section)
	return b.String()
}

// ModelName returns the name of the model being used.
func (d *Drafter) ModelName() string {
	return d.model
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (d *Drafter) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

// Close releases resources.
func (d *Drafter) Close() error {
	return nil
}
