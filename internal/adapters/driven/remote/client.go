package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
	"github.com/custodia-labs/ssp-cli/internal/core/ports/driven"
	"github.com/custodia-labs/ssp-cli/internal/logger"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody caps how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Verify interface compliance.
var _ driven.RemoteStore = (*Client)(nil)

// Config configures the remote client.
type Config struct {
	// BaseURL is the API root, e.g. https://ssp.example.gov/api.
	BaseURL string

	// Token is sent as a bearer token when non-empty.
	Token string

	// RateLimit is the proactive request rate per second. Zero disables it.
	RateLimit float64

	// Timeout bounds a single request. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// Client talks to the SSP backend.
type Client struct {
	baseURL     *url.URL
	http        *http.Client
	rateLimiter *RateLimiter
}

// NewClient creates a client for cfg.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("%w: remote URL", domain.ErrNotConfigured)
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: remote URL %q", domain.ErrInvalidInput, cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var hc *http.Client
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		hc = oauth2.NewClient(ctx, ts)
		hc.Timeout = timeout
	} else {
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:     base,
		http:        hc,
		rateLimiter: NewRateLimiter(cfg.RateLimit),
	}, nil
}

// NewClientWithHTTPClient creates a client with a custom http.Client.
func NewClientWithHTTPClient(baseURL string, hc *http.Client) (*Client, error) {
	c, err := NewClient(context.Background(), Config{BaseURL: baseURL})
	if err != nil {
		return nil, err
	}
	c.http = hc
	return c, nil
}

// RateLimiter returns the client's rate limiter.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

// ListDocuments implements driven.RemoteStore.
func (c *Client) ListDocuments(ctx context.Context) ([]domain.DocumentSummary, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, []string{"ssps"}, nil, &raw); err != nil {
		return nil, err
	}
	var docs []domain.DocumentSummary
	if err := decodeList(raw, &docs); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// CreateDocument implements driven.RemoteStore.
func (c *Client) CreateDocument(ctx context.Context, title string) (*domain.DocumentSummary, error) {
	var doc domain.DocumentSummary
	body := map[string]string{"title": title}
	if err := c.do(ctx, http.MethodPost, []string{"ssps"}, body, &doc); err != nil {
		return nil, err
	}
	if doc.ID == "" {
		return nil, fmt.Errorf("create document: response has no id")
	}
	return &doc, nil
}

// GetDocument implements driven.RemoteStore.
func (c *Client) GetDocument(ctx context.Context, sspID string) (*domain.DocumentEnvelope, error) {
	var env domain.DocumentEnvelope
	if err := c.do(ctx, http.MethodGet, []string{"ssps", sspID}, nil, &env); err != nil {
		return nil, err
	}
	if env.ID == "" {
		env.ID = sspID
	}
	if env.Sections == nil {
		env.Sections = make(map[string]any)
	}
	return &env, nil
}

// PutSection implements driven.RemoteStore.
func (c *Client) PutSection(ctx context.Context, sspID, key string, content any) error {
	body := map[string]any{"content": content}
	return c.do(ctx, http.MethodPut, []string{"ssps", sspID, "sections", key}, body, nil)
}

// GetResource implements driven.RemoteStore.
func (c *Client) GetResource(ctx context.Context, sspID, resource string) (map[string]any, error) {
	out := make(map[string]any)
	if err := c.do(ctx, http.MethodGet, []string{"ssps", sspID, resource}, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PutResource implements driven.RemoteStore.
func (c *Client) PutResource(ctx context.Context, sspID, resource string, body map[string]any) error {
	return c.do(ctx, http.MethodPut, []string{"ssps", sspID, resource}, body, nil)
}

// ListRows implements driven.RemoteStore. Non-string values are rendered
// as text and nulls are dropped.
func (c *Client) ListRows(ctx context.Context, sspID, resource string) ([]map[string]string, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, []string{"ssps", sspID, resource}, nil, &raw); err != nil {
		return nil, err
	}
	var items []map[string]any
	if err := decodeList(raw, &items); err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}

	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		row := make(map[string]string, len(item))
		for k, v := range item {
			if s, ok := stringify(v); ok {
				row[k] = s
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DeleteRows implements driven.RemoteStore.
func (c *Client) DeleteRows(ctx context.Context, sspID, resource string) error {
	return c.do(ctx, http.MethodDelete, []string{"ssps", sspID, resource}, nil, nil)
}

// CreateRow implements driven.RemoteStore.
func (c *Client) CreateRow(ctx context.Context, sspID, resource string, row map[string]string) error {
	return c.do(ctx, http.MethodPost, []string{"ssps", sspID, resource}, row, nil)
}

// do sends one JSON request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method string, segments []string, body, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := c.endpoint(segments...)

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("remote: %s %s", method, endpoint)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", domain.ErrRemoteUnavailable, method, endpoint, err)
	}
	defer resp.Body.Close()

	if err := c.rateLimiter.CheckResponse(resp); err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp, endpoint)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return c.baseURL.String() + "/" + strings.Join(escaped, "/")
}

func newAPIError(resp *http.Response, endpoint string) *APIError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(data, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    msg,
		URL:        endpoint,
	}
}

// decodeList accepts a bare array or an object wrapping it under
// "items" or "data".
func decodeList(raw json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, out)
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	for _, key := range []string{"items", "data"} {
		if inner, ok := wrapper[key]; ok {
			return json.Unmarshal(inner, out)
		}
	}
	return fmt.Errorf("unexpected list shape")
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(data), true
	}
}
