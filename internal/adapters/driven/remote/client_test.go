package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ssp-cli/internal/core/domain"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.EscapedPath(), auth: r.Header.Get("Authorization")}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		calls = append(calls, rec)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{BaseURL: srv.URL + "/api/", Token: "tok-123"})
	require.NoError(t, err)
	return c, &calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(context.Background(), Config{})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = NewClient(context.Background(), Config{BaseURL: "not a url"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestClient_ListDocuments(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "a", "title": "Alpha", "updated_at": "2026-01-02T03:04:05Z"},
			{"id": "b", "title": "Beta"},
		})
	})

	docs, err := c.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "Alpha", docs[0].Title)
	assert.Equal(t, 2026, docs[0].UpdatedAt.Year())

	assert.Equal(t, "GET", (*calls)[0].method)
	assert.Equal(t, "/api/ssps", (*calls)[0].path)
	assert.Equal(t, "Bearer tok-123", (*calls)[0].auth)
}

func TestClient_ListDocuments_Wrapped(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"items": []map[string]any{{"id": "a"}}})
	})

	docs, err := c.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].ID)
}

func TestClient_CreateDocument(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": "new-1", "title": "Payroll"})
	})

	doc, err := c.CreateDocument(context.Background(), "Payroll")
	require.NoError(t, err)
	assert.Equal(t, "new-1", doc.ID)
	assert.Equal(t, "POST", (*calls)[0].method)
	assert.Equal(t, "Payroll", (*calls)[0].body["title"])
}

func TestClient_CreateDocument_NoID(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"title": "x"})
	})

	_, err := c.CreateDocument(context.Background(), "x")
	assert.Error(t, err)
}

func TestClient_GetDocument(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"title": "Payroll",
			"sections": map[string]any{
				"system-info":  map[string]any{"sysName": "Payroll"},
				"bndNarrative": "Boundary",
			},
		})
	})

	env, err := c.GetDocument(context.Background(), "ssp 1")
	require.NoError(t, err)
	assert.Equal(t, "ssp 1", env.ID)
	assert.Equal(t, "Boundary", env.Sections["bndNarrative"])
	assert.Equal(t, "/api/ssps/ssp%201", (*calls)[0].path)
}

func TestClient_PutSection(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.PutSection(context.Background(), "s1", "bndNarrative", "text"))
	require.NoError(t, c.PutSection(context.Background(), "s1", "system-info", map[string]any{"sysName": "P"}))

	require.Len(t, *calls, 2)
	assert.Equal(t, "PUT", (*calls)[0].method)
	assert.Equal(t, "/api/ssps/s1/sections/bndNarrative", (*calls)[0].path)
	assert.Equal(t, "text", (*calls)[0].body["content"])
	assert.Equal(t, map[string]any{"sysName": "P"}, (*calls)[1].body["content"])
}

func TestClient_Resources(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, http.StatusOK, map[string]any{"rmfStep": "Assess"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	})

	body, err := c.GetResource(context.Background(), "s1", "rmf-tracking")
	require.NoError(t, err)
	assert.Equal(t, "Assess", body["rmfStep"])

	require.NoError(t, c.PutResource(context.Background(), "s1", "rmf-tracking", map[string]any{"rmfStep": "Authorize"}))
	assert.Equal(t, "/api/ssps/s1/rmf-tracking", (*calls)[1].path)
	assert.Equal(t, "Authorize", (*calls)[1].body["rmfStep"])
}

func TestClient_Rows(t *testing.T) {
	c, calls := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, []map[string]any{
				{"port": 443, "protocol": "TCP", "enabled": true, "notes": nil},
			})
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			writeJSON(w, http.StatusCreated, map[string]any{"id": "row-1"})
		}
	})
	ctx := context.Background()

	rows, err := c.ListRows(ctx, "s1", "ports-protocols")
	require.NoError(t, err)
	assert.Equal(t, []map[string]string{{"port": "443", "protocol": "TCP", "enabled": "true"}}, rows)

	require.NoError(t, c.DeleteRows(ctx, "s1", "ports-protocols"))
	require.NoError(t, c.CreateRow(ctx, "s1", "ports-protocols", map[string]string{"port": "22"}))

	assert.Equal(t, "DELETE", (*calls)[1].method)
	assert.Equal(t, "POST", (*calls)[2].method)
	assert.Equal(t, "22", (*calls)[2].body["port"])
}

func TestClient_APIErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		payload any
		wantMsg string
	}{
		{"not found message", http.StatusNotFound, map[string]string{"message": "no such ssp"}, "no such ssp"},
		{"method not allowed error", http.StatusMethodNotAllowed, map[string]string{"error": "DELETE unsupported"}, "DELETE unsupported"},
		{"conflict text", http.StatusConflict, "version mismatch", "version mismatch"},
		{"bare server error", http.StatusInternalServerError, nil, "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				switch p := tt.payload.(type) {
				case string:
					_, _ = io.WriteString(w, p)
				case nil:
				default:
					_ = json.NewEncoder(w).Encode(p)
				}
			})

			_, err := c.GetResource(context.Background(), "s1", "rmf-tracking")
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)

			var se domain.StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.Status())
			assert.Equal(t, tt.wantMsg, se.ServerMessage())
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	c, err := NewClient(context.Background(), Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})
	require.NoError(t, err)

	_, err = c.ListDocuments(context.Background())
	assert.ErrorIs(t, err, domain.ErrRemoteUnavailable)
}

func TestClient_RateLimited(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRetryAfter, "2")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.ListDocuments(context.Background())
	require.Error(t, err)
	var rl *RateLimitError
	assert.True(t, errors.As(err, &rl))
	assert.WithinDuration(t, time.Now().Add(2*time.Second), c.RateLimiter().RetryAfter(), time.Second)

	var se domain.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusTooManyRequests, se.Status())
}
