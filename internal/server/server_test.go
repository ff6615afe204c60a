package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliffyan/go-meta-search/internal/aggregate"
	"github.com/cliffyan/go-meta-search/internal/config"
	"github.com/cliffyan/go-meta-search/internal/engine"
	"github.com/cliffyan/go-meta-search/internal/mcp"
)

type stubSearcher struct {
	resp aggregate.Response
	err  error
	got  aggregate.Request
}

func (s *stubSearcher) Search(ctx context.Context, req aggregate.Request) (aggregate.Response, error) {
	s.got = req
	return s.resp, s.err
}

func newTestServer(s mcp.Searcher) *Server {
	cfg := config.Default()
	cfg.Server.CORS.Enabled = true
	return New(cfg, s, []string{"bing", "duckduckgo"})
}

func TestSearchEndpoint(t *testing.T) {
	stub := &stubSearcher{resp: aggregate.Response{
		Query: "pizza",
		Results: []aggregate.Result{{
			SearchResult: engine.SearchResult{URL: "https://p.example"},
			Snippet:      "<b>pizza</b>",
			Score:        1,
		}},
	}}
	srv := newTestServer(stub)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/search?q=pizza&limit=3&engines=bing,+duckduckgo&snippets=false", nil)
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, aggregate.Request{Query: "pizza", Limit: 3, Engines: []string{"bing", "duckduckgo"}, WithSnippets: false}, stub.got)

	var body aggregate.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Results, 1)
	assert.Equal(t, "<b>pizza</b>", body.Results[0].Snippet)
}

func TestSearchEndpointErrors(t *testing.T) {
	srv := newTestServer(&stubSearcher{err: errors.New("all searches failed")})

	for target, code := range map[string]int{
		"/search":                    http.StatusBadRequest,
		"/search?q=x&limit=abc":      http.StatusBadRequest,
		"/search?q=x&snippets=maybe": http.StatusBadRequest,
		"/search?q=x":                http.StatusBadGateway,
	} {
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, code, rec.Code, target)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/search?q=x", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMCPInitializeCreatesSession(t *testing.T) {
	srv := newTestServer(&stubSearcher{})

	payload := []byte(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(payload)))

	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := rec.Header().Get("mcp-session-id")
	require.NotEmpty(t, sessionID)
	assert.True(t, srv.hasSession(sessionID))

	var resp mcp.JSONRPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.Error)

	del := httptest.NewRequest(http.MethodDelete, "/mcp", nil)
	del.Header.Set("mcp-session-id", sessionID)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, del)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, srv.hasSession(sessionID))
}

func TestMCPParseErrorAndNotification(t *testing.T) {
	srv := newTestServer(&stubSearcher{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader([]byte("{"))))
	var resp mcp.JSONRPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.CodeParseError, resp.Error.Code)

	rec = httptest.NewRecorder()
	payload := []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(payload)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMCPGetRequiresSession(t *testing.T) {
	srv := newTestServer(&stubSearcher{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/mcp", nil)
	req.Header.Set("mcp-session-id", "unknown")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubSearcher{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, []any{"bing", "duckduckgo"}, body["engines"])
}
