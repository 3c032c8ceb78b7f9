package loamy

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/loamy/internal/loamy/config"
	v1 "github.com/kiosk404/loamy/internal/loamy/handler/v1"
	"github.com/kiosk404/loamy/internal/loamy/options"
	"github.com/kiosk404/loamy/internal/loamy/service/agents"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/entity"
	"github.com/kiosk404/loamy/internal/loamy/service/agents/domain/service/runtime"
	"github.com/kiosk404/loamy/pkg/utils/json"
)

// statusBackend checks Alice's status, then repeats the tool result.
type statusBackend struct{}

func (statusBackend) Generate(_ context.Context, req *runtime.Request) (*schema.Message, error) {
	last := req.Messages[len(req.Messages)-1]
	if last.Role == schema.Tool {
		return schema.AssistantMessage("status: "+last.Content, nil), nil
	}
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID: "call-1",
		Function: schema.FunctionCall{
			Name:      string(entity.ToolVerifyStatus),
			Arguments: `{"customer_name":"alice"}`,
		},
	}}), nil
}

func newTestServer(t *testing.T) *apiServer {
	t.Helper()
	dir := t.TempDir()

	opts := options.NewOptions()
	opts.ServerOptions.Mode = "test"
	opts.ServerOptions.StaticDir = filepath.Join(dir, "static")
	opts.StoreOptions.Type = agents.StoreInMemory
	cfg, err := config.CreateConfigFromOptions(opts)
	require.NoError(t, err)

	agentsCfg, err := cfg.AgentsConfig()
	require.NoError(t, err)
	m, err := agentsCfg.Complete().New(context.Background(), agents.Dependencies{Backend: statusBackend{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	s := newAPIServer(cfg, nil, m)
	s.PrepareRun()
	return s
}

func do(s *apiServer, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(s, http.MethodGet, "/v1/tools", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var tools v1.ToolsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tools))
	assert.Len(t, tools.Tools, 3)

	w = do(s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	w = do(s, http.MethodGet, "/debug/pprof/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChatRoute(t *testing.T) {
	s := newTestServer(t)

	w := do(s, http.MethodPost, "/v1/chat", []byte(`{"message":"is alice verified?"}`))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp v1.ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, strings.HasPrefix(resp.Reply, "status: "))
	assert.Contains(t, resp.Reply, "verified")
	assert.Equal(t, 2, resp.Steps)
	assert.Len(t, resp.History, 4)
	assert.Contains(t, w.Body.String(), `"tool_name"`)

	w = do(s, http.MethodPost, "/v1/chat", []byte(`{"message":""}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStaticRoute(t *testing.T) {
	s := newTestServer(t)
	dir := s.cfg.ServerOptions.StaticDir
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sanction_alice.html"), []byte("<h1>letter</h1>"), 0o644))

	w := do(s, http.MethodGet, "/static/sanction_alice.html", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "letter")
}
