package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/llm-relay/internal/analytics"
	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/gateway"
	"github.com/nulzo/llm-relay/internal/llm"
	_ "github.com/nulzo/llm-relay/internal/llm/builtin"
	"github.com/nulzo/llm-relay/internal/status"
	"github.com/nulzo/llm-relay/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

func setupServer(t *testing.T, upstreamURL string, secrets llm.MapSecrets, debug bool) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	providers := config.DefaultProviders()
	for i := range providers {
		if providers[i].BaseURL != "" {
			providers[i].BaseURL = upstreamURL
		}
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Port:             "0",
			Env:              "test",
			UpstreamTimeout:  2 * time.Second,
			FallbackProvider: "mock",
			DebugEnabled:     debug,
		},
		Providers: providers,
	}

	registry, err := llm.NewRegistry(cfg.Providers, cfg.Server.FallbackProvider, secrets)
	require.NoError(t, err)

	logger := zap.NewNop()
	deps := Deps{
		Chat:      gateway.NewService(logger, registry, http.DefaultClient, nil, gateway.Options{UpstreamTimeout: cfg.Server.UpstreamTimeout}),
		Status:    status.NewReporter(registry, http.DefaultClient, nil, logger, status.Options{Environment: "test", Now: fixedNow}),
		Analytics: analytics.NewService(nil),
	}
	return New(cfg, logger, deps).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestChat_Mock(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{}, false)

	for _, path := range []string{"/chat", "/api/chat"} {
		w := do(t, h, http.MethodPost, path, `{"messages":[{"role":"user","content":"hello"}],"provider":"mock"}`)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, decode(t, w)["content"], "Hello")
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}
}

func TestChat_MissingClaudeKey(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{}, false)

	w := do(t, h, http.MethodPost, "/chat", `{"messages":[{"role":"user","content":"hello"}],"provider":"claude"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	msg := decode(t, w)["error"].(string)
	assert.Contains(t, msg, "Claude")
	assert.Contains(t, msg, "ANTHROPIC_API_KEY")
}

func TestChat_GroqUpstream500(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("groq exploded"))
	}))
	defer upstream.Close()

	h := setupServer(t, upstream.URL, llm.MapSecrets{"GROQ_API_KEY": "gsk_test"}, false)

	w := do(t, h, http.MethodPost, "/chat", `{"messages":[{"role":"user","content":"hello"}],"provider":"groq"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Groq API error: 500", body["error"])
	assert.Contains(t, body["details"], "groq exploded")
}

func TestChat_MethodNotAllowed(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{}, false)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := do(t, h, method, "/chat", "")
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, method)
		assert.Equal(t, "Method Not Allowed", decode(t, w)["error"])
	}
}

func TestChat_Preflight(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{}, false)

	w := do(t, h, http.MethodOptions, "/chat", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestChat_MalformedJSON(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{}, false)

	w := do(t, h, http.MethodPost, "/chat", `{"messages": [`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	body := decode(t, w)
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotEmpty(t, body["details"])
}

func TestChat_ValidationCitesIndex(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{}, false)

	w := do(t, h, http.MethodPost, "/chat", `{"messages":[{"role":"user","content":"hi"},{"role":"wizard","content":"x"}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "messages[1].role")

	for _, body := range []string{`{"messages":[]}`, `{"provider":"groq"}`} {
		w = do(t, h, http.MethodPost, "/chat", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestChat_WrongJSONTypesAreBadRequests(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{}, false)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"messages is a string", `{"messages":"hello"}`, "messages must be an array"},
		{"messages is an object", `{"messages":{"role":"user"}}`, "messages must be an array"},
		{"content is a number", `{"messages":[{"role":"user","content":5}]}`, "messages.content must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decode(t, w)["error"], tt.field)
		})
	}
}

func TestChat_BlankContentRejected(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{}, false)

	w := do(t, h, http.MethodPost, "/chat", `{"messages":[{"role":"user","content":"hello"},{"role":"user","content":"   "}],"provider":"mock"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w)["error"], "messages[1].content must not be blank")
}

func TestHealth_Idempotent(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{"GROQ_API_KEY": "gsk_test"}, false)

	first := do(t, h, http.MethodGet, "/health", "")
	second := do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	var report api.HealthReport
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &report))
	assert.Equal(t, "ok", report.Status)
	assert.Equal(t, "2024-06-01T12:00:00Z", report.Timestamp)
	assert.Equal(t, "test", report.Environment)
	assert.True(t, report.Providers["groq"])
	assert.False(t, report.Providers["claude"])
	assert.True(t, report.Providers["mock"])
}

func TestProviders_Listing(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{"GROQ_API_KEY": "gsk_test"}, false)

	w := do(t, h, http.MethodGet, "/providers", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []api.ProviderStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 10)
	assert.Equal(t, api.ProviderStatus{ID: "mock", Name: "Mock AI (Free)", Status: "online", Configured: true}, list[0])
	assert.Equal(t, api.ProviderStatus{ID: "claude", Name: "Claude", Status: "offline", Configured: false}, list[1])
	assert.Equal(t, "online", list[3].Status)

	again := do(t, h, http.MethodGet, "/providers", "")
	assert.Equal(t, w.Body.String(), again.Body.String())
}

func TestDebug_HiddenUnlessEnabled(t *testing.T) {
	secrets := llm.MapSecrets{"GROQ_API_KEY": "gsk_abcdefghijklmnop1234", "PATH": "/usr/bin"}

	h := setupServer(t, "http://127.0.0.1:1", secrets, false)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/debug", "").Code)

	h = setupServer(t, "http://127.0.0.1:1", secrets, true)
	w := do(t, h, http.MethodGet, "/api/debug", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "gsk_abcd...1234")
	assert.NotContains(t, body, "gsk_abcdefghijklmnop1234")
	assert.NotContains(t, body, "/usr/bin")
	assert.False(t, strings.Contains(body, `"mock"`), "inline providers have no credential")
}

func TestUsage(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{}, false)

	w := do(t, h, http.MethodGet, "/usage?days=3", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "list", decode(t, w)["object"])

	w = do(t, h, http.MethodGet, "/usage?days=soon", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	h := setupServer(t, "http://127.0.0.1:1", llm.MapSecrets{}, false)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope", "").Code)
}
