package status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/llm"
	_ "github.com/nulzo/llm-relay/internal/llm/builtin"
	"github.com/nulzo/llm-relay/internal/store/cache"
	"github.com/nulzo/llm-relay/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRegistry(t *testing.T, secrets llm.MapSecrets) *llm.Registry {
	t.Helper()
	registry, err := llm.NewRegistry(config.DefaultProviders(), "mock", secrets)
	require.NoError(t, err)
	return registry
}

func TestHealth_IsStableAndReportsCredentials(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 30, 0, 0, time.FixedZone("EST", -5*3600))
	r := NewReporter(newRegistry(t, llm.MapSecrets{"GROQ_API_KEY": "gsk_1234567890"}), http.DefaultClient, nil, zap.NewNop(), Options{
		Environment: "test",
		Now:         func() time.Time { return fixed },
	})

	first := r.Health()
	second := r.Health()

	assert.Equal(t, first, second)
	assert.Equal(t, "ok", first.Status)
	assert.Equal(t, "2026-03-01T17:30:00Z", first.Timestamp)
	assert.Equal(t, "test", first.Environment)
	assert.True(t, first.Providers["groq"])
	assert.True(t, first.Providers["mock"])
	assert.True(t, first.Providers["ollama"])
	assert.True(t, first.Providers["huggingface"])
	assert.False(t, first.Providers["claude"])
	assert.Len(t, first.Providers, 10)
}

func TestProviders_TableOrderWithoutProbes(t *testing.T) {
	r := NewReporter(newRegistry(t, llm.MapSecrets{"ANTHROPIC_API_KEY": "sk-ant-xxxxxxxxxxxx"}), http.DefaultClient, nil, zap.NewNop(), Options{})

	statuses := r.Providers(context.Background())
	require.Len(t, statuses, 10)

	assert.Equal(t, api.ProviderStatus{ID: "mock", Name: "Mock AI (Free)", Status: api.StatusOnline, Configured: true}, statuses[0])
	assert.Equal(t, "claude", statuses[1].ID)
	assert.Equal(t, api.StatusOnline, statuses[1].Status)
	assert.Equal(t, "gemini", statuses[2].ID)
	assert.Equal(t, api.StatusOffline, statuses[2].Status)
	assert.False(t, statuses[2].Configured)
}

func TestProviders_LiveProbeIsolatesFailures(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer healthy.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	providers := []config.ProviderConfig{
		{ID: "mock", Type: "mock", Enabled: true},
		{ID: "groq", Type: "openai", BaseURL: healthy.URL, Model: "m", APIKeyEnv: "GROQ_API_KEY", Enabled: true},
		{ID: "xai", Type: "openai", BaseURL: broken.URL, Model: "m", APIKeyEnv: "XAI_API_KEY", Enabled: true},
		{ID: "zai", Type: "openai", BaseURL: healthy.URL, Model: "m", APIKeyEnv: "ZAI_API_KEY", Enabled: true},
	}
	registry, err := llm.NewRegistry(providers, "mock", llm.MapSecrets{"GROQ_API_KEY": "a", "XAI_API_KEY": "b"})
	require.NoError(t, err)

	r := NewReporter(registry, http.DefaultClient, nil, zap.NewNop(), Options{LiveProbe: true, ProbeTimeout: time.Second})

	statuses := r.Providers(context.Background())
	require.Len(t, statuses, 4)
	assert.Equal(t, api.StatusOnline, statuses[0].Status)
	assert.Equal(t, api.StatusOnline, statuses[1].Status)
	assert.Equal(t, api.StatusOffline, statuses[2].Status)
	assert.True(t, statuses[2].Configured)
	// unconfigured providers are never probed
	assert.Equal(t, api.StatusOffline, statuses[3].Status)
}

func TestProviders_ProbeResultIsCached(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	providers := []config.ProviderConfig{
		{ID: "mock", Type: "mock", Enabled: true},
		{ID: "groq", Type: "openai", BaseURL: upstream.URL, Model: "m", APIKeyEnv: "GROQ_API_KEY", Enabled: true},
	}
	registry, err := llm.NewRegistry(providers, "mock", llm.MapSecrets{"GROQ_API_KEY": "a"})
	require.NoError(t, err)

	r := NewReporter(registry, http.DefaultClient, cache.NewMemoryCache(), zap.NewNop(), Options{
		LiveProbe: true,
		CacheTTL:  time.Minute,
	})

	for i := 0; i < 3; i++ {
		statuses := r.Providers(context.Background())
		assert.Equal(t, api.StatusOnline, statuses[1].Status)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestProviders_CancelledCallerDoesNotPoisonCache(t *testing.T) {
	var hits atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer upstream.Close()

	providers := []config.ProviderConfig{
		{ID: "mock", Type: "mock", Enabled: true},
		{ID: "groq", Type: "openai", BaseURL: upstream.URL, Model: "m", APIKeyEnv: "GROQ_API_KEY", Enabled: true},
		{ID: "ollama", Type: "ollama", BaseURL: upstream.URL, Model: "llama3", Enabled: true},
	}
	registry, err := llm.NewRegistry(providers, "mock", llm.MapSecrets{"GROQ_API_KEY": "a"})
	require.NoError(t, err)

	r := NewReporter(registry, http.DefaultClient, cache.NewMemoryCache(), zap.NewNop(), Options{
		LiveProbe:    true,
		ProbeTimeout: time.Second,
		CacheTTL:     time.Minute,
	})

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	_ = r.Providers(cancelled)

	statuses := r.Providers(context.Background())
	require.Len(t, statuses, 3)
	assert.Equal(t, api.StatusOnline, statuses[1].Status)
	assert.Equal(t, api.StatusOnline, statuses[2].Status)
}

func TestCredentials_MasksKeys(t *testing.T) {
	r := NewReporter(newRegistry(t, llm.MapSecrets{
		"ANTHROPIC_API_KEY": "sk-ant-REDACTED",
		"GROQ_API_KEY":      "short",
		"GEMINI_API_KEY":    "AIzaSyExampleExample",
	}), http.DefaultClient, nil, zap.NewNop(), Options{})

	creds := r.Credentials()

	require.Contains(t, creds, "claude")
	assert.True(t, creds["claude"].Configured)
	assert.Equal(t, "ANTHROPIC_API_KEY", creds["claude"].EnvVar)
	require.NotNil(t, creds["claude"].KeyPreview)
	assert.Equal(t, "sk-ant-a...mnop", *creds["claude"].KeyPreview)

	require.NotNil(t, creds["groq"].KeyPreview)
	assert.Equal(t, "****", *creds["groq"].KeyPreview)

	// alias resolves, primary name is still what gets reported
	assert.Equal(t, "GOOGLE_API_KEY", creds["gemini"].EnvVar)
	assert.True(t, creds["gemini"].Configured)

	assert.False(t, creds["xai"].Configured)
	assert.Nil(t, creds["xai"].KeyPreview)

	assert.NotContains(t, creds, "mock")
	assert.NotContains(t, creds, "ollama")
}

func TestMask(t *testing.T) {
	assert.Equal(t, "****", Mask(""))
	assert.Equal(t, "****", Mask("12345678901"))
	assert.Equal(t, "****", Mask("sk-ABCDEFGHI"))
	assert.Equal(t, "12345678...0123", Mask("1234567890123"))
}
