package llm_test

import (
	"context"
	"testing"

	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/llm"
	_ "github.com/nulzo/llm-relay/internal/llm/builtin"
	"github.com/nulzo/llm-relay/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_DefaultTable(t *testing.T) {
	reg, err := llm.NewRegistry(config.DefaultProviders(), "mock", llm.MapSecrets{})
	require.NoError(t, err)

	ids := make([]string, 0)
	for _, a := range reg.Adapters() {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []string{"mock", "claude", "gemini", "groq", "xai", "zai", "huggingface", "ollama", "local", "free"}, ids)
}

func TestResolve_FallsBackToMock(t *testing.T) {
	reg, err := llm.NewRegistry(config.DefaultProviders(), "mock", llm.MapSecrets{})
	require.NoError(t, err)

	assert.Equal(t, "mock", reg.Resolve("").ID())
	assert.Equal(t, "mock", reg.Resolve("openai").ID())
	assert.Equal(t, "groq", reg.Resolve("groq").ID())

	_, ok := reg.Lookup("openai")
	assert.False(t, ok)
}

func TestHasCredential(t *testing.T) {
	secrets := llm.MapSecrets{
		"GROQ_API_KEY":   "gsk_123",
		"XAI_API_KEY":    "   ",
		"GEMINI_API_KEY": "gem-alias",
	}
	reg, err := llm.NewRegistry(config.DefaultProviders(), "mock", secrets)
	require.NoError(t, err)

	check := func(id string) bool {
		a, ok := reg.Lookup(id)
		require.True(t, ok)
		return reg.HasCredential(a)
	}

	assert.True(t, check("mock"))
	assert.True(t, check("groq"))
	assert.False(t, check("xai"), "blank key counts as missing")
	assert.False(t, check("claude"))
	assert.True(t, check("gemini"), "alias env var is honored")
	assert.True(t, check("huggingface"), "optional key")
	assert.True(t, check("ollama"))

	gemini, _ := reg.Lookup("gemini")
	assert.Equal(t, "gem-alias", reg.Key(gemini))
}

func TestNewRegistry_SkipsDisabledAndChecksFallback(t *testing.T) {
	providers := config.DefaultProviders()
	providers[0].Enabled = false

	_, err := llm.NewRegistry(providers, "mock", llm.MapSecrets{})
	assert.Error(t, err)

	reg, err := llm.NewRegistry(providers, "local", llm.MapSecrets{})
	require.NoError(t, err)
	assert.Equal(t, "local", reg.Resolve("mock").ID())
}

func TestNewRegistry_UnknownType(t *testing.T) {
	_, err := llm.NewRegistry([]config.ProviderConfig{{ID: "x", Type: "carrier-pigeon", Enabled: true}}, "x", nil)
	assert.ErrorContains(t, err, "provider factory not found")
}

type bareAdapter struct{ llm.Base }

func TestNewRegistry_RejectsAdapterWithoutCallPath(t *testing.T) {
	if _, err := llm.Get("bare-test"); err != nil {
		llm.Register("bare-test", func(cfg config.ProviderConfig) (llm.Adapter, error) {
			return bareAdapter{llm.NewBase(cfg)}, nil
		})
	}

	_, err := llm.NewRegistry([]config.ProviderConfig{{ID: "bare", Type: "bare-test", Enabled: true}}, "bare", nil)
	assert.ErrorContains(t, err, "no call path")
}

func TestEveryAdapterHasOneCallPath(t *testing.T) {
	reg, err := llm.NewRegistry(config.DefaultProviders(), "mock", llm.MapSecrets{})
	require.NoError(t, err)

	for _, a := range reg.Adapters() {
		_, inline := a.(llm.InlineAdapter)
		_, remote := a.(llm.HTTPAdapter)
		assert.True(t, inline != remote, a.ID())
	}

	mock := reg.Resolve("mock").(llm.InlineAdapter)
	res, err := mock.Handle(context.Background(), []api.ChatMessage{{Role: "user", Content: "hi"}}, api.GenerationOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Content)
}
