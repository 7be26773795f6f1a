package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/httpclient"
	"github.com/nulzo/llm-relay/internal/llm"
	"github.com/nulzo/llm-relay/pkg/api"
)

func init() {
	llm.Register("ollama", NewAdapter)
}

type Adapter struct {
	llm.Base
	baseURL string
	model   string
}

func NewAdapter(cfg config.ProviderConfig) (llm.Adapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &Adapter{
		Base:    llm.NewBase(cfg),
		baseURL: strings.TrimSuffix(strings.TrimRight(cfg.BaseURL, "/"), "/v1"),
		model:   cfg.Model,
	}, nil
}

type Options struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float64 `json:"temperature"`
}

type GenerateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options Options `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (a *Adapter) Endpoint(string) string {
	return a.baseURL + "/api/generate"
}

func (a *Adapter) Headers(string) map[string]string {
	return nil
}

func (a *Adapter) FormatRequest(messages []api.ChatMessage, opts api.GenerationOptions) (any, error) {
	return GenerateRequest{
		Model:  a.model,
		Prompt: api.LastContent(messages),
		Stream: false,
		Options: Options{
			NumPredict:  opts.MaxTokens(api.DefaultLength),
			Temperature: opts.Temperature(),
		},
	}, nil
}

func (a *Adapter) FormatResponse(body []byte) (*api.ChatResult, error) {
	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.Response == "" {
		return &api.ChatResult{Content: llm.Apology}, nil
	}
	return &api.ChatResult{Content: resp.Response}, nil
}

// Probe asks the daemon for its local models.
func (a *Adapter) Probe(ctx context.Context, client httpclient.HTTPClient, _ string) error {
	_, err := httpclient.SendRequest(ctx, client, http.MethodGet, a.baseURL+"/api/tags", nil, nil)
	return err
}
