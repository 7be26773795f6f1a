package huggingface

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/llm"
	"github.com/nulzo/llm-relay/pkg/api"
)

// The inference API counts length in tokens of output text, and is much
// smaller than the chat providers by default.
const defaultMaxLength = 100

func init() {
	llm.Register("huggingface", NewAdapter)
}

type Adapter struct {
	llm.Base
	baseURL string
	model   string
}

func NewAdapter(cfg config.ProviderConfig) (llm.Adapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &Adapter{
		Base:    llm.NewBase(cfg),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
	}, nil
}

type Parameters struct {
	MaxLength   int     `json:"max_length"`
	Temperature float64 `json:"temperature"`
}

type Request struct {
	Inputs     string     `json:"inputs"`
	Parameters Parameters `json:"parameters"`
}

type generation struct {
	GeneratedText string `json:"generated_text"`
}

func (a *Adapter) Endpoint(string) string {
	return a.baseURL + "/" + a.model
}

// Headers only sends a bearer token when one is configured; the API also
// serves anonymous callers.
func (a *Adapter) Headers(key string) map[string]string {
	if key == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + key}
}

// FormatRequest sends only the latest message as the prompt.
func (a *Adapter) FormatRequest(messages []api.ChatMessage, opts api.GenerationOptions) (any, error) {
	return Request{
		Inputs: api.LastContent(messages),
		Parameters: Parameters{
			MaxLength:   opts.MaxTokens(defaultMaxLength),
			Temperature: opts.Temperature(),
		},
	}, nil
}

// FormatResponse falls back to an apology when the model returns no generation.
func (a *Adapter) FormatResponse(body []byte) (*api.ChatResult, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var generations []generation
	if err := json.Unmarshal(raw, &generations); err != nil || len(generations) == 0 || generations[0].GeneratedText == "" {
		return &api.ChatResult{Content: llm.Apology}, nil
	}
	return &api.ChatResult{Content: generations[0].GeneratedText}, nil
}
