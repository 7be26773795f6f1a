package anthropic

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

const defaultVersion = "2023-06-01"

func init() {
	llm.Register("anthropic", NewAdapter)
}

type Adapter struct {
	llm.Base
	baseURL string
	model   string
	version string
}

func NewAdapter(cfg config.ProviderConfig) (llm.Adapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	version := cfg.Config["version"]
	if version == "" {
		version = defaultVersion
	}
	return &Adapter{
		Base:    llm.NewBase(cfg),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		version: version,
	}, nil
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type Content struct {
	Type string  `json:"type"`
	Text *string `json:"text"`
}

type Response struct {
	ID         string    `json:"id"`
	Content    []Content `json:"content"`
	StopReason string    `json:"stop_reason"`
}

func (a *Adapter) Endpoint(string) string {
	return a.baseURL + "/messages"
}

func (a *Adapter) Headers(key string) map[string]string {
	return map[string]string{
		"x-api-key":         key,
		"anthropic-version": a.version,
	}
}

// FormatRequest drops blank turns; anything not from the user is sent as assistant.
func (a *Adapter) FormatRequest(messages []api.ChatMessage, opts api.GenerationOptions) (any, error) {
	msgs := make([]Message, 0, len(messages))
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		role := api.Assistant
		if m.Role == api.User {
			role = api.User
		}
		msgs = append(msgs, Message{Role: role, Content: m.Content})
	}
	return Request{
		Model:       a.model,
		MaxTokens:   opts.MaxTokens(api.DefaultLength),
		Temperature: opts.Temperature(),
		Messages:    msgs,
	}, nil
}

func (a *Adapter) FormatResponse(body []byte) (*api.ChatResult, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(resp.Content) == 0 || resp.Content[0].Text == nil {
		return nil, fmt.Errorf("%w: content[0].text missing", llm.ErrUnexpectedShape)
	}
	return &api.ChatResult{Content: *resp.Content[0].Text}, nil
}

func (a *Adapter) Probe(ctx context.Context, client httpclient.HTTPClient, key string) error {
	_, err := httpclient.SendRequest(ctx, client, http.MethodGet, a.baseURL+"/models", a.Headers(key), nil)
	return err
}
