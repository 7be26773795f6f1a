package openai

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

// The OpenAI-compatible chat completions dialect, served by Groq, xAI and Z.AI.
func init() {
	llm.Register("openai", NewAdapter)
}

type Adapter struct {
	llm.Base
	baseURL string
	model   string
	org     string
}

func NewAdapter(cfg config.ProviderConfig) (llm.Adapter, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base_url is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &Adapter{
		Base:    llm.NewBase(cfg),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		model:   cfg.Model,
		org:     cfg.Config["organization"],
	}, nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (a *Adapter) Endpoint(string) string {
	return a.baseURL + "/chat/completions"
}

func (a *Adapter) Headers(key string) map[string]string {
	headers := map[string]string{
		"Authorization": "Bearer " + key,
	}
	if a.org != "" {
		headers["OpenAI-Organization"] = a.org
	}
	return headers
}

func (a *Adapter) FormatRequest(messages []api.ChatMessage, opts api.GenerationOptions) (any, error) {
	msgs := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}
	return chatRequest{
		Model:       a.model,
		Messages:    msgs,
		MaxTokens:   opts.MaxTokens(api.DefaultLength),
		Temperature: opts.Temperature(),
	}, nil
}

func (a *Adapter) FormatResponse(body []byte) (*api.ChatResult, error) {
	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return nil, fmt.Errorf("%w: choices[0].message.content missing", llm.ErrUnexpectedShape)
	}
	return &api.ChatResult{Content: *resp.Choices[0].Message.Content}, nil
}

// Probe lists models, which every compatible vendor serves.
func (a *Adapter) Probe(ctx context.Context, client httpclient.HTTPClient, key string) error {
	_, err := httpclient.SendRequest(ctx, client, http.MethodGet, a.baseURL+"/models", a.Headers(key), nil)
	return err
}
