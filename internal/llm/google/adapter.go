package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/httpclient"
	"github.com/nulzo/llm-relay/internal/llm"
	"github.com/nulzo/llm-relay/pkg/api"
)

const pn string = "google"

func init() {
	llm.Register(pn, NewAdapter)
}

type Adapter struct {
	llm.Base
	baseURL string
	model   string
}

func NewAdapter(cfg config.ProviderConfig) (llm.Adapter, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
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

type GeminiPart struct {
	Text string `json:"text"`
}

type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

type GenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type GeminiRequest struct {
	Contents         []GeminiContent  `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Shape converts chat history into Gemini contents. Gemini has no system role,
// so system turns are dropped.
func Shape(messages []api.ChatMessage) []GeminiContent {
	contents := make([]GeminiContent, 0, len(messages))
	for _, m := range messages {
		var role string
		switch m.Role {
		case api.User:
			role = api.User
		case api.Assistant:
			role = api.ModelAssistant
		default:
			continue
		}
		contents = append(contents, GeminiContent{
			Role:  role,
			Parts: []GeminiPart{{Text: m.Content}},
		})
	}
	return contents
}

func (a *Adapter) Endpoint(key string) string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", a.baseURL, a.model, url.QueryEscape(key))
}

// Headers is empty; Gemini authenticates through the query string.
func (a *Adapter) Headers(string) map[string]string {
	return nil
}

func (a *Adapter) FormatRequest(messages []api.ChatMessage, opts api.GenerationOptions) (any, error) {
	return GeminiRequest{
		Contents: Shape(messages),
		GenerationConfig: GenerationConfig{
			MaxOutputTokens: opts.MaxTokens(api.DefaultLength),
			Temperature:     opts.Temperature(),
		},
	}, nil
}

func (a *Adapter) FormatResponse(body []byte) (*api.ChatResult, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil ||
		len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0].Text == nil {
		return nil, fmt.Errorf("%w: candidates[0].content.parts[0].text missing", llm.ErrUnexpectedShape)
	}
	return &api.ChatResult{Content: *resp.Candidates[0].Content.Parts[0].Text}, nil
}

func (a *Adapter) Probe(ctx context.Context, client httpclient.HTTPClient, key string) error {
	u := fmt.Sprintf("%s/models?key=%s", a.baseURL, url.QueryEscape(key))
	_, err := httpclient.SendRequest(ctx, client, http.MethodGet, u, nil, nil)
	return err
}
