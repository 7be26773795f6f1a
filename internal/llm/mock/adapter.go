package mock

import (
	"context"
	"strconv"

	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/llm"
	"github.com/nulzo/llm-relay/pkg/api"
)

func init() {
	llm.Register("mock", NewAdapter)
}

// Adapter answers from the canned Responder. It needs no credential.
type Adapter struct {
	llm.Base
	responder *Responder
}

func NewAdapter(cfg config.ProviderConfig) (llm.Adapter, error) {
	rich := true
	if v, ok := cfg.Config["rich"]; ok {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, err
		}
		rich = parsed
	}
	cfg.APIKeyEnv = ""
	return &Adapter{
		Base:      llm.NewBase(cfg),
		responder: NewResponder(rich, nil),
	}, nil
}

func (a *Adapter) Handle(_ context.Context, messages []api.ChatMessage, _ api.GenerationOptions) (*api.ChatResult, error) {
	return &api.ChatResult{Content: a.responder.Respond(api.LastContent(messages))}, nil
}
