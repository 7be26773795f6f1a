package llm

import (
	"context"
	"errors"

	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/httpclient"
	"github.com/nulzo/llm-relay/pkg/api"
)

// ErrUnexpectedShape is returned by response formatters when the provider payload
// lacks the field they extract.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// Apology is substituted by keyless adapters whose reply field is absent.
const Apology = "I'm sorry, I couldn't generate a response. Please try again."

// Credential describes where an adapter's API key comes from.
type Credential struct {
	Env      string
	Aliases  []string
	Optional bool
}

// Required reports whether requests must be refused when the key is missing.
func (c Credential) Required() bool {
	return c.Env != "" && !c.Optional
}

// Adapter is the capability every provider shares. Concrete adapters must also
// implement exactly one call path: HTTPAdapter or InlineAdapter.
type Adapter interface {
	ID() string
	Name() string
	Credential() Credential
}

// HTTPAdapter translates to and from a provider reached with a single POST.
type HTTPAdapter interface {
	Adapter
	Endpoint(key string) string
	Headers(key string) map[string]string
	FormatRequest(messages []api.ChatMessage, opts api.GenerationOptions) (any, error)
	FormatResponse(body []byte) (*api.ChatResult, error)
}

// InlineAdapter answers without any outbound call.
type InlineAdapter interface {
	Adapter
	Handle(ctx context.Context, messages []api.ChatMessage, opts api.GenerationOptions) (*api.ChatResult, error)
}

// Prober is implemented by adapters that can cheaply check connectivity.
type Prober interface {
	Probe(ctx context.Context, client httpclient.HTTPClient, key string) error
}

// Base carries the identity fields shared by all adapters.
type Base struct {
	id         string
	name       string
	credential Credential
}

func NewBase(cfg config.ProviderConfig) Base {
	name := cfg.Name
	if name == "" {
		name = cfg.ID
	}
	return Base{
		id:   cfg.ID,
		name: name,
		credential: Credential{
			Env:      cfg.APIKeyEnv,
			Aliases:  cfg.APIKeyEnvAliases,
			Optional: cfg.KeyOptional,
		},
	}
}

func (b Base) ID() string             { return b.id }
func (b Base) Name() string           { return b.name }
func (b Base) Credential() Credential { return b.credential }
