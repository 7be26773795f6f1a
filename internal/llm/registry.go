package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/nulzo/llm-relay/internal/config"
)

// SecretSource yields credentials at call time so key rotation does not
// require rebuilding the registry.
type SecretSource interface {
	Lookup(name string) (string, bool)
}

// EnvSecrets reads credentials from the process environment.
type EnvSecrets struct{}

func (EnvSecrets) Lookup(name string) (string, bool) {
	return os.LookupEnv(name)
}

// MapSecrets is a fixed secret source, mostly useful in tests.
type MapSecrets map[string]string

func (m MapSecrets) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Registry is the ordered, read-only provider table.
type Registry struct {
	order    []Adapter
	byID     map[string]Adapter
	fallback Adapter
	secrets  SecretSource
}

// NewRegistry builds every enabled provider through its registered factory.
func NewRegistry(providers []config.ProviderConfig, fallbackID string, secrets SecretSource) (*Registry, error) {
	if secrets == nil {
		secrets = EnvSecrets{}
	}

	r := &Registry{
		byID:    make(map[string]Adapter, len(providers)),
		secrets: secrets,
	}

	for _, pCfg := range providers {
		if !pCfg.Enabled {
			continue
		}
		if _, exists := r.byID[pCfg.ID]; exists {
			return nil, fmt.Errorf("provider %q already registered", pCfg.ID)
		}

		factory, err := Get(pCfg.Type)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", pCfg.ID, err)
		}

		adapter, err := factory(pCfg)
		if err != nil {
			return nil, fmt.Errorf("provider %q: %w", pCfg.ID, err)
		}

		if err := checkCallPath(adapter); err != nil {
			return nil, err
		}

		r.order = append(r.order, adapter)
		r.byID[adapter.ID()] = adapter
	}

	fallback, ok := r.byID[fallbackID]
	if !ok {
		return nil, fmt.Errorf("fallback provider %q is not registered", fallbackID)
	}
	r.fallback = fallback

	return r, nil
}

func checkCallPath(a Adapter) error {
	_, inline := a.(InlineAdapter)
	_, remote := a.(HTTPAdapter)
	if !inline && !remote {
		return fmt.Errorf("provider %q defines no call path", a.ID())
	}
	return nil
}

// Resolve returns the adapter for id, or the fallback adapter when id is unknown or empty.
func (r *Registry) Resolve(id string) Adapter {
	if a, ok := r.byID[id]; ok {
		return a
	}
	return r.fallback
}

// Lookup returns the adapter for id without falling back.
func (r *Registry) Lookup(id string) (Adapter, bool) {
	a, ok := r.byID[id]
	return a, ok
}

func (r *Registry) Fallback() Adapter {
	return r.fallback
}

// Adapters returns the providers in table order.
func (r *Registry) Adapters() []Adapter {
	out := make([]Adapter, len(r.order))
	copy(out, r.order)
	return out
}

// HasCredential is false only when a required key is unset or blank.
func (r *Registry) HasCredential(a Adapter) bool {
	if !a.Credential().Required() {
		return true
	}
	return r.Key(a) != ""
}

// Key returns the adapter's current credential, or "" when none is set.
func (r *Registry) Key(a Adapter) string {
	cred := a.Credential()
	if cred.Env == "" {
		return ""
	}
	for _, name := range append([]string{cred.Env}, cred.Aliases...) {
		if v, ok := r.secrets.Lookup(name); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
