package llm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nulzo/llm-relay/internal/config"
)

// Factory builds an adapter from one provider table entry.
type Factory func(cfg config.ProviderConfig) (Adapter, error)

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes an adapter factory available under a provider type.
// Provider packages call it from init().
func Register(providerType string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[providerType]; exists {
		panic(fmt.Sprintf("provider factory %s already registered", providerType))
	}
	factories[providerType] = f
}

func Get(providerType string) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[providerType]
	if !ok {
		return nil, fmt.Errorf("provider factory not found for type: %s", providerType)
	}
	return f, nil
}

// Types lists the registered provider types.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()
	types := make([]string, 0, len(factories))
	for t := range factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
