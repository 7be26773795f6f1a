package gateway

import (
	"fmt"

	"github.com/nulzo/llm-relay/internal/cli"
	"github.com/nulzo/llm-relay/internal/config"
	"github.com/nulzo/llm-relay/internal/llm"
	"go.uber.org/zap"
)

// BootstrapProviders builds the provider registry and reports which providers
// can serve requests with the current credentials.
func BootstrapProviders(providers []config.ProviderConfig, fallback string, secrets llm.SecretSource, log *zap.Logger) (*llm.Registry, error) {
	registry, err := llm.NewRegistry(providers, fallback, secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider registry: %w", err)
	}

	configured := 0
	for _, a := range registry.Adapters() {
		if registry.HasCredential(a) {
			configured++
			log.Info(fmt.Sprintf("%s %s", cli.CheckMark(), cli.Style(a.ID(), cli.Bold)),
				zap.String("name", a.Name()))
			continue
		}
		log.Warn(fmt.Sprintf("%s %s %s",
			cli.WarningSign(),
			cli.Style(fmt.Sprintf("%s\t", a.ID()), cli.Dim),
			cli.Style("missing API key, requests will be refused", cli.Yellow),
		), zap.String("env", a.Credential().Env))
	}

	log.Info("Providers ready",
		zap.Int("registered", len(registry.Adapters())),
		zap.Int("configured", configured),
		zap.String("fallback", registry.Fallback().ID()))

	return registry, nil
}
