package config

// DefaultProviders is the built-in provider table used when the config file lists none.
// Order is the order /providers reports.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			ID:      "mock",
			Type:    "mock",
			Name:    "Mock AI (Free)",
			Config:  map[string]string{"rich": "true"},
			Enabled: true,
		},
		{
			ID:        "claude",
			Type:      "anthropic",
			Name:      "Claude",
			BaseURL:   "https://api.anthropic.com/v1",
			Model:     "claude-sonnet-4-20250514",
			APIKeyEnv: "ANTHROPIC_API_KEY",
			Config:    map[string]string{"version": "2023-06-01"},
			Enabled:   true,
		},
		{
			ID:               "gemini",
			Type:             "google",
			Name:             "Gemini",
			BaseURL:          "https://generativelanguage.googleapis.com/v1beta",
			Model:            "gemini-pro",
			APIKeyEnv:        "GOOGLE_API_KEY",
			APIKeyEnvAliases: []string{"GEMINI_API_KEY"},
			Enabled:          true,
		},
		{
			ID:        "groq",
			Type:      "openai",
			Name:      "Groq",
			BaseURL:   "https://api.groq.com/openai/v1",
			Model:     "llama3-8b-8192",
			APIKeyEnv: "GROQ_API_KEY",
			Enabled:   true,
		},
		{
			ID:        "xai",
			Type:      "openai",
			Name:      "xAI",
			BaseURL:   "https://api.x.ai/v1",
			Model:     "grok-beta",
			APIKeyEnv: "XAI_API_KEY",
			Enabled:   true,
		},
		{
			ID:        "zai",
			Type:      "openai",
			Name:      "Z.AI",
			BaseURL:   "https://api.z.ai/v1",
			Model:     "zai-chat",
			APIKeyEnv: "ZAI_API_KEY",
			Enabled:   true,
		},
		{
			ID:          "huggingface",
			Type:        "huggingface",
			Name:        "Hugging Face",
			BaseURL:     "https://api-inference.huggingface.co/models",
			Model:       "microsoft/DialoGPT-medium",
			APIKeyEnv:   "HUGGINGFACE_API_KEY",
			KeyOptional: true,
			Enabled:     true,
		},
		{
			ID:      "ollama",
			Type:    "ollama",
			Name:    "Ollama",
			BaseURL: "http://localhost:11434",
			Model:   "llama3",
			Enabled: true,
		},
		{
			ID:      "local",
			Type:    "mock",
			Name:    "Local Assistant",
			Config:  map[string]string{"rich": "true"},
			Enabled: true,
		},
		{
			ID:      "free",
			Type:    "mock",
			Name:    "Free API",
			Config:  map[string]string{"rich": "false"},
			Enabled: true,
		},
	}
}
