package api

// ChatResult is the normalized reply, whatever provider produced it.
type ChatResult struct {
	Content string `json:"content"`
}

type HealthReport struct {
	Status      string          `json:"status"`
	Timestamp   string          `json:"timestamp"`
	Environment string          `json:"environment"`
	Providers   map[string]bool `json:"providers"`
}

type ProviderStatus struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"` // "online" or "offline"
	Configured bool   `json:"configured"`
}

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// CredentialPreview is the only credential information the debug endpoint exposes.
type CredentialPreview struct {
	Configured bool    `json:"configured"`
	EnvVar     string  `json:"env_var"`
	KeyPreview *string `json:"keyPreview"`
}
