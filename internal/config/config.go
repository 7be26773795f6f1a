package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultUpdateRepo is the GitHub repository polled for newer releases.
const DefaultUpdateRepo = "nulzo/llm-relay"

type Config struct {
	Server    ServerConfig     `mapstructure:"server"`
	Log       LogConfig        `mapstructure:"log"`
	Tracing   TracingConfig    `mapstructure:"tracing"`
	Redis     RedisConfig      `mapstructure:"redis"`
	Database  DatabaseConfig   `mapstructure:"database"`
	Status    StatusConfig     `mapstructure:"status"`
	Update    UpdateConfig     `mapstructure:"update"`
	Providers []ProviderConfig `mapstructure:"providers" validate:"dive"`
}

type ServerConfig struct {
	Port string `mapstructure:"port" validate:"required"`
	Env  string `mapstructure:"env"`

	// UpstreamTimeout bounds the single outbound provider call.
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout" validate:"gt=0"`

	// FallbackProvider is used for unknown or empty provider ids.
	FallbackProvider string `mapstructure:"fallback_provider" validate:"required"`

	// DebugEnabled exposes masked credential previews on /debug.
	DebugEnabled bool `mapstructure:"debug_enabled"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=json console"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Enabled  bool   `mapstructure:"enabled"`
}

type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type StatusConfig struct {
	LiveProbe        bool          `mapstructure:"live_probe"`
	ProbeTimeout     time.Duration `mapstructure:"probe_timeout" validate:"gt=0"`
	ProbeConcurrency int           `mapstructure:"probe_concurrency" validate:"gt=0"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
}

type UpdateConfig struct {
	Check bool   `mapstructure:"check"`
	Repo  string `mapstructure:"repo"`
}

// ProviderConfig describes one entry of the provider table.
type ProviderConfig struct {
	ID      string `mapstructure:"id" validate:"required"`
	Type    string `mapstructure:"type" validate:"required"`
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`

	// APIKeyEnv names the environment variable holding the credential; empty means keyless.
	APIKeyEnv string `mapstructure:"api_key_env"`
	// APIKeyEnvAliases are consulted, in order, when APIKeyEnv is unset.
	APIKeyEnvAliases []string `mapstructure:"api_key_env_aliases"`
	// KeyOptional marks credentials that are sent when present but never required.
	KeyOptional bool `mapstructure:"key_optional"`

	Config  map[string]string `mapstructure:"config"`
	Enabled bool              `mapstructure:"enabled"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	v := viper.New()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if len(cfg.Providers) == 0 {
		cfg.Providers = DefaultProviders()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.upstream_timeout", 30*time.Second)
	v.SetDefault("server.fallback_provider", "mock")
	v.SetDefault("server.debug_enabled", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 14)

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "llm-relay")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("database.enabled", true)
	v.SetDefault("database.path", "relay.db")

	v.SetDefault("status.live_probe", false)
	v.SetDefault("status.probe_timeout", 3*time.Second)
	v.SetDefault("status.probe_concurrency", 4)
	v.SetDefault("status.cache_ttl", 30*time.Second)

	v.SetDefault("update.check", false)
	v.SetDefault("update.repo", DefaultUpdateRepo)
}

// Validate checks struct constraints and cross-entry rules of the provider table.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	seen := make(map[string]bool, len(c.Providers))
	fallbackFound := false
	for _, p := range c.Providers {
		if seen[p.ID] {
			return fmt.Errorf("invalid configuration: duplicate provider id %q", p.ID)
		}
		seen[p.ID] = true
		if p.ID == c.Server.FallbackProvider && p.Enabled {
			fallbackFound = true
		}
	}

	if !fallbackFound {
		return fmt.Errorf("invalid configuration: fallback provider %q is not an enabled provider", c.Server.FallbackProvider)
	}

	return nil
}
