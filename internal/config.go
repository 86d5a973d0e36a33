package internal

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultEnvFile is loaded at startup when present
const DefaultEnvFile = ".env"

// Completion providers
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

var defaultModels = map[string]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

// Config holds the settings read from the environment
type Config struct {
	Provider         string  `env:"FLOW_ANALYZER_PROVIDER" env-default:"openai" env-description:"Completion provider (openai or anthropic)"`
	OpenAIAPIKey     string  `env:"OPENAI_API_KEY" env-description:"API key for the completion service"`
	OpenAIBaseURL    string  `env:"OPENAI_BASE_URL" env-description:"Override for OpenAI-compatible endpoints"`
	AnthropicAPIKey  string  `env:"ANTHROPIC_API_KEY" env-description:"API key when the provider is anthropic"`
	AnthropicBaseURL string  `env:"ANTHROPIC_BASE_URL" env-description:"Override for the Anthropic endpoint"`
	Model            string  `env:"FLOW_ANALYZER_MODEL" env-description:"Completion model (defaults per provider)"`
	Temperature      float64 `env:"FLOW_ANALYZER_TEMPERATURE" env-default:"0.3" env-description:"Sampling temperature"`
	CacheDir         string  `env:"FLOW_ANALYZER_CACHE_DIR" env-default:".cache" env-description:"Summary cache directory"`
	Retries          int     `env:"FLOW_ANALYZER_RETRIES" env-default:"0" env-description:"Extra attempts for failed completions"`
	LogFile          string  `env:"FLOW_ANALYZER_LOG_FILE" env-description:"Also write logs to this rotating file"`
}

// LoadConfig loads envFile (if it exists) into the process environment and
// then reads Config from the environment. Variables already set in the
// environment take precedence over the file.
func LoadConfig(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}

	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		LogDebug("Loaded environment from %s", envFile)
	} else if errors.Is(err, os.ErrNotExist) {
		LogDebug("No environment file at %s", envFile)
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", envFile, err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate normalizes the provider name and rejects unknown providers. It
// must run again after command-line overrides are applied.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOpenAI
	}
	if _, ok := defaultModels[c.Provider]; !ok {
		return &ConfigurationError{
			Key:   "FLOW_ANALYZER_PROVIDER",
			Value: c.Provider,
			Hint:  "Use openai or anthropic.",
		}
	}
	return nil
}

// ProviderName returns the configured provider, openai when unset
func (c *Config) ProviderName() string {
	if c.Provider == "" {
		return ProviderOpenAI
	}
	return c.Provider
}

// ModelName returns the configured model or the provider's default
func (c *Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.ProviderName()]
}

// APIKey returns the credential for the configured provider
func (c *Config) APIKey() string {
	if c.ProviderName() == ProviderAnthropic {
		return c.AnthropicAPIKey
	}
	return c.OpenAIAPIKey
}

// RequireCredential fails when the configured provider has no API key
func (c *Config) RequireCredential() error {
	if strings.TrimSpace(c.APIKey()) != "" {
		return nil
	}
	key := "OPENAI_API_KEY"
	if c.ProviderName() == ProviderAnthropic {
		key = "ANTHROPIC_API_KEY"
	}
	return &ConfigurationError{
		Key:  key,
		Hint: "Create a .env file with your API key.",
	}
}

// ConfigUsage describes the supported environment variables
func ConfigUsage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}
