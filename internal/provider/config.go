package provider

import (
	"os"
	"strings"
	"time"
)

// Environment variables read by ConfigFromEnv and CredentialFromEnv.
const (
	EnvAPIKey      = "OPENAI_API_KEY"
	EnvAccessToken = "OPENAI_ACCESS_TOKEN"
	EnvModel       = "OPENAI_MODEL"
	EnvBaseURL     = "OPENAI_BASE_URL"
)

const (
	DefaultModel   = "gpt-4o-mini"
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultTimeout = 60 * time.Second
)

// Config holds what the client needs to reach an OpenAI-compatible chat completions API.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// CredentialFromEnv returns the first non-empty credential among
// OPENAI_API_KEY and OPENAI_ACCESS_TOKEN.
func CredentialFromEnv() string {
	if v := os.Getenv(EnvAPIKey); v != "" {
		return v
	}
	return os.Getenv(EnvAccessToken)
}

// HasCredential reports whether a credential is currently set in the environment.
func HasCredential() bool { return CredentialFromEnv() != "" }

// ConfigFromEnv builds a Config from the process environment, applying defaults.
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey:  CredentialFromEnv(),
		BaseURL: os.Getenv(EnvBaseURL),
		Model:   os.Getenv(EnvModel),
	}
	return cfg.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
