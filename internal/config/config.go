package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"tetherworker/internal/provider"
)

// DefaultEnvFile is loaded when present; a missing default file is not an error.
const DefaultEnvFile = ".env"

// Defaults returns the built-in configuration. The worker binds all interfaces on port 6000.
func Defaults() Config {
	return Config{
		Addr:             "0.0.0.0:6000",
		LogLevel:         "info",
		LogFormat:        "json",
		MaxBodyBytes:     1 << 20,
		HealthIntervalMS: 100,
		CORSOrigins:      []string{"*"},
		EnvFile:          DefaultEnvFile,
	}
}

// Merge returns base with every set field of over copied on top.
func Merge(base, over Config) Config {
	if over.Addr != "" {
		base.Addr = over.Addr
	}
	if over.LogLevel != "" {
		base.LogLevel = over.LogLevel
	}
	if over.LogFormat != "" {
		base.LogFormat = over.LogFormat
	}
	if over.MaxBodyBytes > 0 {
		base.MaxBodyBytes = over.MaxBodyBytes
	}
	if over.HealthIntervalMS > 0 {
		base.HealthIntervalMS = over.HealthIntervalMS
	}
	if over.CORSEnabled {
		base.CORSEnabled = true
	}
	if len(over.CORSOrigins) > 0 {
		base.CORSOrigins = append([]string(nil), over.CORSOrigins...)
	}
	if over.Swagger {
		base.Swagger = true
	}
	if over.EnvFile != "" {
		base.EnvFile = over.EnvFile
	}
	if over.ProviderModel != "" {
		base.ProviderModel = over.ProviderModel
	}
	if over.ProviderBaseURL != "" {
		base.ProviderBaseURL = over.ProviderBaseURL
	}
	if over.ProviderTimeoutSeconds > 0 {
		base.ProviderTimeoutSeconds = over.ProviderTimeoutSeconds
	}
	return base
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing DefaultEnvFile is ignored.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	p, err := ExpandHome(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) && path == DefaultEnvFile {
		return nil
	}
	if err := godotenv.Load(p); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg Config) Config {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = "0.0.0.0:" + v
	}
	cfg.Addr = envStr("TETHER_ADDR", cfg.Addr)
	cfg.LogLevel = envStr("TETHER_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envStr("TETHER_LOG_FORMAT", cfg.LogFormat)
	cfg.MaxBodyBytes = int64(envInt("TETHER_MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	cfg.HealthIntervalMS = envInt("TETHER_HEALTH_INTERVAL_MS", cfg.HealthIntervalMS)
	cfg.CORSEnabled = envBool("TETHER_CORS", cfg.CORSEnabled)
	if v := os.Getenv("TETHER_CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = SplitCSV(v)
	}
	cfg.Swagger = envBool("TETHER_SWAGGER", cfg.Swagger)
	cfg.ProviderModel = envStr(provider.EnvModel, cfg.ProviderModel)
	cfg.ProviderBaseURL = envStr(provider.EnvBaseURL, cfg.ProviderBaseURL)
	cfg.ProviderTimeoutSeconds = envInt("TETHER_PROVIDER_TIMEOUT_SECONDS", cfg.ProviderTimeoutSeconds)
	return cfg
}

// Provider returns the provider client configuration. The credential is always
// taken from the environment, never from a config file.
func (c Config) Provider() provider.Config {
	return provider.Config{
		APIKey:  provider.CredentialFromEnv(),
		BaseURL: c.ProviderBaseURL,
		Model:   c.ProviderModel,
		Timeout: time.Duration(c.ProviderTimeoutSeconds) * time.Second,
	}
}

// HealthInterval is the CPU sampling interval.
func (c Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalMS) * time.Millisecond
}

// SplitCSV splits a comma separated list, dropping blanks.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	s := strings.ToLower(v)
	return s == "1" || s == "true" || s == "yes"
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
