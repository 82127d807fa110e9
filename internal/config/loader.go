package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the worker.
// Zero values mean "unspecified"; Merge only copies set fields.
type Config struct {
	Addr                   string   `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel               string   `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat              string   `json:"log_format" yaml:"log_format" toml:"log_format"`
	MaxBodyBytes           int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	HealthIntervalMS       int      `json:"health_interval_ms" yaml:"health_interval_ms" toml:"health_interval_ms"`
	CORSEnabled            bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSOrigins            []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins"`
	Swagger                bool     `json:"swagger" yaml:"swagger" toml:"swagger"`
	EnvFile                string   `json:"env_file" yaml:"env_file" toml:"env_file"`
	ProviderModel          string   `json:"provider_model" yaml:"provider_model" toml:"provider_model"`
	ProviderBaseURL        string   `json:"provider_base_url" yaml:"provider_base_url" toml:"provider_base_url"`
	ProviderTimeoutSeconds int      `json:"provider_timeout_seconds" yaml:"provider_timeout_seconds" toml:"provider_timeout_seconds"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
