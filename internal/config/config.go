// Package config loads the triage configuration from YAML with sensible
// defaults. The AI API key comes from the environment only and is never
// written to disk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable holding the OpenRouter API key.
const APIKeyEnv = "OPENROUTER_API_KEY"

// Config is the top-level configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Cache   CacheConfig   `yaml:"cache"`
	AI      AIConfig      `yaml:"ai"`
	Logging LoggingConfig `yaml:"logging"`

	// Framework selects default fix guidance, e.g. "react" or "vue".
	Framework string `yaml:"framework"`

	// RulesPath optionally overrides the embedded rule database.
	RulesPath string `yaml:"rules_path"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// CacheConfig configures the persistent enrichment cache.
type CacheConfig struct {
	Path    string `yaml:"path"`
	TTLDays int    `yaml:"ttl_days"`
}

// AIConfig configures the generative provider.
type AIConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Model          string `yaml:"model"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxAIIssues    int    `yaml:"max_ai_issues"`
}

// LoggingConfig configures logging output.
type LoggingConfig struct {
	Debug  bool   `yaml:"debug"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Addr: ":8008"},
		Cache: CacheConfig{
			Path:    filepath.Join(".a11y-triage", "cache.db"),
			TTLDays: 30,
		},
		AI: AIConfig{
			Enabled:        true,
			TimeoutSeconds: 30,
			MaxAIIssues:    5,
		},
		Logging: LoggingConfig{Format: "text"},
	}
}

// Load reads the config file at path, layered over the defaults. A missing
// file is not an error; the defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// APIKey returns the OpenRouter API key from the environment.
func (c *Config) APIKey() string {
	return os.Getenv(APIKeyEnv)
}

// CacheTTL returns the cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	days := c.Cache.TTLDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// AITimeout returns the provider timeout as a duration.
func (c *Config) AITimeout() time.Duration {
	seconds := c.AI.TimeoutSeconds
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}
