// Copyright Solomon Connect Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the main configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Tenant    TenantConfig    `yaml:"tenant"`
	WebSearch WebSearchConfig `yaml:"web_search"`
	Tools     ToolsConfig     `yaml:"tools"`
	Workato   WorkatoConfig   `yaml:"workato"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host    string        `yaml:"host"`
	Port    int           `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// UpstreamConfig contains the assistants API connection and run policy.
type UpstreamConfig struct {
	Endpoint     string        `yaml:"endpoint"`      // e.g. "https://api.openai.com/v1"
	AssistantID  string        `yaml:"assistant_id"`  // default assistant for the bridge
	APIKey       string        `yaml:"api_key"`       // dev fallback when tenant store is "static"
	PollInterval time.Duration `yaml:"poll_interval"` // default 5s
	RunTimeout   time.Duration `yaml:"run_timeout"`   // default 300s
	HTTPTimeout  time.Duration `yaml:"http_timeout"`  // per-request, default 60s
}

// TenantConfig selects the consumer-key store backend.
type TenantConfig struct {
	Store string `yaml:"store"` // "postgres", "sqlite" or "static"
	DSN   string `yaml:"dsn"`
}

// WebSearchConfig selects the web search provider for the web_search tool.
type WebSearchConfig struct {
	Provider   string `yaml:"provider"` // "tavily" or "brave"; empty disables the tool
	APIKey     string `yaml:"api_key"`
	MaxResults int    `yaml:"max_results"` // default 5
}

// ToolsConfig carries credentials for the built-in lookup tools.
type ToolsConfig struct {
	WeatherAPIKey string     `yaml:"weather_api_key"`
	Jira          JiraConfig `yaml:"jira"`
}

// JiraConfig contains Jira REST API access settings.
type JiraConfig struct {
	BaseURL  string `yaml:"base_url"` // e.g. "https://example.atlassian.net"
	Email    string `yaml:"email"`
	APIToken string `yaml:"api_token"`
}

// WorkatoConfig contains the webhook relay settings.
type WorkatoConfig struct {
	EndpointURL string `yaml:"endpoint_url"`
	APIToken    string `yaml:"api_token"`
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	return &cfg, nil
}

// Default returns default configuration
func Default() *Config {
	cfg := &Config{}
	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg
}

// applyEnvOverrides lets environment variables win over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENAI_API_ENDPOINT"); v != "" {
		cfg.Upstream.Endpoint = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Upstream.APIKey = v
	}
	if v := os.Getenv("ASSISTANT_ID"); v != "" {
		cfg.Upstream.AssistantID = v
	}
	if v := os.Getenv("TENANT_DB_DSN"); v != "" {
		cfg.Tenant.DSN = v
	}
	if v := os.Getenv("WEBSEARCH_API_KEY"); v != "" {
		cfg.WebSearch.APIKey = v
	}
	if v := os.Getenv("WEATHER_API_KEY"); v != "" {
		cfg.Tools.WeatherAPIKey = v
	}
	if v := os.Getenv("JIRA_API_TOKEN"); v != "" {
		cfg.Tools.Jira.APIToken = v
	}
	if v := os.Getenv("WORKATO_API_TOKEN"); v != "" {
		cfg.Workato.APIToken = v
	}
	if v := os.Getenv("WORKATO_ENDPOINT_URL"); v != "" {
		cfg.Workato.EndpointURL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 60 * time.Second
	}
	if cfg.Upstream.Endpoint == "" {
		cfg.Upstream.Endpoint = "https://api.openai.com/v1"
	}
	if cfg.Upstream.PollInterval == 0 {
		cfg.Upstream.PollInterval = 5 * time.Second
	}
	if cfg.Upstream.RunTimeout == 0 {
		cfg.Upstream.RunTimeout = 300 * time.Second
	}
	if cfg.Upstream.HTTPTimeout == 0 {
		cfg.Upstream.HTTPTimeout = 60 * time.Second
	}
	if cfg.Tenant.Store == "" {
		cfg.Tenant.Store = "static"
	}
	if cfg.WebSearch.MaxResults == 0 {
		cfg.WebSearch.MaxResults = 5
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
