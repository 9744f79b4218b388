// Package config loads server configuration from a TOML file. Values may
// reference environment variables with ${VAR} syntax, which keeps secrets out
// of the file itself.
package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/BurntSushi/toml"
)

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Dataverse DataverseConfig `toml:"dataverse"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ServerConfig identifies the server and its HTTP listen address.
type ServerConfig struct {
	Name     string `toml:"name"`
	Version  string `toml:"version"`
	HTTPAddr string `toml:"http_addr"`
}

// DataverseConfig holds the organization URL and client-credentials secrets.
type DataverseConfig struct {
	URL          string `toml:"url"`
	TenantID     string `toml:"tenant_id"`
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// Load reads, expands, and validates a configuration file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	expanded := envPattern.ReplaceAllStringFunc(string(raw), func(match string) string {
		name := envPattern.FindStringSubmatch(match)[1]
		return os.Getenv(name)
	})

	cfg := Default()
	if _, err := toml.Decode(expanded, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration defaults applied before decoding.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "dataverse-mcp-server",
			Version:  "0.1.0",
			HTTPAddr: ":8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks that the Dataverse connection is fully specified.
func (c *Config) Validate() error {
	if c.Dataverse.URL == "" {
		return fmt.Errorf("dataverse.url is required")
	}
	if c.Dataverse.TenantID == "" {
		return fmt.Errorf("dataverse.tenant_id is required")
	}
	if c.Dataverse.ClientID == "" {
		return fmt.Errorf("dataverse.client_id is required")
	}
	if c.Dataverse.ClientSecret == "" {
		return fmt.Errorf("dataverse.client_secret is required")
	}
	return nil
}
