package common

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration. Both remote services are
// configured independently; credentials are required and validated eagerly at
// startup so a misconfigured process never reaches the serving loop.
type Config struct {
	Confluence CredentialConfig `toml:"confluence"`
	Jira       CredentialConfig `toml:"jira"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Logging    LoggingConfig    `toml:"logging"`
}

// CredentialConfig holds base URL and API-token credentials for one remote service
type CredentialConfig struct {
	URL      string `toml:"url" validate:"required,url"`
	Username string `toml:"username" validate:"required"`
	APIToken string `toml:"api_token" validate:"required"`
}

// CatalogConfig controls the Jira custom-field catalog
type CatalogConfig struct {
	// Optional cron schedule for re-discovering custom fields. Empty disables
	// refresh; the catalog is then built once at startup.
	RefreshSchedule string `toml:"refresh_schedule"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "console", "file"
}

// DefaultConfig returns configuration defaults before file/env overlays.
// Console logging defaults to warn so MCP stdio framing stays clean.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "warn",
			Output: []string{"console"},
		},
	}
}

// LoadConfig builds configuration in priority order: defaults, then the TOML
// file at path (optional, skipped when path is empty or missing), then
// environment variables. The result is validated before returning.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func applyEnvOverrides(config *Config) {
	overlayCredentials(&config.Confluence, "CONFLUENCE")
	overlayCredentials(&config.Jira, "JIRA")

	if v := os.Getenv("ATLASSIAN_MCP_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("ATLASSIAN_MCP_FIELD_REFRESH"); v != "" {
		config.Catalog.RefreshSchedule = v
	}
}

func overlayCredentials(creds *CredentialConfig, prefix string) {
	if v := os.Getenv(prefix + "_URL"); v != "" {
		creds.URL = v
	}
	if v := os.Getenv(prefix + "_USERNAME"); v != "" {
		creds.Username = v
	}
	if v := os.Getenv(prefix + "_API_TOKEN"); v != "" {
		creds.APIToken = v
	}
}

// Validate checks required credentials and the optional refresh schedule.
// Returns an error listing the first violation; callers treat any error here
// as fatal (startup-only ConfigurationError).
func (c *Config) Validate() error {
	validate := validator.New()

	if err := validate.Struct(&c.Confluence); err != nil {
		return fmt.Errorf("invalid confluence configuration (set CONFLUENCE_URL, CONFLUENCE_USERNAME, CONFLUENCE_API_TOKEN): %w", err)
	}
	if err := validate.Struct(&c.Jira); err != nil {
		return fmt.Errorf("invalid jira configuration (set JIRA_URL, JIRA_USERNAME, JIRA_API_TOKEN): %w", err)
	}

	if c.Catalog.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(c.Catalog.RefreshSchedule); err != nil {
			return fmt.Errorf("invalid catalog.refresh_schedule %q: %w", c.Catalog.RefreshSchedule, err)
		}
	}

	return nil
}
