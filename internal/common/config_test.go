package common

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("CONFLUENCE_URL", "https://example.atlassian.net")
	t.Setenv("CONFLUENCE_USERNAME", "bot@example.com")
	t.Setenv("CONFLUENCE_API_TOKEN", "confluence-token")
	t.Setenv("JIRA_URL", "https://example.atlassian.net")
	t.Setenv("JIRA_USERNAME", "bot@example.com")
	t.Setenv("JIRA_API_TOKEN", "jira-token")
}

func TestLoadConfigFromEnv(t *testing.T) {
	setTestCredentials(t)

	config, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://example.atlassian.net", config.Confluence.URL)
	assert.Equal(t, "jira-token", config.Jira.APIToken)
	assert.Equal(t, "warn", config.Logging.Level, "console logging defaults to warn")
}

func TestLoadConfigMissingCredentials(t *testing.T) {
	setTestCredentials(t)
	t.Setenv("JIRA_API_TOKEN", "")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jira")
}

func TestLoadConfigFileWithEnvOverride(t *testing.T) {
	setTestCredentials(t)
	t.Setenv("ATLASSIAN_MCP_LOG_LEVEL", "debug")

	path := filepath.Join(t.TempDir(), "atlassian-mcp.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[logging]
level = "info"
output = ["console", "file"]

[catalog]
refresh_schedule = "0 */6 * * *"
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Logging.Level, "environment wins over the file")
	assert.Equal(t, []string{"console", "file"}, config.Logging.Output)
	assert.Equal(t, "0 */6 * * *", config.Catalog.RefreshSchedule)
}

func TestLoadConfigRejectsBadSchedule(t *testing.T) {
	setTestCredentials(t)
	t.Setenv("ATLASSIAN_MCP_FIELD_REFRESH", "every day at noon")

	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh_schedule")
}

func TestLoadConfigMissingFileIsSkipped(t *testing.T) {
	setTestCredentials(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.NoError(t, err)
}
