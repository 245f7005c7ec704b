package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("TIKA_ENABLED", "true")
	t.Setenv("TIKA_CONTENT_TYPES", "application/pdf, application/msword")
	t.Setenv("BLACKLIST_CONTENT_TYPES", "text/html")
	t.Setenv("WHITELIST_RELOAD_SECS", "60")

	cfg := Load()

	assert.True(t, cfg.Enrich.TikaEnabled)
	assert.Equal(t, []string{"application/pdf", "application/msword"}, cfg.Enrich.TikaContentTypes)
	assert.Equal(t, []string{"text/html"}, cfg.Filter.BlacklistContentTypes)
	assert.Equal(t, time.Minute, cfg.Whitelist.ReloadInterval())
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.False(t, cfg.Enrich.ReputationEnabled)
	assert.Equal(t, "http://localhost:9998", cfg.Enrich.TikaEndpoint)
	assert.Empty(t, cfg.Filter.BlacklistContentTypes)
	assert.Equal(t, 300, cfg.Whitelist.ReloadIntervalSecs)
}

func TestLoadWhitelistEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "whitelists.yaml")
	content := `
whitelists:
  alexa:
    path: /etc/mailtriage/alexa.yaml
  temporary:
    path: /etc/mailtriage/temp.yaml
    expiry: 2026-06-28T10:30:00Z
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	entries, err := LoadWhitelistEntries(path)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byKey := map[string]int{}
	for i, e := range entries {
		byKey[e.SourceKey] = i
	}

	alexa := entries[byKey["alexa"]]
	assert.Equal(t, "/etc/mailtriage/alexa.yaml", alexa.Path)
	assert.Nil(t, alexa.Expiry)

	temp := entries[byKey["temporary"]]
	require.NotNil(t, temp.Expiry)
	assert.Equal(t, time.Date(2026, 6, 28, 10, 30, 0, 0, time.UTC), *temp.Expiry)
}

func TestLoadWhitelistEntriesBadExpiry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "whitelists.yaml")
	content := "whitelists:\n  bad:\n    path: /tmp/x.yaml\n    expiry: not-a-date\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	_, err := LoadWhitelistEntries(path)

	assert.Error(t, err)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_ENV_VAR", "value")
	assert.Equal(t, "value", getEnv("TEST_ENV_VAR", "default"))
	assert.Equal(t, "default", getEnv("TEST_ENV_MISSING", "default"))

	t.Setenv("TEST_ENV_INT", "42")
	assert.Equal(t, 42, getEnvInt("TEST_ENV_INT", 1))
	assert.Equal(t, 1, getEnvInt("TEST_ENV_MISSING", 1))

	t.Setenv("TEST_ENV_LIST", "a, b ,,c")
	assert.Equal(t, []string{"a", "b", "c"}, getEnvList("TEST_ENV_LIST", ""))
}
