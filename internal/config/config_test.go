package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("server:\n  port: 8080\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"duckduckgo", "bing"}, cfg.Search.DefaultEngines)
	assert.Equal(t, 10, cfg.Snippet.ContextWidth)
	assert.Equal(t, 3, cfg.Snippet.MaxMatches)
	assert.InDelta(t, 0.05, cfg.Snippet.ScoreEpsilon, 1e-9)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout())
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestParseFixesInvalidValues(t *testing.T) {
	data := []byte(`
server:
  port: 70000
search:
  default_engines: [yahoo, google]
  allowed_engines: [google, bogus, bing_api]
fetch:
  concurrency: -1
snippet:
  score_epsilon: 2
proxy:
  enabled: true
  url: ""
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig.Server.Port, cfg.Server.Port)
	assert.Equal(t, []string{"google", "bing_api"}, cfg.Search.AllowedEngines)
	assert.Equal(t, []string{"google"}, cfg.Search.DefaultEngines)
	assert.Equal(t, DefaultConfig.Fetch.Concurrency, cfg.Fetch.Concurrency)
	assert.InDelta(t, 0.05, cfg.Snippet.ScoreEpsilon, 1e-9)
	assert.Equal(t, DefaultConfig.Proxy.URL, cfg.ProxyURL())
	assert.True(t, cfg.IsEngineAllowed("google"))
	assert.False(t, cfg.IsEngineAllowed("duckduckgo"))
}

func TestDefaultEngineOutsideAllowList(t *testing.T) {
	cfg, err := Parse([]byte("search:\n  allowed_engines: [bing]\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"bing"}, cfg.Search.DefaultEngines)
}

func TestProviderCredentials(t *testing.T) {
	cfg, err := Parse([]byte("providers:\n  google:\n    key: k\n  bing:\n    key: b\n"))
	require.NoError(t, err)

	assert.False(t, cfg.HasGoogleAPI(), "cx is required too")
	assert.True(t, cfg.HasBingAPI())
	assert.Empty(t, cfg.ProxyURL())
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("server: ["))
	require.Error(t, err)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch:\n  use_browser: true\n"), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Fetch.UseBrowser)

	_, err = LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadUsesConfigFileEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)

	cfg := Load()
	assert.Equal(t, 9999, cfg.Server.Port)
}

func TestDefaultIsIndependentCopy(t *testing.T) {
	cfg := Default()
	cfg.Search.DefaultEngines[0] = "google"
	assert.Equal(t, "duckduckgo", DefaultConfig.Search.DefaultEngines[0])
}
