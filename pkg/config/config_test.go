package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullYAML = `
log_level: DEBUG
api:
  base_url: https://api.tuvibe.test
  upload_root: /media/
  timeout: 4s
  rate_limit: 2.5
  burst: 3
server:
  addr: ":9000"
  base_path: /console
screens:
  page_size: 25
  carousel_period: 1500ms
session:
  path: /tmp/tuvibe/session.json
charts:
  theme: dark
  cache_ttl: 1m
`

func TestParseFullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	require.NoError(t, err)

	assert.Equal(t, "https://api.tuvibe.test", cfg.API.BaseURL)
	assert.Equal(t, "/media/", cfg.API.UploadRoot)
	assert.Equal(t, 4*time.Second, cfg.API.Timeout)
	assert.Equal(t, 2.5, cfg.API.RateLimit)
	assert.Equal(t, 3, cfg.API.Burst)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "/console", cfg.Server.BasePath)
	assert.Equal(t, 25, cfg.Screens.PageSize)
	assert.Equal(t, 1500*time.Millisecond, cfg.Screens.CarouselPeriod)
	assert.Equal(t, "dark", cfg.Charts.Theme)
	assert.Equal(t, time.Minute, cfg.Charts.CacheTTL)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseEmptyAppliesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.API.BaseURL)
	assert.Equal(t, DefaultUploadRoot, cfg.API.UploadRoot)
	assert.Equal(t, DefaultTimeout, cfg.API.Timeout)
	assert.Equal(t, DefaultPageSize, cfg.Screens.PageSize)
	assert.Equal(t, DefaultCarouselPeriod, cfg.Screens.CarouselPeriod)
	assert.Equal(t, DefaultBasePath, cfg.Server.BasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, Default(), cfg)
}

func TestParseValidationAggregatesErrors(t *testing.T) {
	_, err := Parse([]byte(`
api:
  base_url: not-a-url
server:
  base_path: admin
screens:
  page_size: -1
log_level: loud
`))
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "api.base_url must be an absolute URL")
	assert.Contains(t, msg, "server.base_path must start with /")
	assert.Contains(t, msg, "screens.page_size must be positive")
	assert.Contains(t, msg, `log_level "loud"`)
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("api: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse")
}

func TestApplyEnvOverrides(t *testing.T) {
	env := map[string]string{
		"TUVIBE_API_URL":         "https://override.test",
		"TUVIBE_PAGE_SIZE":       "50",
		"TUVIBE_CAROUSEL_PERIOD": "5s",
		"TUVIBE_TOKEN":           " secret ",
		"TUVIBE_RATE_LIMIT":      "0.5",
	}
	cfg, err := decode([]byte(fullYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.applyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}))
	cfg.applyDefaults()
	require.NoError(t, cfg.validate())

	assert.Equal(t, "https://override.test", cfg.API.BaseURL)
	assert.Equal(t, 50, cfg.Screens.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Screens.CarouselPeriod)
	assert.Equal(t, "secret", cfg.Session.Token)
	assert.Equal(t, 0.5, cfg.API.RateLimit)
	assert.Equal(t, "/media/", cfg.API.UploadRoot)
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	cfg := &Config{}
	err := cfg.applyEnv(func(key string) (string, bool) {
		switch key {
		case "TUVIBE_PAGE_SIZE":
			return "ten", true
		case "TUVIBE_API_TIMEOUT":
			return "soon", true
		}
		return "", false
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TUVIBE_PAGE_SIZE must be an integer")
	assert.Contains(t, err.Error(), "TUVIBE_API_TIMEOUT must be a duration")
}

func TestLoadReadsFileAndToleratesMissingPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tuvibe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fullYAML), 0o600))
	t.Setenv("TUVIBE_ADDR", ":7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 25, cfg.Screens.PageSize)

	cfg, err = Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, cfg.Screens.PageSize)
}
