package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "marketscan"}
	RegisterFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "marketscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, EngineBrowser, cfg.Engine)
	assert.Equal(t, "ready", cfg.Sync)
	assert.Equal(t, 3*time.Second, cfg.NavigateWait)
	assert.Equal(t, 5*time.Second, cfg.SubmitWait)
	assert.Equal(t, time.Second, cfg.TypeWait)
	assert.Equal(t, FormatCSV, cfg.Format)
	assert.True(t, cfg.Headless)
	assert.Equal(t, DefaultSelectors(), cfg.Selectors)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
engine: static
submit_wait: 8s
selectors:
  listings:
    - "div.offer"
    - "article"
`)
	cfg, err := Load(newCmd(t, "--config", path))
	require.NoError(t, err)

	assert.Equal(t, EngineStatic, cfg.Engine)
	assert.Equal(t, 8*time.Second, cfg.SubmitWait)
	assert.Equal(t, []string{"div.offer", "article"}, cfg.Selectors.Listings)
	assert.Equal(t, DefaultSelectors().Name, cfg.Selectors.Name, "unset chains keep their defaults")
	assert.Equal(t, 3*time.Second, cfg.NavigateWait)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "format: json\nbase_url: https://file.example\n")
	t.Setenv("MARKETSCAN_BASE_URL", "https://env.example")
	t.Setenv("MARKETSCAN_HEADLESS", "false")

	cfg, err := Load(newCmd(t, "--config", path, "--base-url", "https://flag.example", "-v"))
	require.NoError(t, err)

	assert.Equal(t, "https://flag.example", cfg.BaseURL)
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.False(t, cfg.Headless)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_UnchangedFlagsDoNotOverride(t *testing.T) {
	t.Setenv("MARKETSCAN_ENGINE", "static")
	cfg, err := Load(newCmd(t))
	require.NoError(t, err)
	assert.Equal(t, EngineStatic, cfg.Engine)
}

func TestLoad_FlagDurations(t *testing.T) {
	cfg, err := Load(newCmd(t, "--timeout", "10s", "--linger", "2s", "--headed"))
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Linger)
	assert.False(t, cfg.Headless)

	_, err = Load(newCmd(t, "--timeout", "soon"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(newCmd(t, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"unknown engine", func(c *Config) { c.Engine = "firefox" }},
		{"unknown format", func(c *Config) { c.Format = "xlsx" }},
		{"unknown sync", func(c *Config) { c.Sync = "eventually" }},
		{"relative base", func(c *Config) { c.BaseURL = "/market" }},
		{"ftp base", func(c *Config) { c.BaseURL = "ftp://market.yandex.ru" }},
		{"empty chain", func(c *Config) { c.Selectors.Price = nil }},
		{"bad selector", func(c *Config) { c.Selectors.Name = []string{"h3", "[class*="} }},
		{"negative wait", func(c *Config) { c.SubmitWait = -time.Second }},
		{"negative type wait", func(c *Config) { c.TypeWait = -time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, validate(cfg))
		})
	}

	assert.NoError(t, validate(Default()))
}

func TestLoad_Headers(t *testing.T) {
	path := writeConfig(t, "headers:\n  Accept-Language: en-US\n  X-From-File: yes\n")
	cfg, err := Load(newCmd(t, "--config", path, "-H", "Accept-Language: ru-RU", "-H", "X-Trace: 1"))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Accept-Language": "ru-RU",
		"X-From-File":     "yes",
		"X-Trace":         "1",
	}, cfg.Headers)

	_, err = Load(newCmd(t, "-H", "broken"))
	assert.Error(t, err)
}
