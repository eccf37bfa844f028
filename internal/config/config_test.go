package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/jwtlens/internal/models"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("API_URL", "")
	t.Setenv("JWTLENS_GATEWAY_URL", "")
	return home
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	require.Equal(t, "http://localhost:5000/api", cfg.Gateway.URL)
	require.Equal(t, 10*time.Second, cfg.Gateway.Timeout)
	require.Equal(t, "secret", cfg.TUI.DefaultSecret)
	require.Equal(t, models.ViewAnalysis, cfg.StartView())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "relative url",
			mutate: func(c *Config) { c.Gateway.URL = "localhost:5000" },
			errMsg: "gateway.url",
		},
		{
			name:   "ftp url",
			mutate: func(c *Config) { c.Gateway.URL = "ftp://example.test/api" },
			errMsg: "gateway.url",
		},
		{
			name:   "zero timeout",
			mutate: func(c *Config) { c.Gateway.Timeout = 0 },
			errMsg: "gateway.timeout",
		},
		{
			name:   "zero health timeout",
			mutate: func(c *Config) { c.Gateway.HealthTimeout = 0 },
			errMsg: "gateway.health_timeout",
		},
		{
			name:   "unknown log level",
			mutate: func(c *Config) { c.Logging.Level = "chatty" },
			errMsg: "logging.level",
		},
		{
			name:   "unknown log format",
			mutate: func(c *Config) { c.Logging.Format = "xml" },
			errMsg: "logging.format",
		},
		{
			name:   "unknown theme",
			mutate: func(c *Config) { c.TUI.Theme = "neon" },
			errMsg: "tui.theme",
		},
		{
			name:   "unknown view",
			mutate: func(c *Config) { c.TUI.DefaultView = "dashboard" },
			errMsg: "tui.default_view",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
gateway:
  url: http://analysis.internal:8080/api
  timeout: 4s
tui:
  theme: high-contrast
  default_view: verify
logging:
  file: ~/logs/jwtlens.log
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := loadFile(path)
	require.NoError(t, err)
	require.Equal(t, "http://analysis.internal:8080/api", cfg.Gateway.URL)
	require.Equal(t, 4*time.Second, cfg.Gateway.Timeout)
	require.Equal(t, 3*time.Second, cfg.Gateway.HealthTimeout)
	require.Equal(t, "high-contrast", cfg.TUI.Theme)
	require.Equal(t, models.ViewVerify, cfg.StartView())

	home, _ := os.UserHomeDir()
	require.Equal(t, filepath.Join(home, "logs", "jwtlens.log"), cfg.LogFilePath())
}

func TestLoadMissingFileFails(t *testing.T) {
	isolateEnv(t)

	_, err := loadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tui:\n  theme: neon\n"), 0o600))

	_, err := loadFile(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "tui.theme")
}

func TestEnvOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWTLENS_GATEWAY_URL", "https://jwt.example.test/api")
	t.Setenv("JWTLENS_LOGGING_LEVEL", "debug")
	t.Setenv("JWTLENS_TUI_DEFAULT_SECRET", "hunter2")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.Equal(t, "https://jwt.example.test/api", cfg.Gateway.URL)
	require.Equal(t, "debug", cfg.Logging.Level)
	require.Equal(t, "hunter2", cfg.TUI.DefaultSecret)
}

func TestLegacyAPIURLEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("API_URL", "http://legacy.example.test:5000/api")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.Equal(t, "http://legacy.example.test:5000/api", cfg.Gateway.URL)
}

func TestLoaderSetTakesPrecedence(t *testing.T) {
	isolateEnv(t)
	t.Setenv("JWTLENS_GATEWAY_URL", "https://from-env.example.test/api")

	loader := NewLoader()
	loader.Set("gateway.url", "https://from-flag.example.test/api")
	cfg, err := loader.Load()
	require.NoError(t, err)
	require.Equal(t, "https://from-flag.example.test/api", cfg.Gateway.URL)
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Global.DataDir = filepath.Join(root, "data")
	cfg.Global.ConfigDir = filepath.Join(root, "config")

	require.NoError(t, cfg.EnsureDirectories())
	require.DirExists(t, cfg.Global.DataDir)
	require.DirExists(t, cfg.Global.ConfigDir)
	require.Equal(t, filepath.Join(root, "data", "jwtlens.log"), cfg.LogFilePath())
}

func loadFile(path string) (*Config, error) {
	loader := NewLoader()
	loader.SetConfigFile(path)
	return loader.Load()
}
