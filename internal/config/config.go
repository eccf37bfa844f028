// Package config handles jwtlens configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tOgg1/jwtlens/internal/logging"
	"github.com/tOgg1/jwtlens/internal/models"
)

// Config is the root configuration structure for jwtlens.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Gateway settings for the remote analysis service
	Gateway GatewayConfig `yaml:"gateway" mapstructure:"gateway"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global settings.
type GlobalConfig struct {
	// DataDir is where jwtlens stores its data (default: ~/.local/share/jwtlens).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/jwtlens).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`
}

// GatewayConfig points the client at the analysis service.
type GatewayConfig struct {
	// URL is the API root, e.g. http://localhost:5000/api.
	URL string `yaml:"url" mapstructure:"url"`

	// Timeout bounds every gateway call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// HealthTimeout bounds the startup health check.
	HealthTimeout time.Duration `yaml:"health_timeout" mapstructure:"health_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is the log file used while the TUI owns the terminal.
	// Defaults to DataDir/jwtlens.log.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme (default, high-contrast).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// DefaultView is the view shown at startup (analysis, verify, create).
	DefaultView string `yaml:"default_view" mapstructure:"default_view"`

	// DefaultSecret pre-fills the verify and create secret inputs.
	DefaultSecret string `yaml:"default_secret" mapstructure:"default_secret"`
}

// Themes lists the accepted tui.theme values.
var Themes = []string{"default", "high-contrast"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "jwtlens"),
			ConfigDir: filepath.Join(homeDir, ".config", "jwtlens"),
		},
		Gateway: GatewayConfig{
			URL:           "http://localhost:5000/api",
			Timeout:       10 * time.Second,
			HealthTimeout: 3 * time.Second,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		TUI: TUIConfig{
			Theme:         "default",
			DefaultView:   string(models.ViewAnalysis),
			DefaultSecret: "secret",
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.Gateway.URL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("gateway.url must be an absolute http(s) URL, got %q", c.Gateway.URL)
	}

	if c.Gateway.Timeout <= 0 {
		return fmt.Errorf("gateway.timeout must be positive")
	}

	if c.Gateway.HealthTimeout <= 0 {
		return fmt.Errorf("gateway.health_timeout must be positive")
	}

	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, fatal")
	}

	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json")
	}

	if !validTheme(c.TUI.Theme) {
		return fmt.Errorf("tui.theme must be one of %s", strings.Join(Themes, ", "))
	}

	if _, ok := models.ParseView(c.TUI.DefaultView); !ok {
		return fmt.Errorf("tui.default_view must be one of analysis, verify, create")
	}

	return nil
}

func validTheme(theme string) bool {
	for _, t := range Themes {
		if t == theme {
			return true
		}
	}
	return false
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// LogFilePath returns the log file used by interactive sessions.
func (c *Config) LogFilePath() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.Global.DataDir, "jwtlens.log")
}

// StartView returns the configured startup view.
func (c *Config) StartView() models.View {
	if v, ok := models.ParseView(c.TUI.DefaultView); ok {
		return v
	}
	return models.ViewAnalysis
}
