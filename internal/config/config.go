// Package config provides configuration loading and validation for the CV builder.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CV_PORT or
// CV_RATE_LIMIT_EXPORT_LIMIT.
const EnvPrefix = "CV"

// Config is the runtime configuration of the server and the CLI.
// Values come from defaults, then an optional config file, then the environment.
type Config struct {
	Port            int           `mapstructure:"port"`             // HTTP listen port
	ChromePath      string        `mapstructure:"chrome_path"`      // Chrome/Chromium executable; empty searches PATH
	ExportTimeout   time.Duration `mapstructure:"export_timeout"`   // Upper bound for one PDF export
	SessionTTL      time.Duration `mapstructure:"session_ttl"`      // Idle time after which a session is dropped
	SessionSecret   string        `mapstructure:"session_secret"`   // Cookie signing secret; random per process if empty
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"` // How often expired sessions are swept
	DefaultColor    string        `mapstructure:"default_color"`    // Preview accent color for new sessions
	DefaultFont     string        `mapstructure:"default_font"`     // Preview font family for new sessions
	Verbose         bool          `mapstructure:"verbose"`          // Print detailed debug information

	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds request rates per client. Export starts a browser
// render, so it has its own stricter limit.
type RateLimitConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	DefaultLimit    int           `mapstructure:"default_limit"`
	DefaultWindow   time.Duration `mapstructure:"default_window"`
	ExportLimit     int           `mapstructure:"export_limit"`
	ExportWindow    time.Duration `mapstructure:"export_window"`
	ExportBurst     int           `mapstructure:"export_burst"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Whitelist       []string      `mapstructure:"whitelist"`
	Blacklist       []string      `mapstructure:"blacklist"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	style := types.DefaultStyle()
	return Config{
		Port:            8080,
		ExportTimeout:   60 * time.Second,
		SessionTTL:      2 * time.Hour,
		CleanupInterval: 5 * time.Minute,
		DefaultColor:    style.Color,
		DefaultFont:     style.Font,
		RateLimit: RateLimitConfig{
			Enabled:         true,
			DefaultLimit:    6000,
			DefaultWindow:   time.Minute,
			ExportLimit:     30,
			ExportWindow:    time.Hour,
			ExportBurst:     3,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

// Load reads configuration from path (JSON, YAML or TOML, by extension) and
// the environment. An empty path uses defaults and the environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if !filepath.IsAbs(path) {
			abs, err := filepath.Abs(path)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve config path: %w", err)
			}
			path = abs
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var parseErr viper.ConfigParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key with viper so AutomaticEnv can override it.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("port", d.Port)
	v.SetDefault("chrome_path", d.ChromePath)
	v.SetDefault("export_timeout", d.ExportTimeout)
	v.SetDefault("session_ttl", d.SessionTTL)
	v.SetDefault("session_secret", d.SessionSecret)
	v.SetDefault("cleanup_interval", d.CleanupInterval)
	v.SetDefault("default_color", d.DefaultColor)
	v.SetDefault("default_font", d.DefaultFont)
	v.SetDefault("verbose", d.Verbose)

	v.SetDefault("rate_limit.enabled", d.RateLimit.Enabled)
	v.SetDefault("rate_limit.default_limit", d.RateLimit.DefaultLimit)
	v.SetDefault("rate_limit.default_window", d.RateLimit.DefaultWindow)
	v.SetDefault("rate_limit.export_limit", d.RateLimit.ExportLimit)
	v.SetDefault("rate_limit.export_window", d.RateLimit.ExportWindow)
	v.SetDefault("rate_limit.export_burst", d.RateLimit.ExportBurst)
	v.SetDefault("rate_limit.cleanup_interval", d.RateLimit.CleanupInterval)
	v.SetDefault("rate_limit.whitelist", []string{})
	v.SetDefault("rate_limit.blacklist", []string{})
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535, got %d", c.Port)
	}
	if c.ExportTimeout <= 0 {
		return fmt.Errorf("config error: 'export_timeout' must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config error: 'session_ttl' must be positive")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("config error: 'cleanup_interval' must be positive")
	}
	if !types.IsColor(c.DefaultColor) {
		return fmt.Errorf("config error: 'default_color' must be one of %v", types.Colors())
	}
	if !types.IsFont(c.DefaultFont) {
		return fmt.Errorf("config error: 'default_font' must be one of %v", types.Fonts())
	}

	rl := c.RateLimit
	if rl.Enabled {
		if rl.DefaultLimit < 0 || rl.ExportLimit < 0 || rl.ExportBurst < 0 {
			return fmt.Errorf("config error: rate limits must be non-negative")
		}
		if rl.DefaultWindow <= 0 || rl.ExportWindow <= 0 {
			return fmt.Errorf("config error: rate limit windows must be positive")
		}
	}

	return nil
}

// DefaultStyle is the preview style new sessions start with.
func (c *Config) DefaultStyle() types.Style {
	return types.Style{Color: c.DefaultColor, Font: c.DefaultFont}
}
