package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/config"
)

// LimiterExport names the limiter guarding PDF export.
const LimiterExport = "export"

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Name   string        // Limiter name used for bucket keys and metrics
	Path   string        // Endpoint path pattern (supports prefix matching)
	Method string        // HTTP method (GET, POST, etc.)
	Limit  int           // Maximum requests per window
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// limiterName falls back to method and path for unnamed endpoints.
func (e *EndpointConfig) limiterName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Method + " " + e.Path
}

// FromConfig builds the limiter configuration from the application config.
func FromConfig(rl config.RateLimitConfig) *Config {
	if !rl.Enabled {
		return &Config{
			Enabled: false,
		}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    rl.DefaultLimit,
		DefaultWindow:   rl.DefaultWindow,
		CleanupInterval: rl.CleanupInterval,
		Whitelist:       parseIPList(rl.Whitelist),
		Blacklist:       parseIPList(rl.Blacklist),
		EndpointConfigs: DefaultEndpointConfigs(rl),
	}
}

// DefaultEndpointConfigs returns the endpoint-specific configurations.
func DefaultEndpointConfigs(rl config.RateLimitConfig) []EndpointConfig {
	return []EndpointConfig{
		// Export launches a browser render (strictest limit)
		{Name: LimiterExport, Path: "/export", Method: http.MethodPost, Limit: rl.ExportLimit, Window: rl.ExportWindow, Burst: rl.ExportBurst},

		// Edits, reads and style changes share the default limit.
		// Health, metrics and the event stream are unlimited, see MatchEndpoint.
	}
}

// parseIPList turns a list of IP addresses into a set.
func parseIPList(list []string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range list {
		// Entries from a single environment variable arrive comma-separated.
		for _, part := range strings.Split(ip, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				result[part] = true
			}
		}
	}

	return result
}
