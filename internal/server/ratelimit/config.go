package ratelimit

import (
	"strings"
	"time"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string        // Endpoint path (a trailing "/" matches by prefix)
	Method string        // HTTP method
	Limit  int           // Maximum requests per window; 0 means unlimited
	Window time.Duration // Time window
	Burst  int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled bool
	// DefaultLimit applies to endpoints without their own config; 0 means unlimited
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	// IdleTTL is how long an unused client limiter is kept
	IdleTTL         time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// EvaluationConfig limits the evaluation endpoints to perMinute requests per client
// with the given burst. Other endpoints are unlimited. perMinute 0 disables limiting.
func EvaluationConfig(perMinute, burst int, whitelist []string) *Config {
	if perMinute <= 0 {
		return &Config{Enabled: false}
	}
	if burst <= 0 {
		burst = perMinute
	}

	endpoint := func(path string) EndpointConfig {
		return EndpointConfig{Path: path, Method: "POST", Limit: perMinute, Window: time.Minute, Burst: burst}
	}
	return &Config{
		Enabled:         true,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Whitelist:       ParseIPList(strings.Join(whitelist, ",")),
		EndpointConfigs: []EndpointConfig{
			endpoint("/evaluate"),
			endpoint("/api/evaluations"),
			endpoint("/api/evaluations/stream"),
		},
	}
}

// ParseIPList parses a comma-separated list of IP addresses into a set.
func ParseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
