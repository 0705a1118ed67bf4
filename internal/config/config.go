// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// ErrMissingAPIKey is returned by Validate when neither API key variable is set
var ErrMissingAPIKey = errors.New("GOOGLE_API_KEY (or GEMINI_API_KEY) is required")

// Config holds the application configuration parsed from environment variables.
type Config struct {
	GoogleAPIKey      string  `env:"GOOGLE_API_KEY"`
	GeminiAPIKey      string  `env:"GEMINI_API_KEY"`
	GeminiModel       string  `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	GeminiTemperature float32 `env:"GEMINI_TEMPERATURE" envDefault:"0.1"`

	Port        int    `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	MaxUploadMB int64  `env:"MAX_UPLOAD_MB" envDefault:"10"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// RateLimitPerMin is the sustained request rate per client; 0 disables limiting
	RateLimitPerMin  int    `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	RateLimitBurst   int    `env:"RATE_LIMIT_BURST" envDefault:"5"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	MetricsEnabled   bool   `env:"METRICS_ENABLED" envDefault:"true"`

	// RateLimitWhitelist lists client IPs that are never limited
	RateLimitWhitelist []string `env:"RATE_LIMIT_WHITELIST" envSeparator:","`

	FetchTimeout      time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	EvaluationTimeout time.Duration `env:"EVALUATION_TIMEOUT" envDefault:"120s"`

	// FetchBrowser renders job postings in headless Chrome: off, auto or always
	FetchBrowser string `env:"FETCH_BROWSER" envDefault:"off"`

	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"180s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

// Load parses the process environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// APIKey returns GOOGLE_API_KEY, falling back to GEMINI_API_KEY.
func (c Config) APIKey() string {
	if key := strings.TrimSpace(c.GoogleAPIKey); key != "" {
		return key
	}
	return strings.TrimSpace(c.GeminiAPIKey)
}

// MaxUploadBytes returns the upload cap in bytes
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// HistoryEnabled reports whether evaluations are persisted
func (c Config) HistoryEnabled() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate checks that the configuration has valid values.
func (c Config) Validate() error {
	if c.APIKey() == "" {
		return ErrMissingAPIKey
	}
	if strings.TrimSpace(c.GeminiModel) == "" {
		return fmt.Errorf("config error: GEMINI_MODEL must not be empty")
	}
	if c.GeminiTemperature < 0 || c.GeminiTemperature > 2 {
		return fmt.Errorf("config error: GEMINI_TEMPERATURE must be between 0 and 2")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: PORT must be between 1 and 65535")
	}
	if c.MaxUploadMB < 1 {
		return fmt.Errorf("config error: MAX_UPLOAD_MB must be positive")
	}
	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("config error: RATE_LIMIT_PER_MIN must be non-negative")
	}
	if c.RateLimitPerMin > 0 && c.RateLimitBurst < 1 {
		return fmt.Errorf("config error: RATE_LIMIT_BURST must be positive when rate limiting is enabled")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config error: LOG_FORMAT must be text or json")
	}
	if !validBrowserMode(c.FetchBrowser) {
		return fmt.Errorf("config error: FETCH_BROWSER must be off, auto or always")
	}
	return nil
}

func validBrowserMode(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "off", "auto", "always":
		return true
	}
	return false
}

// EvaluateDefaults holds defaults for the evaluate command that can be loaded from a JSON file.
// All fields are optional; CLI flags win over file values.
type EvaluateDefaults struct {
	JD          string `json:"jd,omitempty"`          // Path to job description text file
	JDURL       string `json:"jd_url,omitempty"`      // URL to fetch job description from
	Model       string `json:"model,omitempty"`       // Gemini model override
	Concurrency int    `json:"concurrency,omitempty"` // Parallel evaluations for multiple résumés
	JSON        bool   `json:"json,omitempty"`        // Emit JSON instead of the terminal report
	Browser     string `json:"browser,omitempty"`     // Headless rendering for jd_url: off, auto or always
}

// LoadEvaluateDefaults loads evaluate command defaults from a JSON file.
func LoadEvaluateDefaults(path string) (*EvaluateDefaults, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var d EvaluateDefaults
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	return &d, nil
}

// Validate checks the file values.
func (d *EvaluateDefaults) Validate() error {
	if d.JD != "" && d.JDURL != "" {
		return fmt.Errorf("config error: 'jd' and 'jd_url' are mutually exclusive")
	}
	if d.Concurrency < 0 {
		return fmt.Errorf("config error: 'concurrency' must be non-negative")
	}
	if !validBrowserMode(d.Browser) {
		return fmt.Errorf("config error: 'browser' must be off, auto or always")
	}
	return nil
}
