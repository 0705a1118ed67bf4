package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/jonathan/smart-ats/internal/config"
	"github.com/jonathan/smart-ats/internal/llm"
	"github.com/jonathan/smart-ats/internal/observability"
)

// newLLMClient creates the model client; tests replace it with a fake
var newLLMClient = func(ctx context.Context, cfg config.Config) (llm.Client, error) {
	return llm.NewGeminiClient(ctx, &llm.Config{Model: cfg.GeminiModel, Temperature: cfg.GeminiTemperature}, cfg.APIKey())
}

// loadConfig reads the environment, applies a model override and validates the result
func loadConfig(model string) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if model != "" {
		cfg.GeminiModel = model
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(out io.Writer, cfg config.Config) *slog.Logger {
	return observability.NewLogger(out, observability.LoggerOptions{Level: cfg.LogLevel, Format: cfg.LogFormat})
}
