package llmclient

import (
	"fmt"
	"log/slog"
	"time"
)

// Config selects and configures the completion provider.
type Config struct {
	Provider      string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiKey     string
	GeminiModel   string
	Temperature   float32
	Timeout       time.Duration
	// RPS paces calls to the provider; zero leaves them unpaced.
	RPS float64
}

// New builds the configured provider wrapped with logging. Credentials are
// not checked here; a missing key is reported by Ready.
func New(cfg Config, logger *slog.Logger) (Completer, error) {
	var inner Completer
	switch cfg.Provider {
	case "", "openai":
		inner = NewOpenAIClient(OpenAIOptions{
			APIKey:      cfg.OpenAIKey,
			BaseURL:     cfg.OpenAIBaseURL,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	case "gemini":
		inner = NewGeminiClient(GeminiOptions{
			APIKey:      cfg.GeminiKey,
			Model:       cfg.GeminiModel,
			Temperature: cfg.Temperature,
		})
	default:
		return nil, fmt.Errorf("unsupported completion provider %q", cfg.Provider)
	}
	return Wrap(inner, WithLogging(logger), WithRateLimit(cfg.RPS, 1)), nil
}
