package llm

import (
	"context"
	"fmt"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry, rate-limit, and logging
// middleware.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → timeout → retry → rate limit →
	// logging → base. Retry sits inside the timeout so the deadline
	// covers all attempts; each attempt takes a fresh rate-limit slot
	// and gets its own log line.
	wrapped := WithLogging(base)
	if cfg.RateLimitRPM > 0 {
		wrapped = WithRateLimit(wrapped, cfg.RateLimitRPM)
	}
	return WithTimeout(WithRetry(wrapped, cfg.Retry), cfg.Timeout), nil
}
