package llm

import (
	"context"
	"fmt"

	"github.com/teachpoint/quizgen/internal/store"
)

// NewProvider builds the configured provider wrapped with event logging and
// retry middleware. eventRepo may be nil, in which case calls are not
// persisted (one-shot CLI use).
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "chat":
		base, err = NewChatClient(cfg.Chat)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Middleware order: caller → retry → logging → base, so every attempt
	// is recorded individually.
	logged := WithLogging(base, eventRepo)
	return WithRetry(logged, cfg.Retry), nil
}

// NewProviderFromEnv is NewProvider with ConfigFromEnv.
func NewProviderFromEnv(ctx context.Context, eventRepo store.EventRepo) (Provider, error) {
	return NewProvider(ctx, ConfigFromEnv(), eventRepo)
}

// Pinger is implemented by providers that can cheaply probe endpoint
// connectivity. The health endpoint uses it when available.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFrom unwraps middleware decorators looking for a Pinger.
func PingerFrom(p Provider) (Pinger, bool) {
	for {
		if pinger, ok := p.(Pinger); ok {
			return pinger, true
		}
		switch d := p.(type) {
		case *RetryProvider:
			p = d.inner
		case *LoggingProvider:
			p = d.inner
		default:
			return nil, false
		}
	}
}
