package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config selects and configures the inference provider.
type Config struct {
	// Provider selects the backend.
	// Values: "chat" (OpenAI-compatible HTTP endpoint, the default),
	// "openai", "anthropic", "gemini", "mock".
	Provider string

	Chat      ChatConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Gemini    GeminiConfig
	Retry     RetryConfig
}

// ChatConfig configures the raw chat-completions gateway.
type ChatConfig struct {
	// Host is the inference server base URL, e.g. "http://10.0.0.5:8000".
	Host string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// Model is the model identifier passed in every request body.
	Model string

	// Timeout bounds a single HTTP call. Default: 120s — inference on a
	// self-hosted endpoint is slow and the pipeline blocks on it.
	Timeout time.Duration
}

// OpenAIConfig configures the OpenAI SDK provider.
type OpenAIConfig struct {
	APIKey  string
	Model   string // default "gpt-4o-mini"
	BaseURL string // optional override for compatible APIs
}

// AnthropicConfig configures the Anthropic SDK provider.
type AnthropicConfig struct {
	APIKey string
	Model  string // default "claude-haiku"
}

// GeminiConfig configures the Gemini SDK provider.
type GeminiConfig struct {
	APIKey string
	Model  string // default "gemini-flash"
}

// RetryConfig bounds retries of transient inference failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns the standard configuration: the raw gateway with
// three attempts backing off 1s, 2s between them.
func DefaultConfig() Config {
	return Config{
		Provider: "chat",
		Chat: ChatConfig{
			Timeout: 120 * time.Second,
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     30 * time.Second,
			Multiplier:  2.0,
		},
	}
}

// ConfigFromEnv builds a Config from QUIZGEN_* environment variables,
// falling back to defaults for anything unset.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("QUIZGEN_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if h := os.Getenv("QUIZGEN_MODEL_HOST"); h != "" {
		cfg.Chat.Host = h
	}
	if k := os.Getenv("QUIZGEN_MODEL_API_KEY"); k != "" {
		cfg.Chat.APIKey = k
	}
	if m := os.Getenv("QUIZGEN_MODEL"); m != "" {
		cfg.Chat.Model = m
	}
	if t := os.Getenv("QUIZGEN_MODEL_TIMEOUT_SECONDS"); t != "" {
		if secs, err := strconv.Atoi(t); err == nil && secs > 0 {
			cfg.Chat.Timeout = time.Duration(secs) * time.Second
		}
	}

	if k := os.Getenv("QUIZGEN_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("QUIZGEN_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("QUIZGEN_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("QUIZGEN_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("QUIZGEN_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("QUIZGEN_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("QUIZGEN_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	return cfg
}

// Validate checks that the selected provider has what it needs.
func (c Config) Validate() error {
	switch c.Provider {
	case "chat":
		if c.Chat.Host == "" {
			return fmt.Errorf("QUIZGEN_MODEL_HOST is required for the chat provider")
		}
		if c.Chat.Model == "" {
			return fmt.Errorf("QUIZGEN_MODEL is required for the chat provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("QUIZGEN_OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("QUIZGEN_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("QUIZGEN_GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
		// No configuration needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
