package quizgen

// Config holds generation tuning knobs.
type Config struct {
	// MaxTokens bounds the model's output length.
	MaxTokens int

	// Temperature stays low for consistent, parseable output.
	Temperature float64

	// PromptFormat selects the target format embedded in instructions.
	PromptFormat PromptFormat
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:    2000,
		Temperature:  0.2,
		PromptFormat: FormatJSON,
	}
}
