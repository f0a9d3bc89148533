package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over a text-generation backend. The question
// generation pipeline performs exactly one Generate call per inbound request.
type Provider interface {
	// Generate sends the instruction to the model and returns its reply.
	// When req.Schema is set, implementations that support structured output
	// constrain and validate the reply against it; otherwise Content is the
	// model's raw text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured with.
	ModelID() string
}

// Request describes a single completion call.
type Request struct {
	// System is the optional system prompt.
	System string

	// Messages is the conversation. Question generation is single-turn, so
	// this is normally one user message holding the rendered instruction.
	Messages []Message

	// Schema, when set, asks for JSON conforming to this schema. Providers
	// without a native structured-output mechanism ignore it and the caller
	// validates the reply itself.
	Schema *Schema

	// MaxTokens bounds the reply length.
	MaxTokens int

	// Temperature controls randomness, 0.0-1.0. Generation uses a low value
	// so repeated calls for the same teaching point stay consistent.
	Temperature float64
}

// Message is one turn in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies the message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema the reply must conform to.
type Schema struct {
	// Name identifies the schema, kebab-case, e.g. "audit-verdict".
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema definition.
	Definition map[string]any
}

// Response is the model's reply.
type Response struct {
	// Content is the reply body. Schema-constrained calls carry validated
	// JSON; plain calls carry the raw text bytes.
	Content json.RawMessage

	// Usage reports token consumption for this call.
	Usage Usage

	// Model is the model that actually served the call.
	Model string

	// StopReason is normalized to "end", "max_tokens" or "error".
	StopReason string
}

// Usage tracks token counts for one call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns the response content as plain text.
func (r *Response) Text() string {
	return string(r.Content)
}
