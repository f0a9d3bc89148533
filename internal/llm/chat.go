package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ChatClient talks to an OpenAI-compatible chat-completions endpoint over
// plain HTTP. It is the default gateway for self-hosted inference servers
// (vLLM and friends) where no vendor SDK applies.
//
// The HTTP client is shared across requests; everything else about a call is
// per-request, so a single ChatClient is safe for concurrent use.
type ChatClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// NewChatClient builds a ChatClient from config. Host and model are
// required; the API key may be empty for unauthenticated local endpoints.
func NewChatClient(cfg ChatConfig) (*ChatClient, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("inference host is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model identifier is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &ChatClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.Host, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
	}, nil
}

// Wire types for the chat-completions contract.

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	MaxTokens   int                     `json:"max_tokens,omitempty"`
	Temperature float64                 `json:"temperature"`
	Stream      bool                    `json:"stream"`
}

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatCompletionMessage `json:"message"`
		FinishReason string                `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *ChatClient) Generate(ctx context.Context, req Request) (*Response, error) {
	body := chatCompletionRequest{
		Model:       c.model,
		Messages:    buildChatMessages(req),
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      false,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Err: fmt.Errorf("read response body: %w", err)}
	}

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, &Error{
			Kind:       KindRateLimited,
			Status:     httpResp.StatusCode,
			RetryAfter: parseRetryAfter(httpResp.Header.Get("Retry-After")),
			Err:        fmt.Errorf("endpoint rate limited: %s", truncateBody(raw)),
		}
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, &Error{
			Kind:   KindBadStatus,
			Status: httpResp.StatusCode,
			Err:    fmt.Errorf("endpoint returned %s: %s", httpResp.Status, truncateBody(raw)),
		}
	}

	var parsed chatCompletionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &Error{Kind: KindMalformedBody, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return nil, &Error{Kind: KindMalformedBody, Err: errors.New("no choices in response")}
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, &Error{Kind: KindMalformedBody, Err: errors.New("empty message content")}
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}

	return &Response{
		Content: json.RawMessage(content),
		Usage: Usage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		},
		Model:      model,
		StopReason: mapChatFinishReason(parsed.Choices[0].FinishReason),
	}, nil
}

func (c *ChatClient) ModelID() string {
	return c.model
}

// Ping probes the endpoint's /v1/models listing. Used by the health check;
// a full completion would be too expensive to run per probe.
func (c *ChatClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", nil)
	if err != nil {
		return err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: KindBadStatus, Status: resp.StatusCode,
			Err: fmt.Errorf("models endpoint returned %s", resp.Status)}
	}
	return nil
}

func buildChatMessages(req Request) []chatCompletionMessage {
	var messages []chatCompletionMessage
	if req.System != "" {
		messages = append(messages, chatCompletionMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.Messages {
		messages = append(messages, chatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	return messages
}

// classifyTransportError maps a transport failure to Timeout or Unreachable.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindUnreachable, Err: err}
}

func mapChatFinishReason(reason string) string {
	switch reason {
	case "length":
		return "max_tokens"
	default:
		return "end"
	}
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := time.ParseDuration(header + "s"); err == nil {
		return secs
	}
	return 0
}

func truncateBody(raw []byte) string {
	const max = 300
	s := string(raw)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
