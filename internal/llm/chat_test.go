package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func chatTestClient(t *testing.T, handler http.HandlerFunc) *ChatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewChatClient(ChatConfig{
		Host:    srv.URL,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func chatSuccessBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"model": "test-model",
		"choices": []map[string]any{
			{
				"message":       map[string]string{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
		"usage": map[string]int{
			"prompt_tokens":     12,
			"completion_tokens": 34,
			"total_tokens":      46,
		},
	})
	return string(body)
}

func TestChatClient_Generate(t *testing.T) {
	var gotAuth string
	var gotBody chatCompletionRequest

	c := chatTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(chatSuccessBody("the reply")))
	})

	resp, err := c.Generate(context.Background(), Request{
		Messages:    []Message{{Role: RoleUser, Content: "the instruction"}},
		MaxTokens:   500,
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotAuth != "Bearer test-key" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotBody.Model != "test-model" || gotBody.Stream {
		t.Errorf("unexpected request body: %+v", gotBody)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" {
		t.Errorf("unexpected messages: %+v", gotBody.Messages)
	}
	if resp.Text() != "the reply" {
		t.Errorf("unexpected content %q", resp.Text())
	}
	if resp.Usage.TotalTokens != 46 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
}

func TestChatClient_BadStatus(t *testing.T) {
	c := chatTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := c.Generate(context.Background(), Request{})
	infErr := AsError(err)
	if infErr == nil || infErr.Kind != KindBadStatus || infErr.Status != http.StatusBadGateway {
		t.Errorf("expected bad_status 502, got %v", err)
	}
}

func TestChatClient_RateLimited(t *testing.T) {
	c := chatTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Generate(context.Background(), Request{})
	infErr := AsError(err)
	if infErr == nil || infErr.Kind != KindRateLimited {
		t.Fatalf("expected rate_limited, got %v", err)
	}
	if infErr.RetryAfter != 7*time.Second {
		t.Errorf("expected Retry-After 7s, got %v", infErr.RetryAfter)
	}
}

func TestChatClient_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not JSON", "definitely not json"},
		{"no choices", `{"choices": []}`},
		{"empty content", chatSuccessBody("")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := chatTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := c.Generate(context.Background(), Request{})
			infErr := AsError(err)
			if infErr == nil || infErr.Kind != KindMalformedBody {
				t.Errorf("expected malformed_body, got %v", err)
			}
		})
	}
}

func TestChatClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	c, err := NewChatClient(ChatConfig{
		Host:    srv.URL,
		Model:   "test-model",
		Timeout: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Generate(context.Background(), Request{})
	infErr := AsError(err)
	if infErr == nil || infErr.Kind != KindTimeout {
		t.Errorf("expected timeout, got %v", err)
	}
}

func TestChatClient_Unreachable(t *testing.T) {
	c, err := NewChatClient(ChatConfig{
		Host:  "http://127.0.0.1:1", // nothing listens here
		Model: "test-model",
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Generate(context.Background(), Request{})
	infErr := AsError(err)
	if infErr == nil || infErr.Kind != KindUnreachable {
		t.Errorf("expected unreachable, got %v", err)
	}
}

func TestChatClient_Ping(t *testing.T) {
	c := chatTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"data": []}`))
	})

	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}
}

func TestNewChatClient_RequiresHostAndModel(t *testing.T) {
	if _, err := NewChatClient(ChatConfig{Model: "m"}); err == nil {
		t.Error("expected error for missing host")
	}
	if _, err := NewChatClient(ChatConfig{Host: "http://x"}); err == nil {
		t.Error("expected error for missing model")
	}
}
