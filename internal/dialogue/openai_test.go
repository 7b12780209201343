package dialogue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oromei/bookvoice/internal/voice"
)

func TestOpenAIProviderReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		var req struct {
			Model       string        `json:"model"`
			Messages    []chatMessage `json:"messages"`
			MaxTokens   int           `json:"max_tokens"`
			Temperature float64       `json:"temperature"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "gpt-4o" || req.MaxTokens != 100 || req.Temperature != 0.8 {
			t.Errorf("request params = %+v", req)
		}
		// system prompt, one history message, the new user message
		if len(req.Messages) != 3 {
			t.Fatalf("messages = %d, want 3", len(req.Messages))
		}
		if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "Great Expectations") {
			t.Errorf("system prompt = %+v", req.Messages[0])
		}
		if req.Messages[2].Role != "user" || req.Messages[2].Content != "who is pip" {
			t.Errorf("user message = %+v", req.Messages[2])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "  Pip is my hero.  "}},
			},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "sk-test", "")
	reply, err := p.Reply(context.Background(),
		BookContext{ID: "b1", Title: "Great Expectations", Author: "Charles Dickens"},
		"who is pip",
		[]voice.Message{{Role: "user", Content: "hello"}})
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply != "Pip is my hero." {
		t.Fatalf("Reply() = %q, want trimmed content", reply)
	}
}

func TestOpenAIProviderFallbackOnEmptyChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []map[string]any{}})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "sk-test", "")
	reply, err := p.Reply(context.Background(), BookContext{ID: "b1"}, "hi", nil)
	if err != nil {
		t.Fatalf("Reply() error = %v", err)
	}
	if reply != fallbackReply {
		t.Fatalf("Reply() = %q, want fallback line", reply)
	}
}

func TestPersonaPromptDefaults(t *testing.T) {
	prompt := personaPrompt(BookContext{ID: "b1"})
	if !strings.Contains(prompt, "this literary work") {
		t.Fatalf("prompt missing title fallback: %q", prompt)
	}
	if !strings.Contains(prompt, "unknown author") {
		t.Fatalf("prompt missing author fallback: %q", prompt)
	}
}
