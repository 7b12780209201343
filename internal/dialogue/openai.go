package dialogue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/oromei/bookvoice/internal/voice"
)

const (
	defaultModel = "gpt-4o"

	replyMaxTokens   = 100
	replyTemperature = 0.8

	// fallbackReply keeps the conversation alive when the model returns
	// nothing usable.
	fallbackReply = "I apologize, but I seem to have lost my voice for a moment. Could you try again?"
)

// OpenAIProvider answers as the book through the OpenAI chat completions
// endpoint. Replies are kept short so synthesized speech stays snappy.
type OpenAIProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewOpenAIProvider(baseURL, apiKey, model string) *OpenAIProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.openai.com"
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	return &OpenAIProvider{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		model:   model,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (p *OpenAIProvider) Reply(ctx context.Context, book BookContext, message string, history []voice.Message) (string, error) {
	msgs := make([]chatMessage, 0, len(history)+2)
	msgs = append(msgs, chatMessage{Role: "system", Content: personaPrompt(book)})
	for _, m := range history {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: message})

	payload, err := json.Marshal(map[string]any{
		"model":       p.model,
		"messages":    msgs,
		"max_tokens":  replyMaxTokens,
		"temperature": replyTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return "", fmt.Errorf("completion status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}

	if len(out.Choices) == 0 {
		return fallbackReply, nil
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return fallbackReply, nil
	}
	return content, nil
}

func personaPrompt(book BookContext) string {
	title := book.Title
	if strings.TrimSpace(title) == "" {
		title = "this literary work"
	}
	author := book.Author
	if strings.TrimSpace(author) == "" {
		author = "unknown author"
	}

	return fmt.Sprintf(`You are %q by %s, having a natural conversation with a reader.

IMPORTANT CONVERSATION GUIDELINES:
- Speak as the book itself, sharing your story, themes, and insights
- Keep responses conversational and natural (2-3 sentences max)
- Show curiosity about the reader's thoughts and questions
- Ask follow-up questions to keep the conversation flowing
- Be warm, engaging, and insightful
- Never break character or discuss non-literary topics
- Reference your specific content, characters, and themes when relevant
- ALWAYS respond in the user's language. The default language is English, this is very important! If the user's language is not English, respond in the user's language.
for example, if the user's language is Spanish, respond in Spanish.
If the user's language is French, respond in French.


Current conversation context: This is an ongoing voice conversation, so respond naturally as if speaking aloud.`, title, author)
}
