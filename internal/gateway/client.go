// Package gateway is the HTTP client for the four voice boundaries exposed
// by bookvoiced: transcription, dialogue generation, speech synthesis and
// transcript persistence. Failures are returned as errors and never retried;
// the session decides what the user sees.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/oromei/bookvoice/internal/voice"
)

type Client struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Transcribe uploads the finished clip as multipart form data and returns
// the recognized text.
func (c *Client) Transcribe(ctx context.Context, clip []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", "recording.wav")
	if err != nil {
		return "", fmt.Errorf("build form: %w", err)
	}
	if _, err := fw.Write(clip); err != nil {
		return "", fmt.Errorf("write clip: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/voice/transcribe", &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()
	if err := checkStatus("transcribe", res); err != nil {
		return "", err
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode transcription: %w", err)
	}
	return out.Text, nil
}

// Reply sends the transcript plus the full prior turn history to the
// dialogue boundary, scoped to the book persona.
func (c *Client) Reply(ctx context.Context, bookID, message string, history []voice.Message) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"bookId":              bookID,
		"message":             message,
		"conversationHistory": history,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	res, err := c.postJSON(ctx, "/api/voice/chat", payload)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	if err := checkStatus("chat", res); err != nil {
		return "", err
	}

	var out struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat reply: %w", err)
	}
	return out.Content, nil
}

// Synthesize returns raw audio bytes for the given text and persona voice.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"text":    text,
		"voiceId": voiceID,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal tts request: %w", err)
	}

	res, err := c.postJSON(ctx, "/api/voice/tts", payload)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if err := checkStatus("tts", res); err != nil {
		return nil, err
	}

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}

// SaveTranscript flushes a finished conversation to the persistence
// boundary.
func (c *Client) SaveTranscript(ctx context.Context, bookID string, messages []voice.Message) error {
	payload, err := json.Marshal(map[string]any{
		"bookId":   bookID,
		"messages": messages,
	})
	if err != nil {
		return fmt.Errorf("marshal save request: %w", err)
	}

	res, err := c.postJSON(ctx, "/api/voice/save", payload)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return checkStatus("save", res)
}

func (c *Client) postJSON(ctx context.Context, path string, payload []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return res, nil
}

func checkStatus(boundary string, res *http.Response) error {
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	return fmt.Errorf("%s status %d: %s", boundary, res.StatusCode, strings.TrimSpace(string(body)))
}
