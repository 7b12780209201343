package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultModel = "eleven_multilingual_v2"

	// defaultOutputFormat keeps the clip playable as raw samples on the
	// client without a decoder.
	defaultOutputFormat = "pcm_16000"
)

// ElevenLabsProvider synthesizes speech through the ElevenLabs API.
type ElevenLabsProvider struct {
	baseURL      string
	apiKey       string
	model        string
	outputFormat string
	client       *http.Client
}

func NewElevenLabsProvider(baseURL, apiKey, model, outputFormat string) *ElevenLabsProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://api.elevenlabs.io"
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	if strings.TrimSpace(outputFormat) == "" {
		outputFormat = defaultOutputFormat
	}
	return &ElevenLabsProvider{
		baseURL:      strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:       strings.TrimSpace(apiKey),
		model:        model,
		outputFormat: outputFormat,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (p *ElevenLabsProvider) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{
		"text":     text,
		"model_id": p.model,
		"voice_settings": map[string]any{
			"stability":         0.5,
			"similarity_boost":  0.5,
			"style":             0.5,
			"use_speaker_boost": true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal synthesis request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=%s",
		p.baseURL, url.PathEscape(voiceID), url.QueryEscape(p.outputFormat))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", p.apiKey)

	res, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, &ProviderError{Status: res.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	audio, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	return audio, nil
}

// ProviderError carries the upstream status so the gateway can map it.
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("synthesis status %d: %s", e.Status, e.Body)
}
