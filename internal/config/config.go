package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the book voice service.
type Config struct {
	BindAddr         string
	MetricsNamespace string
	ShutdownTimeout  time.Duration

	AllowAnyOrigin bool

	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAISTTModel     string
	OpenAIChatModel    string
	ElevenLabsAPIKey   string
	ElevenLabsBaseURL  string
	ElevenLabsTTSModel string
	TTSOutputFormat    string

	DatabaseURL string

	GatewayURL string

	MaxListen     time.Duration
	RelistenDelay time.Duration
	MinClipBytes  int
	SampleRate    int
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:         envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace: envOrDefault("APP_METRICS_NAMESPACE", "bookvoice"),
		ShutdownTimeout:  15 * time.Second,
		AllowAnyOrigin:   false,
		OpenAIAPIKey:     stringsTrimSpace("OPENAI_API_KEY"),
		OpenAIBaseURL:    envOrDefault("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAISTTModel:   envOrDefault("OPENAI_STT_MODEL", "whisper-1"),
		OpenAIChatModel:  envOrDefault("OPENAI_CHAT_MODEL", "gpt-4o"),
		ElevenLabsAPIKey: stringsTrimSpace("ELEVENLABS_API_KEY"),
		ElevenLabsBaseURL: envOrDefault("ELEVENLABS_BASE_URL",
			"https://api.elevenlabs.io"),
		ElevenLabsTTSModel: envOrDefault("ELEVENLABS_TTS_MODEL_ID", "eleven_multilingual_v2"),
		// Low-latency PCM so the client plays clips without a decoder.
		TTSOutputFormat: envOrDefault("ELEVENLABS_TTS_OUTPUT_FORMAT", "pcm_16000"),
		DatabaseURL:     stringsTrimSpace("DATABASE_URL"),
		GatewayURL:      envOrDefault("VOICE_GATEWAY_URL", "http://localhost:8080"),
		MaxListen:       15 * time.Second,
		RelistenDelay:   500 * time.Millisecond,
		MinClipBytes:    1000,
		SampleRate:      16000,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxListen, err = durationFromEnv("VOICE_MAX_LISTEN", cfg.MaxListen)
	if err != nil {
		return Config{}, err
	}
	cfg.RelistenDelay, err = durationFromEnv("VOICE_RELISTEN_DELAY", cfg.RelistenDelay)
	if err != nil {
		return Config{}, err
	}
	cfg.MinClipBytes, err = intFromEnv("VOICE_MIN_CLIP_BYTES", cfg.MinClipBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.SampleRate, err = intFromEnv("VOICE_SAMPLE_RATE", cfg.SampleRate)
	if err != nil {
		return Config{}, err
	}

	if cfg.MaxListen < time.Second {
		return Config{}, fmt.Errorf("VOICE_MAX_LISTEN must be at least 1s")
	}
	if cfg.RelistenDelay < 0 {
		return Config{}, fmt.Errorf("VOICE_RELISTEN_DELAY must be >= 0")
	}
	if cfg.MinClipBytes <= 0 {
		return Config{}, fmt.Errorf("VOICE_MIN_CLIP_BYTES must be positive")
	}
	if cfg.SampleRate <= 0 {
		return Config{}, fmt.Errorf("VOICE_SAMPLE_RATE must be positive")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
