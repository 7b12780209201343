package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/oromei/bookvoice/internal/books"
	"github.com/oromei/bookvoice/internal/chat"
	"github.com/oromei/bookvoice/internal/config"
	"github.com/oromei/bookvoice/internal/dialogue"
	"github.com/oromei/bookvoice/internal/observability"
	"github.com/oromei/bookvoice/internal/stt"
	"github.com/oromei/bookvoice/internal/tts"
	"github.com/oromei/bookvoice/internal/voice"
)

type serverFixture struct {
	transcriber *stt.MockProvider
	dialogue    *dialogue.MockProvider
	synthesizer *tts.MockProvider
	catalog     *books.InMemoryCatalog
	store       *chat.InMemoryStore
	server      *Server
}

func newServerFixture() *serverFixture {
	f := &serverFixture{
		transcriber: stt.NewMockProvider(),
		dialogue:    dialogue.NewMockProvider(),
		synthesizer: tts.NewMockProvider(),
		catalog: books.NewInMemoryCatalog(books.Book{
			ID: "book-1", Title: "Great Expectations", Author: "Charles Dickens",
		}),
		store: chat.NewInMemoryStore(),
	}
	// Unique namespace per fixture: promauto registers into the default
	// registry, which rejects duplicates across tests.
	metrics := observability.NewMetrics(fmt.Sprintf("test_%d", time.Now().UnixNano()))
	f.server = New(config.Config{}, f.transcriber, f.dialogue, f.synthesizer, f.catalog, f.store, metrics)
	return f
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	f := newServerFixture()
	router := f.server.Router()

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s = %d, want 200", path, rr.Code)
		}
	}
}

func TestTranscribeEndpoint(t *testing.T) {
	f := newServerFixture()
	f.transcriber.Text = "tell me about pip"

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("audio", "recording.wav")
	_, _ = fw.Write(make([]byte, 2000))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/voice/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Text != "tell me about pip" {
		t.Fatalf("text = %q", out.Text)
	}
}

func TestTranscribeRequiresAudio(t *testing.T) {
	f := newServerFixture()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	_ = mw.WriteField("other", "x")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/voice/transcribe", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()
	f.server.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if got := f.transcriber.Calls(); got != 0 {
		t.Fatalf("provider calls = %d for bad request, want 0", got)
	}
}

func TestChatEndpoint(t *testing.T) {
	f := newServerFixture()

	rr := postJSON(t, f.server.Router(), "/api/voice/chat", map[string]any{
		"bookId":  "book-1",
		"message": "who are you",
		"conversationHistory": []voice.Message{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "greetings"},
		},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var out struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// The mock provider folds the catalog title into its reply, proving the
	// book lookup happened.
	if !strings.Contains(out.Content, "Great Expectations") {
		t.Fatalf("content = %q, want the book title woven in", out.Content)
	}
}

func TestChatRequiresFields(t *testing.T) {
	f := newServerFixture()
	rr := postJSON(t, f.server.Router(), "/api/voice/chat", map[string]any{"bookId": "book-1"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestTTSEndpoint(t *testing.T) {
	f := newServerFixture()
	f.synthesizer.Audio = []byte{1, 2, 3}

	rr := postJSON(t, f.server.Router(), "/api/voice/tts", map[string]string{
		"text":    "hello reader",
		"voiceId": "pNInz6obpgDQGcFmaJgB",
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	audio, _ := io.ReadAll(rr.Body)
	if !bytes.Equal(audio, []byte{1, 2, 3}) {
		t.Fatalf("audio = %v, want provider bytes", audio)
	}
}

func TestTTSUpstreamClientErrorPassesThrough(t *testing.T) {
	f := newServerFixture()
	f.synthesizer.Err = &tts.ProviderError{Status: http.StatusUnauthorized, Body: "bad key"}

	rr := postJSON(t, f.server.Router(), "/api/voice/tts", map[string]string{
		"text":    "hello",
		"voiceId": "v",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 passthrough", rr.Code)
	}
	var out struct {
		Retryable bool `json:"retryable"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Retryable {
		t.Fatalf("retryable = true for a client error, want false")
	}
}

func TestTTSUpstreamServerErrorMapsToBadGateway(t *testing.T) {
	f := newServerFixture()
	f.synthesizer.Err = &tts.ProviderError{Status: http.StatusServiceUnavailable, Body: "down"}

	rr := postJSON(t, f.server.Router(), "/api/voice/tts", map[string]string{
		"text":    "hello",
		"voiceId": "v",
	})
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
	var out struct {
		Retryable bool `json:"retryable"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Retryable {
		t.Fatalf("retryable = false for a mapped 502, want true")
	}
}

func TestSaveEndpoint(t *testing.T) {
	f := newServerFixture()

	rr := postJSON(t, f.server.Router(), "/api/voice/save", map[string]any{
		"bookId": "book-1",
		"messages": []voice.Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", Content: "  "},
			{Role: "assistant", Content: "hello"},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	stored := f.store.Conversation("book-1")
	if len(stored) != 2 {
		t.Fatalf("stored messages = %d, want 2 (blank skipped)", len(stored))
	}
	if stored[0].Content != "hi" || stored[1].Content != "hello" {
		t.Fatalf("stored = %+v", stored)
	}
}

func TestSaveRequiresMessages(t *testing.T) {
	f := newServerFixture()
	rr := postJSON(t, f.server.Router(), "/api/voice/save", map[string]any{
		"bookId":   "book-1",
		"messages": []voice.Message{},
	})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
