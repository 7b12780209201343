// Package httpapi exposes the voice gateway: transcription, dialogue,
// synthesis and transcript persistence over HTTP, plus health and metrics.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/oromei/bookvoice/internal/books"
	"github.com/oromei/bookvoice/internal/chat"
	"github.com/oromei/bookvoice/internal/config"
	"github.com/oromei/bookvoice/internal/dialogue"
	"github.com/oromei/bookvoice/internal/observability"
	"github.com/oromei/bookvoice/internal/reliability"
	"github.com/oromei/bookvoice/internal/stt"
	"github.com/oromei/bookvoice/internal/tts"
	"github.com/oromei/bookvoice/internal/voice"
)

// maxClipBytes bounds uploaded recordings. Whisper caps uploads at 25 MB.
const maxClipBytes = 25 << 20

type Server struct {
	cfg         config.Config
	transcriber stt.Provider
	dialogue    dialogue.Provider
	synthesizer tts.Provider
	catalog     books.Catalog
	store       chat.Store
	metrics     *observability.Metrics
	hub         *EventHub
}

func New(cfg config.Config, transcriber stt.Provider, dlg dialogue.Provider, synthesizer tts.Provider, catalog books.Catalog, store chat.Store, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:         cfg,
		transcriber: transcriber,
		dialogue:    dlg,
		synthesizer: synthesizer,
		catalog:     catalog,
		store:       store,
		metrics:     metrics,
		hub:         NewEventHub(cfg.AllowAnyOrigin),
	}
}

// Hub exposes the websocket event hub so sessions hosted next to the server
// can publish state changes to observers.
func (s *Server) Hub() *EventHub { return s.hub }

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/api/voice/transcribe", s.handleTranscribe)
	r.Post("/api/voice/chat", s.handleChat)
	r.Post("/api/voice/tts", s.handleTTS)
	r.Post("/api/voice/save", s.handleSave)
	r.Get("/api/voice/events", s.hub.ServeHTTP)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxClipBytes); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}
	file, _, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing_audio", "form file audio is required")
		return
	}
	defer file.Close()

	clip, err := io.ReadAll(io.LimitReader(file, maxClipBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "read_audio", err.Error())
		return
	}
	if len(clip) == 0 {
		respondError(w, http.StatusBadRequest, "empty_audio", "uploaded clip is empty")
		return
	}

	start := time.Now()
	text, err := s.transcriber.Transcribe(r.Context(), clip)
	s.metrics.ObserveStage("transcribe", time.Since(start))
	if err != nil {
		s.respondUpstreamError(w, "transcribe", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookID              string          `json:"bookId"`
		Message             string          `json:"message"`
		ConversationHistory []voice.Message `json:"conversationHistory"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.BookID) == "" || strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing required fields: bookId, message")
		return
	}

	book := dialogue.BookContext{ID: req.BookID}
	if s.catalog != nil {
		if b, ok, err := s.catalog.BookByID(r.Context(), req.BookID); err == nil && ok {
			book.Title = b.Title
			book.Author = b.Author
		}
	}

	start := time.Now()
	content, err := s.dialogue.Reply(r.Context(), book, req.Message, req.ConversationHistory)
	s.metrics.ObserveStage("generate", time.Since(start))
	if err != nil {
		s.respondUpstreamError(w, "chat", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"content": content})
}

func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text    string `json:"text"`
		VoiceID string `json:"voiceId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" || strings.TrimSpace(req.VoiceID) == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing required fields: text, voiceId")
		return
	}

	start := time.Now()
	audio, err := s.synthesizer.Synthesize(r.Context(), req.Text, req.VoiceID)
	s.metrics.ObserveStage("synthesize", time.Since(start))
	if err != nil {
		s.respondUpstreamError(w, "tts", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(audio)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BookID   string          `json:"bookId"`
		Messages []voice.Message `json:"messages"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.BookID) == "" || len(req.Messages) == 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "missing required fields: bookId, messages[]")
		return
	}

	saved, err := s.store.SaveConversation(r.Context(), req.BookID, req.Messages)
	if err != nil {
		s.metrics.CountBoundaryError("save")
		respondError(w, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"messages": saved})
}

// respondUpstreamError maps provider failures onto the gateway response:
// provider client errors pass through, everything else is a bad gateway. The
// retryable flag tells clients whether trying the same turn again can help.
func (s *Server) respondUpstreamError(w http.ResponseWriter, boundary string, err error) {
	s.metrics.CountBoundaryError(boundary)

	status := http.StatusBadGateway
	var sttErr *stt.ProviderError
	var ttsErr *tts.ProviderError
	switch {
	case errors.As(err, &sttErr):
		status = reliability.UpstreamStatusCode(sttErr.Status)
	case errors.As(err, &ttsErr):
		status = reliability.UpstreamStatusCode(ttsErr.Status)
	}
	respondJSON(w, status, upstreamErrorResponse{
		Error:     err.Error(),
		Code:      "upstream_error",
		Retryable: reliability.IsRetryableHTTPStatus(status),
	})
}

type upstreamErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
