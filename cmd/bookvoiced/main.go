package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oromei/bookvoice/internal/books"
	"github.com/oromei/bookvoice/internal/chat"
	"github.com/oromei/bookvoice/internal/config"
	"github.com/oromei/bookvoice/internal/dialogue"
	"github.com/oromei/bookvoice/internal/httpapi"
	"github.com/oromei/bookvoice/internal/observability"
	"github.com/oromei/bookvoice/internal/stt"
	"github.com/oromei/bookvoice/internal/tts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := chat.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("chat store init failed: %v", err)
	}
	defer store.Close()

	var catalog books.Catalog
	if pg, ok := store.(*chat.PostgresStore); ok {
		catalog = books.NewPostgresCatalog(pg.Pool())
		log.Printf("book catalog: postgres")
	} else {
		catalog = books.NewInMemoryCatalog()
		log.Printf("book catalog: in-memory (no DATABASE_URL)")
	}
	defer catalog.Close()

	var transcriber stt.Provider
	var dlg dialogue.Provider
	if strings.TrimSpace(cfg.OpenAIAPIKey) != "" {
		transcriber = stt.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAISTTModel)
		dlg = dialogue.NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIChatModel)
		log.Printf("speech and dialogue provider: openai")
	} else {
		transcriber = stt.NewMockProvider()
		dlg = dialogue.NewMockProvider()
		log.Printf("speech and dialogue provider: mock (no OPENAI_API_KEY)")
	}

	var synthesizer tts.Provider
	if strings.TrimSpace(cfg.ElevenLabsAPIKey) != "" {
		synthesizer = tts.NewElevenLabsProvider(cfg.ElevenLabsBaseURL, cfg.ElevenLabsAPIKey, cfg.ElevenLabsTTSModel, cfg.TTSOutputFormat)
		log.Printf("synthesis provider: elevenlabs")
	} else {
		synthesizer = tts.NewMockProvider()
		log.Printf("synthesis provider: mock (no ELEVENLABS_API_KEY)")
	}

	api := httpapi.New(cfg, transcriber, dlg, synthesizer, catalog, store, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("gateway listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
