package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/oromei/bookvoice/internal/audio"
	"github.com/oromei/bookvoice/internal/config"
	"github.com/oromei/bookvoice/internal/gateway"
	"github.com/oromei/bookvoice/internal/httpapi"
	"github.com/oromei/bookvoice/internal/observability"
	"github.com/oromei/bookvoice/internal/voice"
)

func main() {
	var (
		bookID     = flag.String("book", "", "book id to converse with (required)")
		author     = flag.String("author", "", "book author, used for voice selection")
		gatewayURL = flag.String("gateway", "", "gateway base URL (default from VOICE_GATEWAY_URL)")
		statusAddr = flag.String("status-addr", ":8081", "bind address for the status feed, empty to disable")
		audioMode  = flag.String("audio", "device", "audio backend: device or mock")
	)
	flag.Parse()

	if strings.TrimSpace(*bookID) == "" {
		fmt.Fprintln(os.Stderr, "usage: bookvoice -book <id> [-author <name>]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if strings.TrimSpace(*gatewayURL) == "" {
		*gatewayURL = cfg.GatewayURL
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace + "_client")

	var backend voice.AudioBackend
	var player voice.Player
	switch strings.ToLower(strings.TrimSpace(*audioMode)) {
	case "device":
		backend = audio.NewBackend(cfg.SampleRate)
		player = audio.NewPCMPlayer(cfg.SampleRate)
	case "mock":
		backend = voice.NewMockBackend(make([]byte, 4000))
		player = &voice.MockPlayer{}
		log.Printf("audio backend: mock")
	default:
		log.Fatalf("invalid -audio: %q (expected device|mock)", *audioMode)
	}

	client := gateway.New(*gatewayURL)

	hub := httpapi.NewEventHub(cfg.AllowAnyOrigin)

	session := voice.NewSession(voice.Config{
		BookID:        *bookID,
		BookAuthor:    *author,
		MaxListen:     cfg.MaxListen,
		RelistenDelay: cfg.RelistenDelay,
		MinClipBytes:  cfg.MinClipBytes,
	}, voice.Deps{
		Audio:       backend,
		Player:      player,
		Transcriber: client,
		Dialogue:    client,
		Synthesizer: client,
		Saver:       client,
		Metrics:     metrics,
		Notify: func(ev voice.Event) {
			hub.Publish(ev)
			switch ev.Type {
			case voice.EventState:
				fmt.Printf("\r%-45s", ev.Status)
			case voice.EventTurn:
				if ev.Turn != nil {
					fmt.Printf("\r%s: %s\n", ev.Turn.Role, ev.Turn.Content)
				}
			}
		},
	})
	defer session.Close()

	if strings.TrimSpace(*statusAddr) != "" {
		r := chi.NewRouter()
		r.Get("/events", hub.ServeHTTP)
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			observability.MetricsHandler().ServeHTTP(w, req)
		})
		statusServer := &http.Server{Addr: *statusAddr, Handler: r}
		go func() {
			if err := statusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("status server error: %v", err)
			}
		}()
		defer statusServer.Close()
		log.Printf("status feed on %s/events", *statusAddr)
	}

	log.Printf("talking to book %s via %s (voice %s)", *bookID, *gatewayURL, session.VoiceID())
	fmt.Println("press Enter to toggle the microphone, q+Enter to quit")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
		close(lines)
	}()

	for {
		select {
		case <-sigCh:
			fmt.Println()
			log.Printf("shutting down")
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if strings.EqualFold(line, "q") {
				return
			}
			session.Toggle()
		}
	}
}
