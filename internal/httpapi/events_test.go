package httpapi

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/oromei/bookvoice/internal/voice"
)

func TestEventHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewEventHub(false)
	// Must not block or panic with nobody listening.
	hub.Publish(voice.Event{Type: voice.EventState, State: voice.StateListening})
	if got := hub.Subscribers(); got != 0 {
		t.Fatalf("Subscribers() = %d, want 0", got)
	}
}

func TestEventHubDeliversToWebsocket(t *testing.T) {
	hub := NewEventHub(true)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Subscribers() == 1 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	if hub.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d, want 1", hub.Subscribers())
	}

	hub.Publish(voice.Event{Type: voice.EventState, State: voice.StateSpeaking, Status: "Speaking..."})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev voice.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if ev.Type != voice.EventState || ev.State != voice.StateSpeaking {
		t.Fatalf("event = %+v", ev)
	}
}
