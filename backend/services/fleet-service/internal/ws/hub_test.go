package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pumpsign/backend/services/fleet-service/internal/monitor"
)

func TestHubBroadcastsToSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := NewServer(hub, time.Second, zap.NewNop())

	ts := httptest.NewServer(http.HandlerFunc(server.HandleWS))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	seen := time.Now()
	hub.Broadcast(StatusEvent{
		StationID: "st-1",
		Status:    monitor.ConnectionStatus{IsOnline: true, LastSeen: &seen},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var event StatusEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if event.StationID != "st-1" || !event.Status.IsOnline {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestHubRemovesClosedSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop())
	server := NewServer(hub, time.Second, zap.NewNop())

	ts := httptest.NewServer(http.HandlerFunc(server.HandleWS))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never removed after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
