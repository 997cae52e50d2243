package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestHubNotifyWithoutClients(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	event := Event{Type: "snapshot", Timestamp: 123}
	if err := hub.Notify(ctx, event); err != nil {
		t.Fatalf("notify with no clients: %v", err)
	}
	if hub.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount())
	}
}

func TestHubNotifyAfterClose(t *testing.T) {
	hub := NewHub()
	if err := hub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	err := hub.Notify(context.Background(), Event{Type: "snapshot"})
	if err == nil {
		t.Fatal("expected error notifying a closed hub")
	}
}

func TestHubRegisterNilClientIsIgnored(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	hub.RegisterClient(nil)
	hub.UnregisterClient(nil)

	// The broadcaster must stay alive after nil registrations.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := hub.Notify(ctx, Event{Type: "snapshot"}); err != nil {
		t.Fatalf("notify after nil register: %v", err)
	}
}

func TestHubUpgraderBuffersConfigured(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	upgrader := hub.GetUpgrader()
	if upgrader.ReadBufferSize == 0 || upgrader.WriteBufferSize == 0 {
		t.Fatalf("expected non-zero upgrader buffers: %+v", upgrader)
	}
}

func TestEventJSON(t *testing.T) {
	snapshot := json.RawMessage(`{"state":"running","generation":3}`)
	event := Event{Type: "snapshot", Timestamp: 456, Snapshot: snapshot}

	data, err := event.JSON()
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if decoded.Type != "snapshot" || decoded.Timestamp != 456 {
		t.Fatalf("unexpected event: %+v", decoded)
	}
	if string(decoded.Snapshot) != string(snapshot) {
		t.Fatalf("unexpected snapshot payload: %s", decoded.Snapshot)
	}
}
