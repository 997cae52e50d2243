package main

import (
	"context"
	"encoding/json"
	"time"

	"athanor/internal/engine"
	"athanor/internal/notify"
)

// Server exposes one live engine over HTTP and a WebSocket stream. It
// owns the subscription that feeds engine snapshots into the hub; all
// evolutionary logic stays in the engine.
type Server struct {
	eng    *engine.Engine
	hub    *notify.Hub
	logger *Logger

	cancelFeed func()
	feedDone   chan struct{}
}

// NewServer wires an engine to a hub and starts forwarding snapshots.
func NewServer(eng *engine.Engine, hub *notify.Hub, logger *Logger) *Server {
	s := &Server{
		eng:      eng,
		hub:      hub,
		logger:   logger,
		feedDone: make(chan struct{}),
	}
	snapshots, cancel := eng.Subscribe(64)
	s.cancelFeed = cancel
	go s.forwardSnapshots(snapshots)
	return s
}

// forwardSnapshots pushes every engine snapshot to the hub until the
// subscription is cancelled.
func (s *Server) forwardSnapshots(snapshots <-chan engine.Snapshot) {
	defer close(s.feedDone)
	for snap := range snapshots {
		event, err := snapshotEvent(snap)
		if err != nil {
			s.logger.Errorf("marshal snapshot: %v", err)
			continue
		}
		if err := s.hub.Notify(context.Background(), event); err != nil {
			s.logger.Warnf("snapshot broadcast dropped: %v", err)
		}
	}
}

func snapshotEvent(snap engine.Snapshot) (notify.Event, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return notify.Event{}, err
	}
	return notify.Event{
		Type:      "snapshot",
		Timestamp: time.Now().UnixMilli(),
		Snapshot:  raw,
	}, nil
}

// Close stops the snapshot feed and drops every stream client.
func (s *Server) Close() {
	s.cancelFeed()
	<-s.feedDone
	_ = s.hub.Close()
}
