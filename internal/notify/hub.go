package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Hub fans engine events out to WebSocket clients.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	wg         sync.WaitGroup
}

// NewHub creates a hub and starts its broadcaster goroutine.
func NewHub() *Hub {
	hub := &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	hub.wg.Add(1)
	go hub.run()

	return hub
}

// RegisterClient adds a WebSocket client connection to the hub.
func (h *Hub) RegisterClient(conn *websocket.Conn) {
	select {
	case h.register <- conn:
	case <-h.done:
		// Hub is closing, ignore
	}
}

// UnregisterClient removes a WebSocket client connection from the hub.
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	select {
	case h.unregister <- conn:
	case <-h.done:
		// Hub is closing, ignore
	}
}

// Notify queues an event for broadcast to all connected clients.
func (h *Hub) Notify(ctx context.Context, event Event) error {
	select {
	case h.broadcast <- event:
		return nil
	case <-h.done:
		return fmt.Errorf("hub is closed")
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(1 * time.Second):
		return fmt.Errorf("notification queue full")
	}
}

// ClientCount reports how many clients are currently connected.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// run handles client registration/unregistration and message broadcasting.
func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			if conn == nil {
				continue
			}
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			if conn == nil {
				continue
			}
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			jsonData, err := event.JSON()
			if err != nil {
				continue
			}

			// Snapshot the client set so writes happen outside the lock.
			h.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				conns = append(conns, conn)
			}
			h.mu.RUnlock()

			var toRemove []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, jsonData); err != nil {
					toRemove = append(toRemove, conn)
					conn.Close()
				}
			}

			if len(toRemove) > 0 {
				h.mu.Lock()
				for _, conn := range toRemove {
					delete(h.clients, conn)
				}
				h.mu.Unlock()
			}
		}
	}
}

// Close stops the broadcaster and drops every client connection.
func (h *Hub) Close() error {
	close(h.done)

	h.mu.Lock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	h.wg.Wait()
	return nil
}

// GetUpgrader returns the WebSocket upgrader for HTTP handlers.
func (h *Hub) GetUpgrader() websocket.Upgrader {
	return h.upgrader
}
