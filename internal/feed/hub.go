// Package feed broadcasts live screening progress to WebSocket
// subscribers.
package feed

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Event types published on the feed.
const (
	EventRunStarted    = "run_started"
	EventTargetStarted = "target_started"
	EventProgress      = "progress"
	EventRunFinished   = "run_finished"
	EventRunStopped    = "run_stopped"
)

// Event is a single progress update pushed to subscribers.
type Event struct {
	Type      string `json:"type"`
	Target    string `json:"target,omitempty"`
	Completed int    `json:"completed,omitempty"`
	Total     int    `json:"total,omitempty"`
	Passed    int    `json:"passed,omitempty"`
	Message   string `json:"message,omitempty"`
	At        int64  `json:"at"`
}

// HubConfig configures hub behavior.
type HubConfig struct {
	// WriteTimeout is timeout for writing one event to a subscriber.
	WriteTimeout time.Duration
	// SendBuffer is per-subscriber event buffer size. Subscribers that
	// fall further behind are dropped.
	SendBuffer int
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout: 10 * time.Second,
		SendBuffer:   64,
	}
}

// Hub upgrades HTTP requests to WebSocket connections and fans events
// out to every connected subscriber.
type Hub struct {
	config   HubConfig
	upgrader websocket.Upgrader

	subs   map[*subscriber]struct{}
	subsMu sync.Mutex

	closed atomic.Bool
	done   chan struct{}
	wg     sync.WaitGroup
}

type subscriber struct {
	conn *websocket.Conn
	send chan Event
}

// NewHub creates a hub ready to accept subscribers.
func NewHub(config *HubConfig) *Hub {
	cfg := DefaultHubConfig()
	if config != nil {
		cfg = *config
	}

	return &Hub{
		config: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		subs: make(map[*subscriber]struct{}),
		done: make(chan struct{}),
	}
}

// ServeHTTP upgrades the request and registers the connection as a
// subscriber until it disconnects or the hub closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.closed.Load() {
		http.Error(w, "feed closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan Event, h.config.SendBuffer),
	}

	h.subsMu.Lock()
	h.subs[sub] = struct{}{}
	h.subsMu.Unlock()

	h.wg.Add(2)
	go h.writeLoop(sub)
	go h.readLoop(sub)
}

// Broadcast delivers event to every connected subscriber. Subscribers
// whose buffer is full are disconnected rather than blocking the run.
func (h *Hub) Broadcast(event Event) {
	if event.At == 0 {
		event.At = time.Now().UnixMilli()
	}

	h.subsMu.Lock()
	var stale []*subscriber
	for sub := range h.subs {
		select {
		case sub.send <- event:
		default:
			stale = append(stale, sub)
		}
	}
	for _, sub := range stale {
		delete(h.subs, sub)
		close(sub.send)
	}
	h.subsMu.Unlock()

	for _, sub := range stale {
		sub.conn.Close()
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.subsMu.Lock()
	defer h.subsMu.Unlock()
	return len(h.subs)
}

// Close disconnects all subscribers and stops the hub.
func (h *Hub) Close() error {
	if h.closed.Swap(true) {
		return nil // Already closed
	}

	close(h.done)

	h.subsMu.Lock()
	for sub := range h.subs {
		delete(h.subs, sub)
		close(sub.send)
		sub.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
		sub.conn.Close()
	}
	h.subsMu.Unlock()

	h.wg.Wait()
	return nil
}

// writeLoop pushes queued events to one subscriber.
func (h *Hub) writeLoop(sub *subscriber) {
	defer h.wg.Done()

	for {
		select {
		case <-h.done:
			return
		case event, ok := <-sub.send:
			if !ok {
				return
			}
			sub.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := sub.conn.WriteJSON(event); err != nil {
				h.drop(sub)
				return
			}
		}
	}
}

// readLoop drains control frames and detects subscriber disconnect.
// The feed is one-way, so inbound data messages are discarded.
func (h *Hub) readLoop(sub *subscriber) {
	defer h.wg.Done()

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			h.drop(sub)
			return
		}
	}
}

// drop removes a subscriber if it is still registered.
func (h *Hub) drop(sub *subscriber) {
	h.subsMu.Lock()
	if _, ok := h.subs[sub]; ok {
		delete(h.subs, sub)
		close(sub.send)
	}
	h.subsMu.Unlock()

	sub.conn.Close()
}
