// Package realtime streams verdicts to WebSocket subscribers as they
// are produced, so dashboards see rescores without polling.
package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"solana-token-sentinel/internal/domain"
	"solana-token-sentinel/internal/observability"
)

// MaxClients is the maximum number of concurrent WebSocket connections.
const MaxClients = 1024

// normalCloseCodes are close codes that indicate an expected disconnect.
var normalCloseCodes = []int{
	websocket.CloseNormalClosure,
	websocket.CloseGoingAway,
	websocket.CloseNoStatusReceived,
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser clients
		}
		host := r.Host
		return origin == "http://"+host || origin == "https://"+host
	},
}

// Event is one message on the verdict feed.
type Event struct {
	Type      string          `json:"type"` // "verdict"
	Timestamp int64           `json:"timestamp"` // Unix milliseconds
	Verdict   *domain.Verdict `json:"verdict"`
}

// subscription filters events for one client. An empty mint list means
// all mints.
type subscription struct {
	Mints []string `json:"mints"`
}

func (s subscription) matches(mint string) bool {
	if len(s.Mints) == 0 {
		return true
	}
	for _, m := range s.Mints {
		if m == mint {
			return true
		}
	}
	return false
}

// client is one WebSocket connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	mu   sync.RWMutex
	sub  subscription
}

// Hub manages all WebSocket connections and fans verdicts out to them.
type Hub struct {
	clients    map[*client]struct{}
	broadcast  chan *Event
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
	logger     *log.Logger
	done       chan struct{} // closed when Run exits; prevents upgrade race
	maxClients int

	totalEvents atomic.Int64
}

// NewHub creates a new verdict feed hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		logger:     logger,
		done:       make(chan struct{}),
		maxClients: MaxClients,
	}
}

// Run starts the hub's main loop and blocks until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Printf("verdict feed started")
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send) // writePump sends CloseMessage on closed channel
				delete(h.clients, c)
			}
			h.mu.Unlock()
			observability.DefaultMetrics.WSClientsConnected.Set(0)
			h.logger.Printf("verdict feed stopped")
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			observability.DefaultMetrics.WSClientsConnected.Set(float64(n))
			h.logger.Printf("client connected, total=%d", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			observability.DefaultMetrics.WSClientsConnected.Set(float64(n))
			h.logger.Printf("client disconnected, total=%d", n)

		case event := <-h.broadcast:
			h.totalEvents.Add(1)
			observability.DefaultMetrics.WSEventsBroadcast.Inc()
			payload, err := json.Marshal(event)
			if err != nil {
				h.logger.Printf("marshal event: %v", err)
				continue
			}

			h.mu.RLock()
			var slow []*client
			for c := range h.clients {
				if !c.subscription().matches(event.Verdict.Mint) {
					continue
				}
				select {
				case c.send <- payload:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()

			// A client that cannot keep up is dropped, never waited on.
			if len(slow) > 0 {
				h.mu.Lock()
				for _, c := range slow {
					if _, ok := h.clients[c]; ok {
						close(c.send)
						delete(h.clients, c)
					}
				}
				n := len(h.clients)
				h.mu.Unlock()
				observability.DefaultMetrics.WSClientsConnected.Set(float64(n))
			}
		}
	}
}

// Publish queues a verdict for broadcast. Non-blocking; drops the event
// if the feed is saturated.
func (h *Hub) Publish(v *domain.Verdict) {
	if v == nil {
		return
	}
	event := &Event{
		Type:      "verdict",
		Timestamp: time.Now().UnixMilli(),
		Verdict:   v,
	}
	select {
	case h.broadcast <- event:
	default:
		h.logger.Printf("broadcast channel full, dropping event for %s", v.Mint)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalEvents returns the number of events broadcast since start.
func (h *Hub) TotalEvents() int64 {
	return h.totalEvents.Load()
}

// HandleWebSocket upgrades HTTP to WebSocket and joins the feed.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-h.done:
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	h.mu.RLock()
	n := len(h.clients)
	h.mu.RUnlock()
	if n >= h.maxClients {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.register <- c

	go c.writePump()
	go c.readPump()
}

func (c *client) subscription() subscription {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sub
}

// readPump reads subscription updates and keeps the connection alive.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(64 * 1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, normalCloseCodes...) {
				c.hub.logger.Printf("websocket read error: %v", err)
			}
			break
		}

		var sub subscription
		if err := json.Unmarshal(message, &sub); err == nil {
			c.mu.Lock()
			c.sub = sub
			c.mu.Unlock()
		}
	}
}

// writePump writes queued events and pings the peer.
func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
