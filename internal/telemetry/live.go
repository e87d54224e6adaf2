package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-edge/internal/cycle"
)

const (
	// liveSendBuffer is the per-client outbound buffer. A client that falls
	// further behind misses reports.
	liveSendBuffer = 16

	livePingInterval = 30 * time.Second
	liveWriteWait    = 10 * time.Second
	liveReadLimit    = 512
)

// liveMessage is the frame sent to live feed clients.
type liveMessage struct {
	Type          string       `json:"type"`
	PeriodSeconds float64      `json:"periodSeconds"`
	Report        cycle.Report `json:"report"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

// Hub streams cycle reports to WebSocket clients. It implements cycle.Sink.
type Hub struct {
	logger  Logger
	clients map[*liveClient]struct{}
	mu      sync.RWMutex
}

type liveClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an empty hub.
func NewHub(logger Logger) *Hub {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Hub{
		logger:  logger,
		clients: make(map[*liveClient]struct{}),
	}
}

// Record broadcasts r to every connected client. It never blocks on a slow client.
func (h *Hub) Record(_ context.Context, r cycle.Report) error {
	data, err := json.Marshal(liveMessage{
		Type:          "cycle",
		PeriodSeconds: r.Period.Seconds(),
		Report:        r,
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("live feed upgrade failed", "error", err)
		return
	}

	c := &liveClient{conn: conn, send: make(chan []byte, liveSendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// unregister removes c. Only the caller that removed it closes send.
func (h *Hub) unregister(c *liveClient) {
	h.mu.Lock()
	_, existed := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if existed {
		close(c.send)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		c.conn.Close()
		delete(h.clients, c)
	}
}

// readPump discards client frames and detects disconnects.
func (h *Hub) readPump(c *liveClient) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(liveReadLimit)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *liveClient) {
	ticker := time.NewTicker(livePingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			//nolint:errcheck // Best-effort deadline; write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if !ok {
				//nolint:errcheck // Best-effort close message
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // Best-effort deadline; ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
