package api

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/rogue-civ/internal/economy"
	"github.com/talgya/rogue-civ/internal/engine"
	"github.com/talgya/rogue-civ/internal/entities"
)

// Websocket settings.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
	maxStreamConns = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// tickSummary is pushed to stream subscribers after every tick.
type tickSummary struct {
	Tick   uint64            `json:"tick"`
	Player entities.Position `json:"player"`
	Ledger economy.Ledger    `json:"ledger"`
	Stats  engine.SimStats   `json:"stats"`
	Events []engine.Event    `json:"events"` // Only events new since the previous tick
}

func newTickSummary(snap engine.Snapshot, after uint64) tickSummary {
	sum := tickSummary{
		Tick:   snap.Tick,
		Player: snap.Player,
		Ledger: snap.Ledger,
		Stats:  snap.Stats,
		Events: engine.EventsSince(snap.Events, after),
	}
	if sum.Events == nil {
		sum.Events = []engine.Event{}
	}
	return sum
}

// hub fans tick summaries out to websocket subscribers. Slow subscribers
// miss summaries rather than stall the engine.
type hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

// register adds c and queues first as its opening message, if given.
func (h *hub) register(c *client, first *tickSummary) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients) >= maxStreamConns {
		return false
	}
	h.clients[c] = struct{}{}
	if first != nil {
		c.send <- *first
	}
	return true
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) broadcast(msg tickSummary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			slog.Debug("stream subscriber lagging", "remote", c.remote, "tick", msg.Tick)
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// client is one websocket subscriber.
type client struct {
	conn   *websocket.Conn
	send   chan tickSummary
	remote string
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan tickSummary, sendBuffer), remote: r.RemoteAddr}
	// Catch-up: the latest state, with all retained events.
	var first *tickSummary
	if snap, ok := s.current(); ok {
		sum := newTickSummary(*snap, 0)
		first = &sum
	}
	if !s.hub.register(c, first) {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many subscribers"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}
	slog.Info("stream client connected", "remote", c.remote)

	go c.writePump()
	c.readPump(s.hub)
}

// readPump discards client messages and detects disconnects.
func (c *client) readPump(h *hub) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
		slog.Info("stream client disconnected", "remote", c.remote)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("stream read error", "remote", c.remote, "error", err)
			}
			return
		}
	}
}

// writePump sends summaries and pings until the send channel closes.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				slog.Debug("stream write failed", "remote", c.remote, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
