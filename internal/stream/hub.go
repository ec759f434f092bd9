package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/san-kum/poolsim/internal/render"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 512
	sendBuffer     = 16
)

// Message is the envelope every payload travels in.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	addr string
}

// Hub maintains the set of active clients.
type Hub struct {
	clients  map[*client]struct{}
	greeting []byte
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	logger   *log.Logger
	dropped  atomic.Int64
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger.With("component", "stream"),
	}
}

// SetGreeting sets the message queued to every client as it connects.
func (h *Hub) SetGreeting(typ string, v any) error {
	data, err := json.Marshal(Message{Type: typ, Data: v})
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.greeting = data
	h.mu.Unlock()
	return nil
}

// ServeHTTP upgrades the connection and registers a client for it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer), addr: r.RemoteAddr}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.greeting != nil {
		c.send <- h.greeting
	}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("client connected", "remote", c.addr, "clients", n)

	go c.writePump(h.logger)
	go h.readPump(c)
}

// Broadcast sends one frame to every client.
func (h *Hub) Broadcast(f render.Frame) error {
	return h.BroadcastMessage("frame", f)
}

// BroadcastMessage encodes v once and queues it for every client. Clients
// whose buffer is full miss this message.
func (h *Hub) BroadcastMessage(typ string, v any) error {
	data, err := json.Marshal(Message{Type: typ, Data: v})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.dropped.Add(1)
			h.logger.Debug("send buffer full, dropping message", "remote", c.addr, "type", typ)
		}
	}
	return nil
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped counts messages skipped for clients that could not keep up.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.logger.Info("client disconnected", "remote", c.addr, "clients", n)
	}
}

// readPump discards client input and notices when the peer goes away.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("read error", "remote", c.addr, "err", err)
			}
			return
		}
	}
}

// writePump writes messages to the WebSocket connection
func (c *client) writePump(logger *log.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("write error", "remote", c.addr, "err", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.Warn("ping error", "remote", c.addr, "err", err)
				return
			}
		}
	}
}
