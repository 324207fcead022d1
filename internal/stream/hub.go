package stream

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 2 * time.Second

// Hub is the set of connected clients. Each connection has its own write
// lock; gorilla connections allow one concurrent writer.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]*sync.Mutex)}
}

func (h *Hub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = &sync.Mutex{}
	h.mu.Unlock()
}

func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send writes v as JSON to one registered client.
func (h *Hub) Send(conn *websocket.Conn, v any) error {
	h.mu.RLock()
	mu, ok := h.clients[conn]
	h.mu.RUnlock()
	if !ok {
		return websocket.ErrCloseSent
	}
	return write(conn, mu, v)
}

type client struct {
	conn *websocket.Conn
	mu   *sync.Mutex
}

func (h *Hub) snapshot() []client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]client, 0, len(h.clients))
	for conn, mu := range h.clients {
		out = append(out, client{conn, mu})
	}
	return out
}

// Broadcast writes v to every client and drops the ones that fail. It
// returns the number of clients dropped. Writes happen outside the hub lock.
func (h *Hub) Broadcast(v any) int {
	var failed []*websocket.Conn
	for _, c := range h.snapshot() {
		if err := write(c.conn, c.mu, v); err != nil {
			failed = append(failed, c.conn)
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
			conn.Close()
		}
		h.mu.Unlock()
	}
	return len(failed)
}

// CloseAll disconnects every client.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	for conn, mu := range h.clients {
		mu.Lock()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		mu.Unlock()
		conn.Close()
		delete(h.clients, conn)
	}
	h.mu.Unlock()
}

func write(conn *websocket.Conn, mu *sync.Mutex, v any) error {
	mu.Lock()
	defer mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
