package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/render"
)

const (
	// sendBuffer is the number of scenes queued per client before new ones
	// are dropped.
	sendBuffer = 8
	writeWait  = time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writeLoop() {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.conn.Close()
			return
		}
	}
}

// Hub broadcasts every rendered scene as JSON to connected WebSocket
// clients. It implements render.Renderer and never blocks the tick loop on
// a slow client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	last    []byte
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// Render encodes scene and queues it for every client.
func (h *Hub) Render(_ *gocv.Mat, scene render.Scene) error {
	msg, err := json.Marshal(scene)
	if err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = msg
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
	return nil
}

// Last returns the JSON of the most recent scene.
func (h *Hub) Last() ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.last, h.last != nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP handles WebSocket upgrade requests. A new client first receives
// the latest scene, if any.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	go c.writeLoop()

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		close(c.send)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		c.conn.Close()
	}
}
