package watch

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/vk/rockiq/internal/ctxlog"
)

var upgrader = websocket.Upgrader{
	// The editing surface is served from arbitrary local origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Notification is the frame broadcast to connected editors.
type Notification struct {
	Event string `json:"event"`
}

// DocumentChanged tells clients to re-fetch the graph for their sequence.
var DocumentChanged = Notification{Event: "document_changed"}

// Hub fans a notification out to every connected websocket client.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[*websocket.Conn]struct{})}
}

// Handler upgrades the request and registers the connection. The read loop
// only exists to detect the client going away.
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := ctxlog.FromContext(c.Request.Context())
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("Websocket upgrade failed.", "error", err)
			return
		}
		h.add(conn)
		logger.Debug("Editor connected.", "remote_addr", conn.RemoteAddr().String())
		go func() {
			defer func() {
				h.remove(conn)
				conn.Close()
			}()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}

// Broadcast sends the notification to all connected clients, dropping any
// connection that fails to accept it.
func (h *Hub) Broadcast(n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(n); err != nil {
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// ClientCount returns the number of connected editors.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func (h *Hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = struct{}{}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}
