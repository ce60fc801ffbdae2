package devserver

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"ukonnect/internal/api"
	"ukonnect/internal/middleware"
)

const (
	pingPeriod = 30 * time.Second
	pongWait   = 60 * time.Second
	writeWait  = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// dev only
	CheckOrigin: func(r *http.Request) bool { return true },
}

// peer serializes writes; gorilla connections allow one writer at a time.
type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) write(fn func(*websocket.Conn) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return fn(p.conn)
}

// Hub tracks one push connection per user. A new connection from the same
// user replaces the old one.
type Hub struct {
	connections map[int64]*peer
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{connections: make(map[int64]*peer)}
}

func (h *Hub) register(userID int64, conn *websocket.Conn) *peer {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if old, exists := h.connections[userID]; exists {
		_ = old.conn.Close()
	}
	p := &peer{conn: conn}
	h.connections[userID] = p
	return p
}

// unregister drops p if it is still the user's current connection.
func (h *Hub) unregister(userID int64, p *peer) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if cur, exists := h.connections[userID]; exists && cur == p {
		delete(h.connections, userID)
	}
	_ = p.conn.Close()
}

func (h *Hub) SendToUser(userID int64, ev api.PushEvent) bool {
	h.mutex.RLock()
	p, exists := h.connections[userID]
	h.mutex.RUnlock()

	if !exists {
		return false
	}
	if err := p.write(func(c *websocket.Conn) error { return c.WriteJSON(ev) }); err != nil {
		h.unregister(userID, p)
		return false
	}
	return true
}

func (h *Hub) OnlineCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for userID, p := range h.connections {
		_ = p.conn.Close()
		delete(h.connections, userID)
	}
}

// handlePush upgrades GET /ws/push. The route sits behind JWTAuth, which
// also accepts ?token= for clients that cannot set headers.
func (s *Server) handlePush(c *gin.Context) {
	userID := c.GetInt64(middleware.CtxUserID)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	p := s.hub.register(userID, conn)
	s.log.Info("push client connected", zap.Int64("user_id", userID))
	defer func() {
		s.hub.unregister(userID, p)
		s.log.Info("push client disconnected", zap.Int64("user_id", userID))
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go pingLoop(p, done)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.log.Debug("push read failed", zap.Int64("user_id", userID), zap.Error(err))
			}
			return
		}
	}
}

func pingLoop(p *peer, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			err := p.write(func(c *websocket.Conn) error {
				return c.WriteMessage(websocket.PingMessage, nil)
			})
			if err != nil {
				return
			}
		}
	}
}
