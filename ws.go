package main

import (
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Presence over websocket: a connected client counts as active, and each
// heartbeat refreshes last_active_at so the ranking engine's recency boost
// sees live activity without the client polling /me/ping.

// presenceClient represents one websocket connection for a user
type presenceClient struct {
	userID int
	conn   *websocket.Conn
}

// presenceHub tracks which users currently hold open connections
type presenceHub struct {
	clientsByUser map[int]map[*presenceClient]bool
	mu            sync.RWMutex
}

func newPresenceHub() *presenceHub {
	return &presenceHub{
		clientsByUser: make(map[int]map[*presenceClient]bool),
	}
}

func (h *presenceHub) register(c *presenceClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clientsByUser[c.userID] == nil {
		h.clientsByUser[c.userID] = make(map[*presenceClient]bool)
	}
	h.clientsByUser[c.userID][c] = true
}

func (h *presenceHub) unregister(c *presenceClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.clientsByUser[c.userID]; ok {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.clientsByUser, c.userID)
		}
	}
}

func (h *presenceHub) isConnected(userID int) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clientsByUser[userID]) > 0
}

var presence = newPresenceHub()

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Cross-origin policy is enforced by withCORS on the HTTP side;
		// the handshake itself is authenticated by token.
		return true
	},
}

const (
	presencePongWait   = 60 * time.Second
	presencePingPeriod = 45 * time.Second
)

// GET /ws/presence?token=... - hold open to be shown as online
func wsPresenceHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := getUserIDFromRequest(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.WithError(err).Warn("Websocket upgrade failed")
			return
		}

		client := &presenceClient{userID: userID, conn: conn}
		presence.register(client)
		touchLastActive(db, userID)

		go presenceWriteLoop(client)
		presenceReadLoop(db, client)
	}
}

// presenceReadLoop keeps the connection alive and refreshes activity on
// every frame the client sends. Returns when the connection drops.
func presenceReadLoop(db *sql.DB, c *presenceClient) {
	defer func() {
		presence.unregister(c)
		touchLastActive(db, c.userID)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(presencePongWait))
	c.conn.SetPongHandler(func(string) error {
		touchLastActive(db, c.userID)
		return c.conn.SetReadDeadline(time.Now().Add(presencePongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
		touchLastActive(db, c.userID)
		_ = c.conn.SetReadDeadline(time.Now().Add(presencePongWait))
	}
}

func presenceWriteLoop(c *presenceClient) {
	ticker := time.NewTicker(presencePingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
			return
		}
	}
}

func touchLastActive(db *sql.DB, userID int) {
	if _, err := db.Exec(`UPDATE profiles SET last_active_at = NOW() WHERE user_id = $1`, userID); err != nil {
		logrus.WithError(err).Warn("Failed to refresh last_active_at")
	}
}
