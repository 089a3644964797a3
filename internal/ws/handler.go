package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shootyourshot/backend/internal/game"
	"github.com/shootyourshot/backend/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

// Client is one websocket attached to one session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	sessionID string
	playerID  int
	sess      *session.Session
	send      chan []byte
	closeOnce sync.Once
}

// Hub tracks the clients watching each session.
type Hub struct {
	rooms      map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	upgrader   websocket.Upgrader
}

// NewHub creates a hub. checkOrigin may be nil to accept every origin.
func NewHub(checkOrigin func(r *http.Request) bool) *Hub {
	if checkOrigin == nil {
		checkOrigin = func(r *http.Request) bool { return true }
	}
	h := &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			h.attach(c)

		case c := <-h.unregister:
			h.mu.Lock()
			if room, ok := h.rooms[c.sessionID]; ok {
				if _, ok := room[c]; ok {
					delete(room, c)
					c.closeSend()
				}
				if len(room) == 0 {
					delete(h.rooms, c.sessionID)
				}
			}
			h.mu.Unlock()
			log.Printf("[WS] Player %d detached from session %s", c.playerID, c.sessionID)
		}
	}
}

func (h *Hub) attach(c *Client) {
	h.mu.Lock()
	room, ok := h.rooms[c.sessionID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.sessionID] = room
	}
	room[c] = struct{}{}
	size := len(room)
	h.mu.Unlock()
	log.Printf("[WS] Player %d attached to session %s (room_size=%d)", c.playerID, c.sessionID, size)
}

// RoomSize reports how many sockets watch a session.
func (h *Hub) RoomSize(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

// BroadcastToSession sends a message to every socket on a session.
func (h *Hub) BroadcastToSession(sessionID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("[WS] Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[sessionID] {
		select {
		case c.send <- data:
		default:
			log.Printf("[WS] Send buffer full for player %d in session %s, dropping message", c.playerID, sessionID)
		}
	}
}

// Serve upgrades the request and attaches the socket to the session. The
// caller has already checked that playerID owns it.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, s *session.Session, playerID int) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade error: %v", err)
		return
	}

	c := &Client{
		hub:       h,
		conn:      conn,
		sessionID: s.ID,
		playerID:  playerID,
		sess:      s,
		send:      make(chan []byte, sendBuffer),
	}
	// Attach before any pump runs so early frames are not dropped.
	h.attach(c)

	frames, unsubscribe := s.Subscribe()
	go c.forwardFrames(frames)
	go c.writePump()
	go c.readPump(unsubscribe)
}

func (c *Client) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

// sendTo queues data for c while it is still attached. The hub closes send
// under the write lock, so a detached client is skipped rather than sent to.
func (h *Hub) sendTo(c *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.rooms[c.sessionID][c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Send buffer full for player %d in session %s, dropping message", c.playerID, c.sessionID)
	}
}

func (c *Client) forwardFrames(frames <-chan game.Frame) {
	for f := range frames {
		data, err := encode(TypeFrame, f)
		if err != nil {
			log.Printf("[WS] Error encoding frame for session %s: %v", c.sessionID, err)
			continue
		}
		c.hub.sendTo(c, data)
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
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
				log.Printf("[WS] Write error for player %d: %v", c.playerID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping error for player %d: %v", c.playerID, err)
				return
			}
		}
	}
}

// readPump applies inbound messages to the session until the socket closes.
func (c *Client) readPump(unsubscribe func()) {
	defer func() {
		unsubscribe()
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] Read error for player %d: %v", c.playerID, err)
			}
			return
		}
		if reply := Apply(c.sess, message); reply != nil {
			c.hub.sendTo(c, reply)
		}
	}
}
