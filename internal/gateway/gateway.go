// Package gateway bridges websocket clients to room actors.
package gateway

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"redhanded/internal/codec"
	"redhanded/internal/room"
	"redhanded/redhand"
)

const (
	readLimit    = 65536
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Rooms is the part of the lobby the gateway needs.
type Rooms interface {
	Get(roomID string) *room.Room
	IsHost(roomID, token string) bool
}

// Connection represents a websocket client attached to one room.
type Connection struct {
	ID     string
	Player redhand.PlayerID
	Room   *room.Room
	Conn   *websocket.Conn
	Send   chan []byte

	gateway   *Gateway
	closeOnce sync.Once
	closed    chan struct{}
}

// Gateway manages websocket connections.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	rooms       Rooms
	log         logrus.FieldLogger
}

func New(rooms Rooms, log logrus.FieldLogger) *Gateway {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Gateway{
		connections: make(map[string]*Connection),
		rooms:       rooms,
		log:         log.WithField("component", "gateway"),
	}
}

// HandleWebSocket serves /ws?room=&player=&name=&token=. A valid host token
// makes the connection a host; player may be empty for a presenter screen.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roomID := strings.TrimSpace(q.Get("room"))
	rm := g.rooms.Get(roomID)
	if rm == nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	host := false
	if token := q.Get("token"); token != "" {
		if !g.rooms.IsHost(roomID, token) {
			http.Error(w, "invalid host token", http.StatusUnauthorized)
			return
		}
		host = true
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Warn("upgrade failed")
		return
	}

	c := &Connection{
		ID:      uuid.NewString(),
		Player:  redhand.PlayerID(strings.TrimSpace(q.Get("player"))),
		Room:    rm,
		Conn:    ws,
		Send:    make(chan []byte, sendBuffer),
		gateway: g,
		closed:  make(chan struct{}),
	}

	g.mu.Lock()
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	go c.writePump()

	err = rm.Submit(room.Event{
		Type:   room.EventConnect,
		ConnID: c.ID,
		Player: c.Player,
		Name:   strings.TrimSpace(q.Get("name")),
		Host:   host,
		Send:   c.enqueue,
	})
	if err != nil {
		g.log.WithError(err).WithField("room", roomID).Warn("attach failed")
		g.removeConnection(c)
		c.close()
		return
	}

	g.log.WithFields(logrus.Fields{"conn": c.ID, "room": roomID, "player": c.Player, "host": host, "total": total}).Info("client connected")
	go c.readPump()
}

func (c *Connection) readPump() {
	defer func() {
		err := c.Room.Submit(room.Event{Type: room.EventDisconnect, ConnID: c.ID})
		if err != nil && !errors.Is(err, room.ErrRoomClosed) {
			c.gateway.log.WithError(err).Warn("detach failed")
		}
		c.gateway.removeConnection(c)
		c.close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.gateway.log.WithError(err).Warn("read error")
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Connection) handleMessage(data []byte) {
	cmd, err := codec.DecodeCommand(data)
	if err != nil {
		c.sendNotice(codec.NoticeError, err.Error())
		return
	}
	err = c.Room.Submit(room.Event{Type: room.EventCommand, ConnID: c.ID, Command: cmd})
	if errors.Is(err, room.ErrRoomClosed) {
		c.sendNotice(codec.NoticeError, err.Error())
	}
}

func (c *Connection) sendNotice(kind, msg string) {
	data, err := codec.EncodeNotice(0, kind, msg)
	if err != nil {
		return
	}
	c.enqueue(data)
}

// enqueue hands data to the write pump, dropping it when the buffer is full.
func (c *Connection) enqueue(data []byte) {
	select {
	case <-c.closed:
		return
	default:
	}
	select {
	case c.Send <- data:
	default:
		c.gateway.log.WithField("conn", c.ID).Warn("send buffer full, message dropped")
	}
}

func (c *Connection) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.closed:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.connections, c.ID)
	g.log.WithFields(logrus.Fields{"conn": c.ID, "total": len(g.connections)}).Info("client disconnected")
}

// ConnectionCount is the number of open websocket clients.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}
