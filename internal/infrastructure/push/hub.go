// Package push fans stored notifications out to live websocket connections.
// Connections join rooms keyed by user id; a notification is written to every
// connection in its owner's room.
package push

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/api/metrics"
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// Event names carried in the envelope.
const (
	EventJoinRoom        = "joinRoom"
	EventNewNotification = "newNotification"
	EventError           = "error"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 32
)

// Envelope is the frame exchanged in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRoom is the payload of a joinRoom frame.
type JoinRoom struct {
	UserID string `json:"userId"`
}

// Identity is who a connection authenticated as.
type Identity struct {
	UserID string
	Role   string
}

// Authenticator turns the ?token= query parameter into an identity.
type Authenticator func(token string) (Identity, error)

type conn struct {
	ws    *websocket.Conn
	send  chan []byte
	ident Identity
	rooms map[string]struct{}
}

// Hub tracks rooms and their connections.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*conn]struct{}
	auth     Authenticator
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

func NewHub(auth Authenticator, log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*conn]struct{}),
		auth:  auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

// ServeWS upgrades an authenticated request and serves the connection until
// the peer goes away.
//
// @Summary      Notification push channel
// @Description  Websocket. Send {"event":"joinRoom","data":{"userId":"..."}}; receive newNotification frames.
// @Tags         notifications
// @Param        token  query  string  true  "access token"
// @Success      101
// @Failure      401  {object}  map[string]string
// @Router       /ws [get]
func (h *Hub) ServeWS(c echo.Context) error {
	ident, err := h.auth(c.QueryParam("token"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}

	cn := &conn{
		ws:    ws,
		send:  make(chan []byte, sendBuffer),
		ident: ident,
		rooms: make(map[string]struct{}),
	}
	metrics.WebsocketConnections.Inc()
	h.log.Debug().Str("user_id", ident.UserID).Msg("push connection opened")

	go h.writePump(cn)
	h.readPump(cn)
	return nil
}

// Deliver writes n to every connection in the owner's room. Slow connections
// whose buffer is full miss the frame; they can catch up with a full read.
func (h *Hub) Deliver(n *domain.Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		h.log.Error().Err(err).Msg("encode notification")
		return
	}
	frame, err := json.Marshal(Envelope{Event: EventNewNotification, Data: data})
	if err != nil {
		h.log.Error().Err(err).Msg("encode envelope")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for cn := range h.rooms[n.UserID] {
		select {
		case cn.send <- frame:
			delivered++
		default:
			h.log.Warn().Str("user_id", n.UserID).Msg("push buffer full, dropping notification")
		}
	}
	metrics.NotificationsPushedTotal.Add(float64(delivered))
}

// RoomSize reports how many connections joined userID's room.
func (h *Hub) RoomSize(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

func (h *Hub) join(cn *conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*conn]struct{})
		h.rooms[room] = members
	}
	members[cn] = struct{}{}
	cn.rooms[room] = struct{}{}
}

// leave removes cn from all rooms and closes its send queue. After leave
// returns no Deliver can reach cn.
func (h *Hub) leave(cn *conn) {
	h.mu.Lock()
	for room := range cn.rooms {
		delete(h.rooms[room], cn)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	close(cn.send)
	h.mu.Unlock()

	metrics.WebsocketConnections.Dec()
	h.log.Debug().Str("user_id", cn.ident.UserID).Msg("push connection closed")
}

func (h *Hub) readPump(cn *conn) {
	defer h.leave(cn)

	cn.ws.SetReadLimit(maxMessageSize)
	_ = cn.ws.SetReadDeadline(time.Now().Add(pongWait))
	cn.ws.SetPongHandler(func(string) error {
		return cn.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := cn.ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Str("user_id", cn.ident.UserID).Msg("push connection dropped")
			}
			return
		}

		switch env.Event {
		case EventJoinRoom:
			h.handleJoin(cn, env.Data)
		default:
			h.reply(cn, EventError, map[string]string{"message": "unknown event"})
		}
	}
}

func (h *Hub) handleJoin(cn *conn, raw json.RawMessage) {
	var jr JoinRoom
	if err := json.Unmarshal(raw, &jr); err != nil || jr.UserID == "" {
		h.reply(cn, EventError, map[string]string{"message": "userId is required"})
		return
	}
	if jr.UserID != cn.ident.UserID && cn.ident.Role != domain.RoleAdmin {
		h.reply(cn, EventError, map[string]string{"message": "forbidden"})
		return
	}
	h.join(cn, jr.UserID)
}

// reply queues a frame for cn from its own read goroutine, so the send
// channel is still open.
func (h *Hub) reply(cn *conn, event string, payload any) {
	data, _ := json.Marshal(payload)
	frame, _ := json.Marshal(Envelope{Event: event, Data: data})
	select {
	case cn.send <- frame:
	default:
	}
}

func (h *Hub) writePump(cn *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = cn.ws.Close()
	}()

	for {
		select {
		case frame, ok := <-cn.send:
			_ = cn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = cn.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := cn.ws.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = cn.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cn.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
