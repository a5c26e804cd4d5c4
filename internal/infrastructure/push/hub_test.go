package push

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func stubAuth(token string) (Identity, error) {
	switch token {
	case "t-u1":
		return Identity{UserID: "u1", Role: domain.RoleUser}, nil
	case "t-admin":
		return Identity{UserID: "admin", Role: domain.RoleAdmin}, nil
	}
	return Identity{}, errors.New("bad token")
}

func newTestServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(stubAuth, zerolog.Nop())
	e := echo.New()
	e.GET("/ws", hub.ServeWS)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func joinRoom(t *testing.T, ws *websocket.Conn, userID string) {
	t.Helper()
	data, _ := json.Marshal(JoinRoom{UserID: userID})
	if err := ws.WriteJSON(Envelope{Event: EventJoinRoom, Data: data}); err != nil {
		t.Fatalf("write joinRoom: %v", err)
	}
}

func waitRoom(t *testing.T, hub *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.RoomSize(userID) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("room %s: expected %d members, got %d", userID, want, hub.RoomSize(userID))
}

func readEnvelope(t *testing.T, ws *websocket.Conn) Envelope {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env Envelope
	if err := ws.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	return env
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHub_DeliversToJoinedRoom(t *testing.T) {
	hub, srv := newTestServer(t)
	ws := dial(t, srv, "t-u1")
	joinRoom(t, ws, "u1")
	waitRoom(t, hub, "u1", 1)

	hub.Deliver(&domain.Notification{ID: "n1", UserID: "u1", Message: "Shipment LX-1001 is now in transit"})

	env := readEnvelope(t, ws)
	if env.Event != EventNewNotification {
		t.Fatalf("expected %s, got %s", EventNewNotification, env.Event)
	}
	var n domain.Notification
	if err := json.Unmarshal(env.Data, &n); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if n.ID != "n1" || n.Message != "Shipment LX-1001 is now in transit" {
		t.Errorf("unexpected payload: %+v", n)
	}
}

func TestHub_OtherRoomsDoNotReceive(t *testing.T) {
	hub, srv := newTestServer(t)
	ws := dial(t, srv, "t-u1")
	joinRoom(t, ws, "u1")
	waitRoom(t, hub, "u1", 1)

	hub.Deliver(&domain.Notification{ID: "n-other", UserID: "u2"})
	hub.Deliver(&domain.Notification{ID: "n-mine", UserID: "u1"})

	env := readEnvelope(t, ws)
	var n domain.Notification
	_ = json.Unmarshal(env.Data, &n)
	if n.ID != "n-mine" {
		t.Errorf("expected only own notification, got %q", n.ID)
	}
}

func TestHub_JoinForeignRoomForbidden(t *testing.T) {
	hub, srv := newTestServer(t)
	ws := dial(t, srv, "t-u1")
	joinRoom(t, ws, "u2")

	env := readEnvelope(t, ws)
	if env.Event != EventError || !strings.Contains(string(env.Data), "forbidden") {
		t.Fatalf("expected forbidden error, got %s %s", env.Event, env.Data)
	}
	if hub.RoomSize("u2") != 0 {
		t.Error("user must not join a foreign room")
	}
}

func TestHub_AdminMayJoinAnyRoom(t *testing.T) {
	hub, srv := newTestServer(t)
	ws := dial(t, srv, "t-admin")
	joinRoom(t, ws, "u1")
	waitRoom(t, hub, "u1", 1)
}

func TestHub_RejectsMissingToken(t *testing.T) {
	_, srv := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func TestHub_DisconnectLeavesRoom(t *testing.T) {
	hub, srv := newTestServer(t)
	ws := dial(t, srv, "t-u1")
	joinRoom(t, ws, "u1")
	waitRoom(t, hub, "u1", 1)

	_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = ws.Close()
	waitRoom(t, hub, "u1", 0)

	// Delivering to an empty room must not panic on a closed send queue.
	hub.Deliver(&domain.Notification{ID: "late", UserID: "u1"})
}
