// Package notify keeps a user's notification list current: one full read on
// Refresh, plus live newNotification frames from the push channel.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/naijalogix/shipment-tracker/internal/client/session"
	"github.com/naijalogix/shipment-tracker/internal/core/domain"
	"github.com/naijalogix/shipment-tracker/internal/infrastructure/push"
)

var (
	ErrUnauthenticated = errors.New("notify: session is not authenticated")
	ErrAlreadyOpen     = errors.New("notify: channel already open")
	ErrClosed          = errors.New("notify: channel closed")
)

const closeWait = time.Second

// Lister performs the full read behind Refresh.
type Lister interface {
	Notifications(ctx context.Context) ([]domain.Notification, error)
}

// Channel is safe for concurrent use. Open and Close bracket the live
// connection; Refresh works with or without it.
type Channel struct {
	pushURL string
	lister  Lister
	dialer  *websocket.Dialer
	log     zerolog.Logger

	mu        sync.Mutex
	items     []domain.Notification
	inflight  int
	pending   []domain.Notification
	listeners []func([]domain.Notification)

	ws      *websocket.Conn
	done    chan struct{}
	dialing bool
	closed  bool
}

// New returns a closed channel. pushURL is the websocket endpoint, e.g.
// ws://host/ws.
func New(pushURL string, lister Lister, log zerolog.Logger) *Channel {
	return &Channel{
		pushURL: pushURL,
		lister:  lister,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		log:     log,
	}
}

// PushURLFromAPI derives the websocket endpoint from the REST base URL.
func PushURLFromAPI(apiURL string) string {
	u := strings.TrimRight(apiURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws"
}

// Open dials the push endpoint once, joins the session user's room and starts
// the reader. A dropped connection is not redialled.
func (c *Channel) Open(ctx context.Context, s session.Session) error {
	if !s.Authenticated() || s.UserID == "" {
		return ErrUnauthenticated
	}

	u, err := url.Parse(c.pushURL)
	if err != nil {
		return fmt.Errorf("notify: push url: %w", err)
	}
	q := u.Query()
	q.Set("token", s.Token)
	u.RawQuery = q.Encode()

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.ws != nil || c.dialing:
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.dialing = true
	c.mu.Unlock()

	// The handshake runs unlocked so readers of the list never wait on it.
	ws, err := c.join(ctx, u.String(), s.UserID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dialing = false
	if err != nil {
		return err
	}
	if c.closed {
		_ = ws.Close()
		return ErrClosed
	}
	c.ws = ws
	c.done = make(chan struct{})
	go c.read(ws, c.done)
	return nil
}

func (c *Channel) join(ctx context.Context, target, userID string) (*websocket.Conn, error) {
	ws, _, err := c.dialer.DialContext(ctx, target, nil)
	if err != nil {
		return nil, fmt.Errorf("notify: dial: %w", err)
	}
	data, _ := json.Marshal(push.JoinRoom{UserID: userID})
	if err := ws.WriteJSON(push.Envelope{Event: push.EventJoinRoom, Data: data}); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("notify: join room: %w", err)
	}
	return ws, nil
}

func (c *Channel) read(ws *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var env push.Envelope
		if err := ws.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug().Err(err).Msg("push connection lost")
			}
			return
		}

		switch env.Event {
		case push.EventNewNotification:
			var n domain.Notification
			if err := json.Unmarshal(env.Data, &n); err != nil {
				c.log.Warn().Err(err).Msg("dropping malformed notification")
				continue
			}
			c.prepend(n)
		case push.EventError:
			c.log.Warn().RawJSON("data", env.Data).Msg("push channel error")
		}
	}
}

// prepend adds a pushed notification to the front unless it is already listed.
func (c *Channel) prepend(n domain.Notification) {
	c.mu.Lock()
	if indexOf(c.items, n.ID) >= 0 {
		c.mu.Unlock()
		return
	}
	c.items = append([]domain.Notification{n}, c.items...)
	if c.inflight > 0 {
		c.pending = append([]domain.Notification{n}, c.pending...)
	}
	snapshot, listeners := c.snapshotLocked()
	c.mu.Unlock()

	notifyAll(listeners, snapshot)
}

// Refresh replaces the list with a full read. Notifications pushed while the
// read was in flight and missing from its result are kept in front of it, so
// the list is always a superset of the refreshed set with no duplicate ids.
func (c *Channel) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	list, err := c.lister.Notifications(ctx)

	c.mu.Lock()
	c.inflight--
	if err != nil {
		if c.inflight == 0 {
			c.pending = nil
		}
		c.mu.Unlock()
		return fmt.Errorf("notify: refresh: %w", err)
	}

	merged := make([]domain.Notification, 0, len(c.pending)+len(list))
	for _, p := range c.pending {
		if indexOf(list, p.ID) < 0 && indexOf(merged, p.ID) < 0 {
			merged = append(merged, p)
		}
	}
	merged = append(merged, list...)
	c.items = merged
	if c.inflight == 0 {
		c.pending = nil
	}
	snapshot, listeners := c.snapshotLocked()
	c.mu.Unlock()

	notifyAll(listeners, snapshot)
	return nil
}

// Items returns the current list, newest first.
func (c *Channel) Items() []domain.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Unread counts notifications not yet marked read.
func (c *Channel) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// Subscribe registers fn to receive the list after every change.
func (c *Channel) Subscribe(fn func([]domain.Notification)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Close shuts the connection and waits for the reader to exit. It is safe to
// call more than once and on a channel that was never opened. A closed
// channel cannot be reopened; an Open racing with Close drops its socket.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	ws, done := c.ws, c.done
	c.ws = nil
	c.listeners = nil
	c.mu.Unlock()

	if ws == nil {
		return nil
	}
	_ = ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(closeWait))
	err := ws.Close()
	<-done
	return err
}

func (c *Channel) snapshotLocked() ([]domain.Notification, []func([]domain.Notification)) {
	out := make([]domain.Notification, len(c.items))
	copy(out, c.items)
	return out, slices.Clone(c.listeners)
}

func notifyAll(listeners []func([]domain.Notification), items []domain.Notification) {
	for _, l := range listeners {
		l(items)
	}
}

func indexOf(items []domain.Notification, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
