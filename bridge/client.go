package bridge

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/focusflow/focusflow/bus"
	"github.com/focusflow/focusflow/timer"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 16
)

// frame is the envelope for everything pushed to a page client.
type frame struct {
	Type          string  `json:"type"`
	Quote         string  `json:"quote,omitempty"`
	CanSnooze     bool    `json:"canSnooze,omitempty"`
	AutoDismissMS int64   `json:"autoDismissMs,omitempty"`
	Intensity     float64 `json:"intensity"`
	Elapsed       int     `json:"elapsed,omitempty"`
	Limit         int     `json:"limit,omitempty"`
}

// inbound is a message received from a page client.
type inbound struct {
	Action string `json:"action"`
}

// pageClient is one connected page context. It renders the timer session's
// visual state by forwarding frames over the websocket, and feeds snooze and
// getTime requests back into the session.
type pageClient struct {
	tabID   int
	conn    *websocket.Conn
	send    chan frame
	session *timer.Session
	log     *slog.Logger

	mu     sync.Mutex
	closed bool
}

func newPageClient(tabID int, conn *websocket.Conn) *pageClient {
	return &pageClient{
		tabID: tabID,
		conn:  conn,
		send:  make(chan frame, sendBuffer),
		log:   slog.Default().With("tab", tabID),
	}
}

// push queues a frame, dropping it if the client cannot keep up. Visual
// updates are superseded by the next tick anyway.
func (c *pageClient) push(f frame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- f:
	default:
		c.log.Debug("dropping frame for slow client", "type", f.Type)
	}
}

// close marks the client torn down. Frames arriving from a command that
// raced the teardown are discarded.
func (c *pageClient) close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// ShowWarning implements timer.Surface.
func (c *pageClient) ShowWarning(w timer.Warning) {
	c.push(frame{
		Type:          "warning",
		Quote:         w.Quote,
		CanSnooze:     w.CanSnooze,
		AutoDismissMS: w.AutoDismiss.Milliseconds(),
	})
}

// ApplyDegradation implements timer.Surface.
func (c *pageClient) ApplyDegradation(intensity float64) {
	c.push(frame{Type: "degradation", Intensity: intensity})
}

// ClearVisuals implements timer.Surface.
func (c *pageClient) ClearVisuals() {
	c.push(frame{Type: "clear"})
}

// readPump consumes client messages until the connection drops.
func (c *pageClient) readPump(done func()) {
	defer func() {
		done()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
			) {
				c.log.Debug("page client read error", "error", err)
			}

			return
		}

		var msg inbound

		if err := json.Unmarshal(data, &msg); err != nil {
			c.log.Debug("malformed page message", "error", err)
			continue
		}

		switch bus.Action(msg.Action) {
		case bus.ActionSnooze:
			c.session.Snooze()
		case bus.ActionGetTime:
			reply := c.session.Time()
			c.push(frame{
				Type:    "time",
				Elapsed: reply.Elapsed,
				Limit:   reply.Limit,
			})
		}
	}
}

// writePump serializes all writes to the connection.
func (c *pageClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case f := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteJSON(f); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
