package sse

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second
	pongWait  = 75 * time.Second
	// pingPeriod must be < pongWait
	pingPeriod = 30 * time.Second
)

// wsEnvelope wraps every WS frame so both transports speak the same
// event/payload contract.
type wsEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// wsConn is the websocket-backed push channel.
type wsConn struct {
	raw *websocket.Conn
	mu  sync.Mutex

	done     chan struct{}
	once     sync.Once
	terminal func(Outcome)
}

func newWSConn(raw *websocket.Conn, terminal func(Outcome)) *wsConn {
	return &wsConn{
		raw:      raw,
		done:     make(chan struct{}),
		terminal: terminal,
	}
}

func (c *wsConn) Send(ev Event) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}

	c.mu.Lock()
	_ = c.raw.SetWriteDeadline(time.Now().Add(writeWait))
	err := c.raw.WriteJSON(wsEnvelope{Event: ev.Name, Data: ev.Data})
	c.mu.Unlock()

	if err != nil {
		c.Close(OutcomeError)
		return err
	}
	return nil
}

func (c *wsConn) Close(outcome Outcome) {
	c.once.Do(func() {
		close(c.done)
		_ = c.raw.Close()
		if c.terminal != nil {
			c.terminal(outcome)
		}
	})
}

// readLoop discards inbound frames; the channel is one-way. It exists to
// notice the peer going away and to enforce the pong deadline.
func (c *wsConn) readLoop() {
	c.raw.SetReadLimit(512)
	_ = c.raw.SetReadDeadline(time.Now().Add(pongWait))
	c.raw.SetPongHandler(func(string) error {
		return c.raw.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.raw.ReadMessage(); err != nil {
			c.Close(readOutcome(err))
			return
		}
	}
}

func (c *wsConn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.mu.Lock()
			_ = c.raw.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.raw.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				c.Close(OutcomeError)
				return
			}
		}
	}
}

func readOutcome(err error) Outcome {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return OutcomeComplete
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return OutcomeTimeout
	}
	return OutcomeError
}
