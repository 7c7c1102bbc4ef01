package sse

import (
	"errors"
	"sync"
)

// Conn is a one-way push channel to a single client. A connection serializes
// its own writes, so a single client sees events in the order they were
// issued; nothing is guaranteed across different connections.
type Conn interface {
	// Send queues ev for delivery. An error means the channel is dead or the
	// client cannot keep up; the connection has already begun tearing down.
	Send(ev Event) error

	// Close terminates the channel with the given outcome. Only the first
	// call wins; later calls are no-ops.
	Close(outcome Outcome)
}

var errConnClosed = errors.New("push connection closed")

const sendBuffer = 16

// sseConn buffers events for the gin event-stream handler to drain.
type sseConn struct {
	events chan Event
	done   chan struct{}

	once     sync.Once
	terminal func(Outcome)
}

func newSSEConn(terminal func(Outcome)) *sseConn {
	return &sseConn{
		events:   make(chan Event, sendBuffer),
		done:     make(chan struct{}),
		terminal: terminal,
	}
}

func (c *sseConn) Send(ev Event) error {
	select {
	case <-c.done:
		return errConnClosed
	default:
	}

	select {
	case c.events <- ev:
		return nil
	case <-c.done:
		return errConnClosed
	default:
		// the handler stopped draining; treat like a broken transport
		c.Close(OutcomeError)
		return errConnClosed
	}
}

func (c *sseConn) Close(outcome Outcome) {
	c.once.Do(func() {
		close(c.done)
		if c.terminal != nil {
			c.terminal(outcome)
		}
	})
}
