package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSSEConnSendAfterCloseFails(t *testing.T) {
	c := newSSEConn(nil)
	require.NoError(t, c.Send(Event{Name: "connect"}))

	c.Close(OutcomeComplete)
	assert.ErrorIs(t, c.Send(Event{Name: "heartbeat"}), errConnClosed)
}

func TestSSEConnFullBufferIsATransportError(t *testing.T) {
	var outcomes []Outcome
	c := newSSEConn(func(o Outcome) { outcomes = append(outcomes, o) })

	for i := 0; i < sendBuffer; i++ {
		require.NoError(t, c.Send(Event{Name: "heartbeat"}))
	}
	// nobody drains; the next send must tear the channel down
	assert.Error(t, c.Send(Event{Name: "heartbeat"}))
	assert.Equal(t, []Outcome{OutcomeError}, outcomes)
}

func TestSSEConnTerminalFiresExactlyOnce(t *testing.T) {
	var outcomes []Outcome
	c := newSSEConn(func(o Outcome) { outcomes = append(outcomes, o) })

	c.Close(OutcomeTimeout)
	c.Close(OutcomeError)
	c.Close(OutcomeComplete)

	assert.Equal(t, []Outcome{OutcomeTimeout}, outcomes)
}
