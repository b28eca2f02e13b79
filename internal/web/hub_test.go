package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questforge/server/internal/protocol"
)

func TestWriteEnvelopeQueues(t *testing.T) {
	c := &Client{ID: "c1", Send: make(chan []byte, 4)}

	env, err := protocol.NewEnvelope(protocol.EventConnected, protocol.ConnectedPayload{SessionID: "c1"})
	require.NoError(t, err)
	c.WriteEnvelope(env)

	require.Len(t, c.Send, 1)
	assert.Contains(t, string(<-c.Send), `"connected"`)
}

func TestWriteEnvelopeToClosedClientIsDropped(t *testing.T) {
	c := &Client{ID: "c1", Send: make(chan []byte, 4), closed: true}

	env, err := protocol.NewEnvelope(protocol.EventError, protocol.ErrorPayload{Code: protocol.CodeUnknown, Message: "x"})
	require.NoError(t, err)
	c.WriteEnvelope(env)

	assert.Empty(t, c.Send)
}

func TestWriteEnvelopeFullBufferIsDropped(t *testing.T) {
	c := &Client{ID: "c1", Send: make(chan []byte, 1)}
	c.Send <- []byte("occupied")

	env, err := protocol.NewEnvelope(protocol.EventConnected, protocol.ConnectedPayload{SessionID: "c1"})
	require.NoError(t, err)

	// Must not block or panic when the buffer is saturated.
	c.WriteEnvelope(env)
	assert.Len(t, c.Send, 1)
}
