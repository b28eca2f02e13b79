package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questforge/server/internal/protocol"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// echoServer upgrades, forwards every inbound text frame onto received,
// and answers each with a canned dial:updated envelope.
func echoServer(t *testing.T, received chan []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if received != nil {
				select {
				case received <- msg:
				default:
				}
			}
			reply := `{"type":"dial:updated","payload":{"dialId":"partySize","value":5,"confidence":"high"}}`
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				return
			}
		}
	}))
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestWSClientSendAndReceive(t *testing.T) {
	wire := make(chan []byte, 1)
	ts := echoServer(t, wire)
	defer ts.Close()

	received := make(chan *protocol.Envelope, 1)
	c := NewWSClient(wsURL(ts), Callbacks{
		OnEnvelope: func(env *protocol.Envelope) {
			select {
			case received <- env:
			default:
			}
		},
	})

	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()
	assert.Equal(t, StateConnected, c.State())

	require.NoError(t, c.SendMessage("We have 5 players", "partySize"))

	select {
	case raw := <-wire:
		var env protocol.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		assert.Equal(t, protocol.EventChatUserMessage, env.Type)
		var p protocol.UserMessagePayload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		assert.Equal(t, "We have 5 players", p.Content)
		assert.Equal(t, "partySize", p.SuggestedFocus)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the frame on the wire")
	}

	select {
	case env := <-received:
		assert.Equal(t, protocol.EventDialUpdated, env.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the server reply")
	}
}

func TestWSClientSendMessageBlankIsNoOp(t *testing.T) {
	wire := make(chan []byte, 1)
	ts := echoServer(t, wire)
	defer ts.Close()

	c := NewWSClient(wsURL(ts), Callbacks{})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	require.NoError(t, c.SendMessage("   ", "partySize"))

	select {
	case raw := <-wire:
		t.Fatalf("blank message reached the wire: %s", raw)
	case <-time.After(200 * time.Millisecond):
	}
	assert.Empty(t, c.SentMessages())
}

func TestWSClientSendMessageRecordsLocally(t *testing.T) {
	ts := echoServer(t, nil)
	defer ts.Close()

	c := NewWSClient(wsURL(ts), Callbacks{})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	require.NoError(t, c.SendMessage("  We have 5 players  ", "partySize"))

	sent := c.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "We have 5 players", sent[0].Content)
	assert.Equal(t, "partySize", sent[0].Focus)
	assert.False(t, sent[0].SentAt.IsZero())
}

func TestWSClientConnectFailure(t *testing.T) {
	c := NewWSClient("ws://127.0.0.1:1/ws", Callbacks{})
	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestWSClientSendWhileDisconnected(t *testing.T) {
	c := NewWSClient("ws://127.0.0.1:1/ws", Callbacks{})

	// Chat sends on a closed channel are dropped without recording.
	require.NoError(t, c.SendMessage("hello", ""))
	assert.Empty(t, c.SentMessages())

	// The raw envelope path still reports the failure.
	require.Error(t, c.Send(protocol.EventDialConfirm, protocol.DialConfirmPayload{DialID: "tone"}))
}

func TestWSClientCloseDoesNotReconnect(t *testing.T) {
	ts := echoServer(t, nil)
	defer ts.Close()

	states := make(chan ConnState, 8)
	c := NewWSClient(wsURL(ts), Callbacks{
		OnStateChange: func(s ConnState) { states <- s },
	})

	require.NoError(t, c.Connect(context.Background()))
	require.NoError(t, c.Close())

	// Drain state changes briefly; reconnecting must never appear.
	deadline := time.After(500 * time.Millisecond)
	for {
		select {
		case s := <-states:
			assert.NotEqual(t, StateReconnecting, s)
		case <-deadline:
			assert.Equal(t, StateDisconnected, c.State())
			return
		}
	}
}

func TestWSClientDropsMalformedFrames(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte("not json at all"))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"totally:bogus","payload":{}}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"chat:assistant_start","payload":{"messageId":"m1"}}`))
		// Hold the connection open until the client disconnects.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer ts.Close()

	received := make(chan *protocol.Envelope, 2)
	c := NewWSClient(wsURL(ts), Callbacks{
		OnEnvelope: func(env *protocol.Envelope) { received <- env },
	})
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	select {
	case env := <-received:
		// The malformed frame and the out-of-vocabulary type are both
		// dropped; the first delivery is the valid one behind them.
		assert.Equal(t, protocol.EventChatAssistantStart, env.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for envelope")
	}
}

func TestReconnectDelayDoubles(t *testing.T) {
	base := 250 * time.Millisecond
	var prev time.Duration
	for attempt := 0; attempt < 5; attempt++ {
		d := protocol.ReconnectDelay(base, attempt)
		if attempt > 0 {
			assert.Equal(t, prev*2, d)
		}
		prev = d
	}
}

func TestReconnectScheduleCaps(t *testing.T) {
	delays := ReconnectSchedule(10*time.Second, 5)
	require.Len(t, delays, 5)
	assert.Equal(t, 10*time.Second, delays[0])
	assert.Equal(t, 20*time.Second, delays[1])
	for _, d := range delays[2:] {
		assert.Equal(t, maxReconnectDelay, d)
	}
}
