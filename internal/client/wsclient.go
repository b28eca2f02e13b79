package client

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/atomic"

	"questforge/server/internal/protocol"
)

// ConnState is the connection lifecycle state.
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
	StateReconnecting ConnState = "reconnecting"
)

const (
	defaultBaseDelay     = time.Second
	maxReconnectDelay    = 30 * time.Second
	maxReconnectAttempts = 5
	writeTimeout         = 10 * time.Second
)

// Callbacks receive connection events. All are optional; nil callbacks
// are skipped. They run on the client's read goroutine.
type Callbacks struct {
	OnEnvelope    func(*protocol.Envelope)
	OnStateChange func(ConnState)
	OnError       func(protocol.StreamError)
}

// SentMessage is one chat message recorded locally at send time.
type SentMessage struct {
	Content string
	Focus   string
	SentAt  time.Time
}

// WSClient maintains a wizard WebSocket connection with automatic
// reconnection. Reconnect delays double per attempt from BaseDelay,
// capped at 30s, with up to 1s of jitter; after five failed attempts
// the client gives up and reports a network error.
type WSClient struct {
	url       string
	baseDelay time.Duration
	callbacks Callbacks

	mu    sync.Mutex
	conn  *websocket.Conn
	state ConnState
	sent  []SentMessage

	// closing is set by Close so a read error from a deliberate
	// shutdown does not trigger reconnection.
	closing atomic.Bool
}

// NewWSClient creates a client for the given ws:// or wss:// URL.
func NewWSClient(url string, callbacks Callbacks) *WSClient {
	return &WSClient{
		url:       url,
		baseDelay: defaultBaseDelay,
		callbacks: callbacks,
		state:     StateDisconnected,
	}
}

// Connect dials the server and starts the read loop. It returns once
// the initial dial settles; reconnection after that is automatic.
func (c *WSClient) Connect(ctx context.Context) error {
	c.setState(StateConnecting)

	conn, err := c.dial(ctx)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.setState(StateConnected)

	go c.readLoop(ctx)
	return nil
}

// State returns the current connection state.
func (c *WSClient) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Send marshals and writes one envelope. Returns an error when the
// connection is down; the caller decides whether to queue or drop.
func (c *WSClient) Send(eventType protocol.EventType, payload interface{}) error {
	env, err := protocol.NewEnvelope(eventType, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || c.state != StateConnected {
		return errors.New("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// SendMessage sends a chat message, optionally naming the focused dial.
// Content that trims to empty and a channel that is not open are both
// silent no-ops. The message is recorded locally before it goes on the
// wire so the caller can render it without waiting on the network.
func (c *WSClient) SendMessage(content, suggestedFocus string) error {
	content = strings.TrimSpace(content)
	if content == "" || c.State() != StateConnected {
		return nil
	}

	c.mu.Lock()
	c.sent = append(c.sent, SentMessage{Content: content, Focus: suggestedFocus, SentAt: time.Now()})
	c.mu.Unlock()

	return c.Send(protocol.EventChatUserMessage, protocol.UserMessagePayload{
		Content:        content,
		SuggestedFocus: suggestedFocus,
	})
}

// SentMessages returns the locally recorded outbound messages in send
// order.
func (c *WSClient) SentMessages() []SentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SentMessage, len(c.sent))
	copy(out, c.sent)
	return out
}

// Close shuts the connection down without triggering reconnection.
func (c *WSClient) Close() error {
	c.closing.Store(true)

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	c.setState(StateDisconnected)
	if conn == nil {
		return nil
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	return conn.Close()
}

func (c *WSClient) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.url, nil)
	return conn, err
}

func (c *WSClient) readLoop(ctx context.Context) {
	for {
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			return
		}

		_, raw, err := conn.ReadMessage()
		if err != nil {
			if c.closing.Load() || ctx.Err() != nil {
				return
			}
			log.Printf("[WSClient] Read error: %v", err)
			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		var env protocol.Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Type == "" {
			log.Printf("[WSClient] Dropping malformed frame")
			continue
		}
		if !protocol.IsServerEvent(env.Type) {
			log.Printf("[WSClient] Ignoring unknown event type: %s", env.Type)
			continue
		}
		if c.callbacks.OnEnvelope != nil {
			c.callbacks.OnEnvelope(&env)
		}
	}
}

// reconnect runs the backoff loop. Returns false when every attempt
// failed or the shutdown flag was raised mid-loop.
func (c *WSClient) reconnect(ctx context.Context) bool {
	c.setState(StateReconnecting)

	for attempt := 0; attempt < maxReconnectAttempts; attempt++ {
		delay := protocol.ReconnectDelay(c.baseDelay, attempt)
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
		delay += time.Duration(rand.Int63n(int64(time.Second)))

		log.Printf("[WSClient] Reconnect attempt %d in %s", attempt+1, delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			c.setState(StateDisconnected)
			return false
		}

		if c.closing.Load() {
			c.setState(StateDisconnected)
			return false
		}

		conn, err := c.dial(ctx)
		if err != nil {
			log.Printf("[WSClient] Reconnect attempt %d failed: %v", attempt+1, err)
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()
		c.setState(StateConnected)
		return true
	}

	c.setState(StateDisconnected)
	if c.callbacks.OnError != nil {
		c.callbacks.OnError(protocol.StreamError{
			Code:      protocol.CodeNetworkError,
			Message:   "Could not reach the server. Check your connection and try again.",
			Retryable: true,
		})
	}
	return false
}

func (c *WSClient) setState(s ConnState) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()

	if changed && c.callbacks.OnStateChange != nil {
		c.callbacks.OnStateChange(s)
	}
}
