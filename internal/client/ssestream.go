package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/atomic"

	"questforge/server/internal/protocol"
)

// ChatPayload is the POST /api/chat request body.
type ChatPayload struct {
	SessionID string `json:"sessionId,omitempty"`
	Message   string `json:"message"`
	Focus     string `json:"focus,omitempty"`
}

// ErrStreamBusy is returned when a stream request arrives while a
// previous one is still running. One chat turn at a time.
var ErrStreamBusy = errors.New("a chat stream is already in progress")

// SSEClient consumes the request-scoped chat stream. At most one stream
// runs at a time; a second call while busy returns ErrStreamBusy rather
// than interleaving two replies.
type SSEClient struct {
	endpoint string
	token    string
	http     *http.Client

	active atomic.Bool
}

// NewSSEClient creates a client for the chat endpoint. The token is
// sent as a bearer credential when non-empty.
func NewSSEClient(endpoint, token string) *SSEClient {
	return &SSEClient{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: 0}, // Streams run until the server closes them
	}
}

// Stream posts one chat message and delivers each decoded event through
// onEvent until the server closes the stream. Cancelling the context
// aborts the stream cleanly and is not reported as an error.
func (c *SSEClient) Stream(ctx context.Context, payload ChatPayload, onEvent func(protocol.SSEEvent)) error {
	if !c.active.CompareAndSwap(false, true) {
		return ErrStreamBusy
	}
	defer c.active.Store(false)

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.responseError(resp)
	}

	return c.consume(ctx, resp.Body, onEvent)
}

// IsActive reports whether a stream is currently running.
func (c *SSEClient) IsActive() bool {
	return c.active.Load()
}

// responseError extracts the server's JSON error body when present,
// falling back to the bare status code.
func (c *SSEClient) responseError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return errors.New(body.Error)
	}
	return fmt.Errorf("request failed: %d", resp.StatusCode)
}

// consume reads the body incrementally, carving complete events out of
// the rolling buffer and passing the residue between reads.
func (c *SSEClient) consume(ctx context.Context, body io.Reader, onEvent func(protocol.SSEEvent)) error {
	buffer := ""
	chunk := make([]byte, 4096)

	for {
		n, err := body.Read(chunk)
		if n > 0 {
			buffer += string(chunk[:n])
			var events []protocol.SSEEvent
			events, buffer = protocol.ExtractSSEEvents(buffer)
			for _, ev := range events {
				if onEvent != nil {
					onEvent(ev)
				}
			}
		}
		if err == io.EOF {
			if ev, ok := protocol.FlushSSEResidue(buffer); ok && onEvent != nil {
				onEvent(ev)
			}
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

// ReconnectSchedule returns the delays a caller retrying a failed turn
// should wait between attempts, mirroring the WebSocket backoff.
func ReconnectSchedule(baseDelay time.Duration, attempts int) []time.Duration {
	delays := make([]time.Duration, attempts)
	for i := 0; i < attempts; i++ {
		d := protocol.ReconnectDelay(baseDelay, i)
		if d > maxReconnectDelay {
			d = maxReconnectDelay
		}
		delays[i] = d
	}
	return delays
}
