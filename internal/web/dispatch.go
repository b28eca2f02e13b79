package web

import (
	"context"
	"encoding/json"
	"fmt"

	"questforge/server/internal/protocol"
)

// HandlerFunc processes one inbound envelope's payload.
type HandlerFunc func(ctx context.Context, payload json.RawMessage)

// HandlerMap maps inbound event types to their callbacks. A handler set
// is bound once per connection and never mutated afterwards.
type HandlerMap map[protocol.EventType]HandlerFunc

// Dispatch routes one parsed envelope. A type outside the vocabulary is
// answered with a single UNKNOWN_EVENT error envelope and nothing else;
// a known type with no registered handler is a silent no-op.
func Dispatch(ctx context.Context, emitter *Emitter, env *protocol.Envelope, handlers HandlerMap) {
	if !protocol.IsClientEvent(env.Type) {
		emitter.Error(protocol.StreamError{
			Code:      protocol.CodeUnknownEvent,
			Message:   fmt.Sprintf("unrecognized event type: %s", env.Type),
			Retryable: false,
		})
		return
	}

	if handler, ok := handlers[env.Type]; ok {
		handler(ctx, env.Payload)
	}
}
