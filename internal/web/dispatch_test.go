package web

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questforge/server/internal/protocol"
)

// recorder captures emitted envelopes for assertions.
type recorder struct {
	envelopes []protocol.Envelope
}

func (r *recorder) WriteEnvelope(env protocol.Envelope) {
	r.envelopes = append(r.envelopes, env)
}

func (r *recorder) types() []protocol.EventType {
	out := make([]protocol.EventType, len(r.envelopes))
	for i, env := range r.envelopes {
		out[i] = env.Type
	}
	return out
}

func (r *recorder) last() protocol.Envelope {
	return r.envelopes[len(r.envelopes)-1]
}

func TestDispatchUnknownTypeEmitsSingleError(t *testing.T) {
	rec := &recorder{}
	emitter := NewEmitter(rec)

	env := &protocol.Envelope{Type: "totally:bogus"}
	Dispatch(context.Background(), emitter, env, HandlerMap{})

	require.Len(t, rec.envelopes, 1)
	assert.Equal(t, protocol.EventError, rec.envelopes[0].Type)

	var p protocol.ErrorPayload
	require.NoError(t, json.Unmarshal(rec.envelopes[0].Payload, &p))
	assert.Equal(t, protocol.CodeUnknownEvent, p.Code)
	assert.Contains(t, p.Message, "totally:bogus")
	assert.False(t, p.Retryable)
}

func TestDispatchKnownTypeWithoutHandlerIsSilent(t *testing.T) {
	rec := &recorder{}
	emitter := NewEmitter(rec)

	env := &protocol.Envelope{Type: protocol.EventNPCCompile}
	Dispatch(context.Background(), emitter, env, HandlerMap{})

	assert.Empty(t, rec.envelopes)
}

func TestDispatchRoutesPayloadToHandler(t *testing.T) {
	rec := &recorder{}
	emitter := NewEmitter(rec)

	var got json.RawMessage
	handlers := HandlerMap{
		protocol.EventDialConfirm: func(ctx context.Context, payload json.RawMessage) {
			got = payload
		},
	}

	env := &protocol.Envelope{
		Type:    protocol.EventDialConfirm,
		Payload: json.RawMessage(`{"dialId":"tone"}`),
	}
	Dispatch(context.Background(), emitter, env, handlers)

	assert.JSONEq(t, `{"dialId":"tone"}`, string(got))
	assert.Empty(t, rec.envelopes)
}
