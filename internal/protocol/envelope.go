package protocol

import (
	"bytes"
	"encoding/json"
)

// Envelope wraps every WebSocket message: a type drawn from the closed
// vocabulary plus a JSON object payload.
type Envelope struct {
	Type    EventType       `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// NewEnvelope builds an envelope from a typed payload struct. Optional
// payload fields use omitempty so absent fields stay absent on the wire.
func NewEnvelope(t EventType, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: t, Payload: data}, nil
}

// ParseIncoming decodes a raw client frame into an envelope. It is a
// total function: malformed JSON, non-object frames, a missing type, a
// missing or non-object payload, and types outside the client whitelist
// all yield nil. It never panics or returns an error.
func ParseIncoming(raw []byte) *Envelope {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil
	}
	if env.Type == "" || !IsClientEvent(env.Type) {
		return nil
	}
	if !isJSONObject(env.Payload) {
		return nil
	}
	return &env
}

// isJSONObject reports whether raw holds a JSON object. An absent or
// null payload does not count.
func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
