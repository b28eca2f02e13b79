package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIncomingValid(t *testing.T) {
	env := ParseIncoming([]byte(`{"type":"chat:user_message","payload":{"content":"hi"}}`))
	require.NotNil(t, env)
	assert.Equal(t, EventChatUserMessage, env.Type)

	var p UserMessagePayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "hi", p.Content)
}

func TestParseIncomingIsTotal(t *testing.T) {
	inputs := []string{
		``,
		`not json`,
		`42`,
		`"string"`,
		`[]`,
		`null`,
		`{}`,
		`{"type":"chat:user_message"}`,
		`{"type":"chat:user_message","payload":null}`,
		`{"type":"chat:user_message","payload":"text"}`,
		`{"type":"chat:user_message","payload":[1,2]}`,
		`{"payload":{"content":"hi"}}`,
		`{"type":"","payload":{}}`,
		`{"type":"made:up","payload":{}}`,
		`{"type":"connected","payload":{}}`, // server-side type, not inbound
	}
	for _, in := range inputs {
		assert.Nil(t, ParseIncoming([]byte(in)), "input: %s", in)
	}
}

func TestParseIncomingWholeWhitelist(t *testing.T) {
	for event := range clientEvents {
		raw := []byte(`{"type":"` + string(event) + `","payload":{}}`)
		env := ParseIncoming(raw)
		require.NotNil(t, env, "event: %s", event)
		assert.Equal(t, event, env.Type)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	env, err := NewEnvelope(EventChatUserMessage, UserMessagePayload{Content: "We have 5 players"})
	require.NoError(t, err)

	wire, err := json.Marshal(env)
	require.NoError(t, err)

	back := ParseIncoming(wire)
	require.NotNil(t, back)
	assert.Equal(t, env.Type, back.Type)
	assert.JSONEq(t, string(env.Payload), string(back.Payload))
}

func TestOptionalFieldsOmitted(t *testing.T) {
	env, err := NewEnvelope(EventChatAssistantComplete, AssistantCompletePayload{
		MessageID: "m1",
		Content:   "done",
	})
	require.NoError(t, err)

	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Payload, &m))
	_, hasUpdates := m["dialUpdates"]
	_, hasFocus := m["focusDial"]
	assert.False(t, hasUpdates, "absent dialUpdates must be omitted, not null")
	assert.False(t, hasFocus, "absent focusDial must be omitted, not null")
}
