package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSSEEventsSingleBlock(t *testing.T) {
	events, rest := ExtractSSEEvents("event: chat:delta\ndata: {\"content\":\"hi\"}\n\n")
	require.Len(t, events, 1)
	assert.Empty(t, rest)
	assert.Equal(t, "chat:delta", events[0].Event)
	assert.Equal(t, map[string]interface{}{"content": "hi"}, events[0].Data)
}

func TestExtractSSEEventsKeepsResidue(t *testing.T) {
	events, rest := ExtractSSEEvents("event: chat:delta\ndata: {\"content\":\"a\"}\n\nevent: chat:del")
	require.Len(t, events, 1)
	assert.Equal(t, "event: chat:del", rest)

	// The residue completes on the next chunk.
	events, rest = ExtractSSEEvents(rest + "ta\ndata: {\"content\":\"b\"}\n\n")
	require.Len(t, events, 1)
	assert.Empty(t, rest)
	assert.Equal(t, map[string]interface{}{"content": "b"}, events[0].Data)
}

func TestExtractSSEEventsDefaultsEventName(t *testing.T) {
	events, _ := ExtractSSEEvents("data: {\"x\":1}\n\n")
	require.Len(t, events, 1)
	assert.Equal(t, "message", events[0].Event)
}

// A data line holding invalid JSON is deliberately passed through as the
// raw string instead of being dropped or raised as an error. Documented
// quirk: it can mask a genuinely malformed server response.
func TestExtractSSEEventsRawStringFallback(t *testing.T) {
	events, _ := ExtractSSEEvents("event: chat:delta\ndata: not-json{\n\n")
	require.Len(t, events, 1)
	assert.Equal(t, "not-json{", events[0].Data)
}

func TestFlushSSEResidue(t *testing.T) {
	// The final block may omit its trailing delimiter; it is flushed at
	// stream end through the same parse path.
	ev, ok := FlushSSEResidue("event: chat:end\ndata: {}")
	require.True(t, ok)
	assert.Equal(t, "chat:end", ev.Event)

	_, ok = FlushSSEResidue("")
	assert.False(t, ok)
	_, ok = FlushSSEResidue("event: chat:end")
	assert.False(t, ok, "a block without data is not an event")
}

func TestFormatSSERoundTrip(t *testing.T) {
	wire, err := FormatSSE(SSEChatDelta, map[string]string{"content": "hi"})
	require.NoError(t, err)

	events, rest := ExtractSSEEvents(string(wire))
	require.Len(t, events, 1)
	assert.Empty(t, rest)
	assert.Equal(t, SSEChatDelta, events[0].Event)
	assert.Equal(t, map[string]interface{}{"content": "hi"}, events[0].Data)
}
