package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SSEEvent is one decoded server-sent event. Data holds the decoded JSON
// value when the data line parsed, or the raw string when it did not.
type SSEEvent struct {
	Event string
	Data  interface{}
}

// FormatSSE renders one wire block: "event: <name>\ndata: <json>\n\n".
func FormatSSE(event string, data interface{}) ([]byte, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event, body)), nil
}

// ExtractSSEEvents splits a rolling text buffer into complete events and
// returns the unterminated residue for the next read. Blocks are
// delimited by a blank line; an absent event line defaults to "message".
// A data line that is not valid JSON is passed through as the raw string
// rather than dropped — deliberate leniency so a server emitting plain
// text still reaches the handler, at the cost of masking truly malformed
// frames. Pure function; safe to call with an empty buffer.
func ExtractSSEEvents(buffer string) ([]SSEEvent, string) {
	blocks := strings.Split(buffer, "\n\n")
	rest := blocks[len(blocks)-1]
	blocks = blocks[:len(blocks)-1]

	var events []SSEEvent
	for _, block := range blocks {
		if ev, ok := parseSSEBlock(block); ok {
			events = append(events, ev)
		}
	}
	return events, rest
}

// FlushSSEResidue parses whatever is left in the buffer after stream
// end. The final block may legally omit its trailing delimiter.
func FlushSSEResidue(residue string) (SSEEvent, bool) {
	return parseSSEBlock(residue)
}

func parseSSEBlock(block string) (SSEEvent, bool) {
	block = strings.TrimSpace(block)
	if block == "" {
		return SSEEvent{}, false
	}

	ev := SSEEvent{Event: "message"}
	hasData := false
	for _, line := range strings.Split(block, "\n") {
		switch {
		case strings.HasPrefix(line, "event:"):
			ev.Event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			var decoded interface{}
			if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
				ev.Data = raw
			} else {
				ev.Data = decoded
			}
			hasData = true
		}
	}
	if !hasData {
		return SSEEvent{}, false
	}
	return ev, true
}
