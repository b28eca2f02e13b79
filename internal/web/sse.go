package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"questforge/server/internal/dials"
	"questforge/server/internal/protocol"
)

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
	Focus     string `json:"focus,omitempty"`
}

// sseWriter pushes formatted SSE blocks and flushes after each one so
// deltas reach the client immediately.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseWriter) send(event string, data interface{}) {
	block, err := protocol.FormatSSE(event, data)
	if err != nil {
		log.Printf("[SSE] Failed to format %s event: %v", event, err)
		return
	}
	if _, err := s.w.Write(block); err != nil {
		return
	}
	s.flusher.Flush()
}

// HandleChat serves the request-scoped chat stream: one POST, one
// streamed reply, connection closed. It runs the same interpret/compose
// turn as the WebSocket path, so clients that cannot hold a socket still
// drive the wizard.
func (s *WizardService) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.New().String()
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	out := &sseWriter{w: w, flusher: flusher}
	out.send(protocol.SSEUIReady, map[string]string{"sessionId": req.SessionID})

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.AI.LLM.ChatTimeout)
	defer cancel()

	s.chatTurn(ctx, out, req)
}

// chatTurn runs one wizard turn and streams the reply.
func (s *WizardService) chatTurn(ctx context.Context, out *sseWriter, req ChatRequest) {
	state := dials.NewState()
	if s.sessions != nil {
		if restored, err := s.sessions.LoadDialState(ctx, req.SessionID); err == nil {
			state = restored
		} else {
			out.send(protocol.SSEError, protocol.ErrorPayload{
				Code:      protocol.CodeServerError,
				Message:   "Your session could not be restored.",
				Retryable: true,
			})
			return
		}
	}

	sess := &Session{ID: req.SessionID, Dials: state}

	var reply string
	focus, ok := dials.NextFocus(state, req.Focus)
	if !ok {
		reply = dials.Compose("", state)
	} else {
		if update := dials.Interpret(focus, req.Message); update != nil && update.Confidence != dials.ConfidenceLow {
			if err := state.Set(update.DialID, update.Value); err == nil {
				// The spark tells the client which panel control just
				// changed underneath the conversation.
				out.send(protocol.SSEPanelSpark, protocol.DialUpdatePayload{
					DialID:     update.DialID,
					Value:      update.Value,
					Confidence: string(update.Confidence),
				})
				reply = "Got it, " + dialLabels[update.DialID] + " noted. "
				s.persistDials(ctx, sess)
			}
		}

		next, ok := dials.NextFocus(state, "")
		if ok {
			reply += dials.Compose(next, state)
		} else {
			reply += dials.Compose("", state)
		}
	}

	messageID := uuid.New().String()
	out.send(protocol.SSEChatStart, protocol.AssistantStartPayload{MessageID: messageID})
	for _, chunk := range splitChunks(reply, 48) {
		out.send(protocol.SSEChatDelta, protocol.AssistantChunkPayload{MessageID: messageID, Content: chunk})
	}
	out.send(protocol.SSEChatEnd, protocol.AssistantCompletePayload{MessageID: messageID, Content: reply})

	s.appendTranscript(ctx, sess, "user", req.Message)
	s.appendTranscript(ctx, sess, "assistant", reply)
}
