package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"questforge/server/internal/protocol"
)

func TestHandleChatStreamsATurn(t *testing.T) {
	svc := NewWizardService(testConfig(), nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"sessionId":"s1","message":"We have 5 players"}`))
	w := httptest.NewRecorder()

	svc.HandleChat(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := w.Body.String()
	events, rest := protocol.ExtractSSEEvents(body)
	assert.Empty(t, strings.TrimSpace(rest))
	require.NotEmpty(t, events)

	names := make([]string, len(events))
	for i, ev := range events {
		names[i] = ev.Event
	}
	assert.Equal(t, protocol.SSEUIReady, names[0])
	assert.Contains(t, names, protocol.SSEPanelSpark)
	assert.Contains(t, names, protocol.SSEChatStart)
	assert.Contains(t, names, protocol.SSEChatDelta)
	assert.Equal(t, protocol.SSEChatEnd, names[len(names)-1])

	// The spark names the dial the message changed.
	for _, ev := range events {
		if ev.Event != protocol.SSEPanelSpark {
			continue
		}
		data, ok := ev.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "partySize", data["dialId"])
		assert.EqualValues(t, 5, data["value"])
	}
}

func TestHandleChatRejectsEmptyMessage(t *testing.T) {
	svc := NewWizardService(testConfig(), nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"  "}`))
	w := httptest.NewRecorder()

	svc.HandleChat(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestHandleChatRejectsBadBody(t *testing.T) {
	svc := NewWizardService(testConfig(), nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`not json`))
	w := httptest.NewRecorder()

	svc.HandleChat(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Result().StatusCode)
}

func TestAuthMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	protected := authMiddleware("secret")(next)

	req := httptest.NewRequest(http.MethodGet, "/api/adventures", nil)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/adventures", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Result().StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/adventures", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Result().StatusCode)

	// An empty configured token disables the check.
	open := authMiddleware("")(next)
	req = httptest.NewRequest(http.MethodGet, "/api/adventures", nil)
	w = httptest.NewRecorder()
	open.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Result().StatusCode)
}
