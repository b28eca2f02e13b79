package protocol

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Error codes surfaced to clients.
const (
	CodeRateLimit    = "RATE_LIMIT"
	CodeTimeout      = "TIMEOUT"
	CodeNetworkError = "NETWORK_ERROR"
	CodeAuthError    = "AUTH_ERROR"
	CodeServerError  = "SERVER_ERROR"
	CodeUnknown      = "UNKNOWN"

	// CodeUnknownEvent answers a well-formed envelope whose type is not
	// in the vocabulary. Protocol-level, never produced by Classify.
	CodeUnknownEvent = "UNKNOWN_EVENT"
)

// StreamError is the classified form of a transport or request failure.
// Computed fresh per failure and surfaced once; never persisted.
type StreamError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Pre-written user-facing messages, one per category. Raw error strings
// and stack traces never reach the UI.
var userMessages = map[string]string{
	CodeRateLimit:    "The service is busy right now. Give it a moment and try again.",
	CodeTimeout:      "The request took too long to complete. Try again.",
	CodeNetworkError: "Could not reach the server. Check your connection and try again.",
	CodeAuthError:    "Your session has expired. Please sign in again.",
	CodeServerError:  "Something went wrong on our end. Try again shortly.",
}

// Classify maps a caught error and optional HTTP status onto the coarse
// error taxonomy. Pass status 0 when no HTTP response was received.
// Precedence: structured status first, then network/abort signals, then
// message keywords, then UNKNOWN.
func Classify(err error, status int) StreamError {
	switch {
	case status == http.StatusTooManyRequests:
		return StreamError{Code: CodeRateLimit, Message: userMessages[CodeRateLimit], Retryable: true}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return StreamError{Code: CodeAuthError, Message: userMessages[CodeAuthError], Retryable: false}
	case status >= http.StatusInternalServerError:
		return StreamError{Code: CodeServerError, Message: userMessages[CodeServerError], Retryable: true}
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	lower := strings.ToLower(msg)

	switch {
	case containsAny(lower, "fetch failed", "network error", "connection refused", "no such host", "connection reset"):
		return StreamError{Code: CodeNetworkError, Message: userMessages[CodeNetworkError], Retryable: true}
	case err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		return StreamError{Code: CodeTimeout, Message: userMessages[CodeTimeout], Retryable: true}
	case containsAny(lower, "rate limit", "too many requests"):
		return StreamError{Code: CodeRateLimit, Message: userMessages[CodeRateLimit], Retryable: true}
	case containsAny(lower, "timeout", "timed out"):
		return StreamError{Code: CodeTimeout, Message: userMessages[CodeTimeout], Retryable: true}
	}

	if msg == "" {
		msg = "An unexpected error occurred."
	}
	return StreamError{Code: CodeUnknown, Message: msg, Retryable: true}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// ReconnectDelay returns baseDelay doubled per attempt, with no jitter;
// the WebSocket client adds jitter and the 30s cap at the call site.
func ReconnectDelay(baseDelay time.Duration, attempt int) time.Duration {
	return baseDelay * (1 << attempt)
}
