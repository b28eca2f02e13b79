package protocol

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHTTPStatusPrecedence(t *testing.T) {
	// Status wins regardless of the error's message text.
	se := Classify(errors.New("timed out"), 429)
	assert.Equal(t, CodeRateLimit, se.Code)
	assert.True(t, se.Retryable)

	for _, status := range []int{401, 403} {
		se := Classify(nil, status)
		assert.Equal(t, CodeAuthError, se.Code)
		assert.False(t, se.Retryable)
	}

	se = Classify(nil, 500)
	assert.Equal(t, CodeServerError, se.Code)
	assert.True(t, se.Retryable)

	se = Classify(nil, 503)
	assert.Equal(t, CodeServerError, se.Code)
}

func TestClassifyNetworkBeforeKeywords(t *testing.T) {
	se := Classify(errors.New("Fetch Failed: rate limit reached"), 0)
	assert.Equal(t, CodeNetworkError, se.Code)
	assert.True(t, se.Retryable)

	se = Classify(errors.New("dial tcp: connection refused"), 0)
	assert.Equal(t, CodeNetworkError, se.Code)
}

func TestClassifyAbort(t *testing.T) {
	se := Classify(context.Canceled, 0)
	assert.Equal(t, CodeTimeout, se.Code)
	assert.True(t, se.Retryable)

	se = Classify(context.DeadlineExceeded, 0)
	assert.Equal(t, CodeTimeout, se.Code)
}

func TestClassifyKeywordFallback(t *testing.T) {
	se := Classify(errors.New("429 rate limit exceeded"), 0)
	assert.Equal(t, CodeRateLimit, se.Code)

	se = Classify(errors.New("request timed out waiting for upstream"), 0)
	assert.Equal(t, CodeTimeout, se.Code)
}

func TestClassifyUnknown(t *testing.T) {
	se := Classify(errors.New("something odd"), 0)
	assert.Equal(t, CodeUnknown, se.Code)
	assert.True(t, se.Retryable)
	assert.Equal(t, "something odd", se.Message)

	se = Classify(nil, 0)
	assert.Equal(t, CodeUnknown, se.Code)
	assert.NotEmpty(t, se.Message)
}

func TestClassifiedMessagesAreUserFacing(t *testing.T) {
	raw := errors.New("dial tcp 10.0.0.1:5432: connection refused")
	se := Classify(raw, 0)
	assert.NotContains(t, se.Message, "dial tcp")
}

func TestReconnectDelayMonotonic(t *testing.T) {
	base := time.Second
	prev := time.Duration(0)
	for attempt := 0; attempt < 6; attempt++ {
		d := ReconnectDelay(base, attempt)
		assert.Greater(t, d, prev)
		prev = d
	}
	assert.Equal(t, time.Second, ReconnectDelay(base, 0))
	assert.Equal(t, 8*time.Second, ReconnectDelay(base, 3))
}
