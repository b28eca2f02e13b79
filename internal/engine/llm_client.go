package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"questforge/server/internal/config"
)

const (
	maxRetries = 3
	retryDelay = 1 * time.Second
)

// LLMClient wraps the OpenAI-compatible chat completion API used for
// adventure generation. The remote service is treated as an opaque
// collaborator; only its streamed text output matters here.
type LLMClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewLLMClient creates a client against the configured endpoint.
func NewLLMClient(cfg config.LLMConfig) *LLMClient {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &LLMClient{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
	}
}

// Chat sends a single non-streaming completion request with retries.
func (c *LLMClient) Chat(ctx context.Context, system, user string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(system, user, false))
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("empty completion response")
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			break
		}
	}

	return "", fmt.Errorf("chat completion failed: %w", lastErr)
}

// ChatStream sends a streaming completion request, invoking onDelta for
// each text fragment as it arrives, and returns the accumulated text.
// No retries: a partially delivered stream must not be replayed into the
// same client-visible message.
func (c *LLMClient) ChatStream(ctx context.Context, system, user string, onDelta func(string)) (string, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(system, user, true))
	if err != nil {
		return "", fmt.Errorf("failed to open completion stream: %w", err)
	}
	defer stream.Close()

	var full strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return full.String(), fmt.Errorf("stream read failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}

	return full.String(), nil
}

func (c *LLMClient) buildRequest(system, user string, stream bool) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Stream:      stream,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
}

// isRetryableError checks if an error is retryable
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "rate limit")
}
