package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"questforge/server/internal/config"
	"questforge/server/internal/dials"
)

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(cfg config.RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) GetClient() *redis.Client {
	return s.client
}

// Session dial-state keys
const (
	sessionDialsKeyFmt    = "session:%s:dials"
	transcriptKeyFmt      = "session:%s:transcript"
	transcriptMaxListSize = 200
)

// SaveDialState persists a session's dial state with the session TTL.
func (s *RedisStore) SaveDialState(ctx context.Context, sessionID string, state *dials.State, ttl time.Duration) error {
	key := fmt.Sprintf(sessionDialsKeyFmt, sessionID)
	if err := s.client.Set(ctx, key, state, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save dial state: %w", err)
	}
	return nil
}

// LoadDialState retrieves a session's dial state. A missing key returns
// a fresh empty state, not an error.
func (s *RedisStore) LoadDialState(ctx context.Context, sessionID string) (*dials.State, error) {
	key := fmt.Sprintf(sessionDialsKeyFmt, sessionID)
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return dials.NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load dial state: %w", err)
	}

	state := dials.NewState()
	if err := state.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("failed to decode dial state: %w", err)
	}
	return state, nil
}

// DeleteSession removes all keys belonging to an abandoned session.
func (s *RedisStore) DeleteSession(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx,
		fmt.Sprintf(sessionDialsKeyFmt, sessionID),
		fmt.Sprintf(transcriptKeyFmt, sessionID),
	).Err()
}

// TranscriptEntry is one chat turn stored in the session transcript.
type TranscriptEntry struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// AppendTranscript pushes a chat turn onto the session transcript ring.
func (s *RedisStore) AppendTranscript(ctx context.Context, sessionID string, entry TranscriptEntry, ttl time.Duration) error {
	key := fmt.Sprintf(transcriptKeyFmt, sessionID)

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript entry: %w", err)
	}

	if err := s.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to append transcript: %w", err)
	}
	if err := s.client.LTrim(ctx, key, 0, transcriptMaxListSize-1).Err(); err != nil {
		return fmt.Errorf("failed to trim transcript: %w", err)
	}
	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		// Non-critical, the entry itself is stored
		return nil
	}
	return nil
}

// GetTranscript retrieves recent chat turns, newest first.
func (s *RedisStore) GetTranscript(ctx context.Context, sessionID string, limit int64) ([]TranscriptEntry, error) {
	if limit <= 0 || limit > transcriptMaxListSize {
		limit = 50
	}
	key := fmt.Sprintf(transcriptKeyFmt, sessionID)

	results, err := s.client.LRange(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}

	entries := make([]TranscriptEntry, 0, len(results))
	for _, result := range results {
		var entry TranscriptEntry
		if err := json.Unmarshal([]byte(result), &entry); err != nil {
			continue // Skip invalid entries
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
