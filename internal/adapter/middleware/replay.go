package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var errNoReplay = errors.New("idempotency: no record")

type replayState string

const (
	stateInFlight replayState = "in_flight"
	stateDone     replayState = "done"
)

// replay is the Redis record for one (route, caller, request id).
type replay struct {
	State       replayState `json:"state"`
	UserID      int64       `json:"user_id"`
	RequestID   string      `json:"request_id"`
	RequestAt   time.Time   `json:"request_at"`
	BodyDigest  string      `json:"body_digest"`
	Status      int         `json:"status,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Response    []byte      `json:"response,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (r replay) replayable() bool { return r.State == stateDone && r.Status != 0 }

type replayStore struct {
	rdb    *redis.Client
	prefix string
}

func (s replayStore) key(method, route string, userID int64, requestID string) string {
	return fmt.Sprintf("%s:%s:%s:%d:%s", s.prefix, strings.ToLower(method), route, userID, requestID)
}

// reserve claims key for an in-flight request. False means someone already holds it.
func (s replayStore) reserve(ctx context.Context, key string, r replay, ttl time.Duration) (bool, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return false, err
	}
	return s.rdb.SetNX(ctx, key, b, ttl).Result()
}

func (s replayStore) get(ctx context.Context, key string) (replay, error) {
	var r replay
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return r, errNoReplay
	}
	if err != nil {
		return r, err
	}
	if err := json.Unmarshal(b, &r); err != nil {
		return r, fmt.Errorf("idempotency: decode %s: %w", key, err)
	}
	return r, nil
}

func (s replayStore) complete(ctx context.Context, key string, r replay, ttl time.Duration) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, b, ttl).Err()
}

// release drops a reservation so the client may retry.
func (s replayStore) release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
