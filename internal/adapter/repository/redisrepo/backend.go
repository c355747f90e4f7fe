package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loan-marketplace/internal/infrastructure/logging"
	"loan-marketplace/internal/store"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	fieldVersion = "version"
	fieldData    = "data"
)

type Config struct {
	// Key of the hash that holds the aggregate.
	Key string
	// ConsecutiveFailures trips the breaker. Defaults to 5.
	ConsecutiveFailures uint32
	// OpenTimeout is how long the breaker stays open. Defaults to 30s.
	OpenTimeout time.Duration
}

// Backend stores the aggregate in one Redis hash {version, data}. Saves are a
// WATCH/MULTI compare-and-swap on the version field. Calls go through a
// circuit breaker so an unreachable Redis fails fast.
type Backend struct {
	rdb *redis.Client
	key string
	cb  *gobreaker.CircuitBreaker
}

func New(rdb *redis.Client, cfg Config) *Backend {
	if cfg.Key == "" {
		cfg.Key = "loanmarket:db"
	}
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = 5
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	log := logging.L().Named("redis-backend")
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    cfg.Key,
		Timeout: cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, store.ErrVersionConflict)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("key", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &Backend{rdb: rdb, key: cfg.Key, cb: cb}
}

func (b *Backend) Name() string { return "redis" }

func (b *Backend) Load(ctx context.Context) (*store.Database, error) {
	v, err := b.cb.Execute(func() (interface{}, error) {
		blob, err := b.rdb.HGet(ctx, b.key, fieldData).Bytes()
		if errors.Is(err, redis.Nil) {
			return []byte(nil), nil
		}
		return blob, err
	})
	if err != nil {
		return nil, fmt.Errorf("redis load %s: %w", b.key, err)
	}
	return store.Decode(v.([]byte))
}

func (b *Backend) Save(ctx context.Context, db *store.Database, expectedVersion uint64) error {
	blob, err := store.Encode(db)
	if err != nil {
		return err
	}
	_, err = b.cb.Execute(func() (interface{}, error) {
		err := b.rdb.Watch(ctx, func(tx *redis.Tx) error {
			cur, err := tx.HGet(ctx, b.key, fieldVersion).Uint64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if cur != expectedVersion {
				return store.ErrVersionConflict
			}
			_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.HSet(ctx, b.key, fieldVersion, db.Version, fieldData, blob)
				return nil
			})
			return err
		}, b.key)
		if errors.Is(err, redis.TxFailedErr) {
			return nil, store.ErrVersionConflict
		}
		return nil, err
	})
	if err != nil && !errors.Is(err, store.ErrVersionConflict) {
		return fmt.Errorf("redis save %s: %w", b.key, err)
	}
	return err
}
