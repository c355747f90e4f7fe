package redisrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/store"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestBackend_LoadMissingKeyIsEmpty(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	b := New(rdb, Config{Key: "t:db"})

	db, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.Version != 0 || len(db.Users) != 0 {
		t.Fatalf("unexpected aggregate: %+v", db)
	}
}

func TestBackend_SaveAndLoad(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	ctx := context.Background()
	b := New(rdb, Config{Key: "t:db"})

	db, _ := b.Load(ctx)
	db.InsertUser(&loan.User{Email: "l@x.io", Role: loan.RoleLender, Status: loan.UserActive})
	db.Version = 1
	if err := b.Save(ctx, db, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := mr.HGet("t:db", fieldVersion); got != "1" {
		t.Fatalf("stored version = %q, want 1", got)
	}

	got, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Version != 1 || len(got.Users) != 1 || got.Users[0].Email != "l@x.io" {
		t.Fatalf("loaded %+v", got)
	}
	if next := got.Sequence.Next(); next != 2 {
		t.Fatalf("sequence after reload = %d, want 2", next)
	}
}

func TestBackend_StaleVersionConflicts(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	ctx := context.Background()
	b := New(rdb, Config{Key: "t:db"})

	a, _ := b.Load(ctx)
	c, _ := b.Load(ctx)
	a.Version = 1
	if err := b.Save(ctx, a, 0); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	c.Version = 1
	if err := b.Save(ctx, c, 0); !errors.Is(err, store.ErrVersionConflict) {
		t.Fatalf("want ErrVersionConflict, got %v", err)
	}
}

func TestBackend_ConflictsDoNotTripBreaker(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	ctx := context.Background()
	b := New(rdb, Config{Key: "t:db", ConsecutiveFailures: 1})

	db, _ := b.Load(ctx)
	db.Version = 1
	_ = b.Save(ctx, db, 0)
	for i := 0; i < 3; i++ {
		if err := b.Save(ctx, db, 0); !errors.Is(err, store.ErrVersionConflict) {
			t.Fatalf("attempt %d: want conflict, got %v", i, err)
		}
	}
	if _, err := b.Load(ctx); err != nil {
		t.Fatalf("breaker tripped on conflicts: %v", err)
	}
}

func TestBackend_BreakerOpensWhenRedisIsDown(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	b := New(rdb, Config{Key: "t:db", ConsecutiveFailures: 2, OpenTimeout: time.Minute})
	mr.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := b.Load(ctx); err == nil {
			t.Fatalf("attempt %d: expected error with redis down", i)
		}
	}
	if _, err := b.Load(ctx); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("want ErrOpenState, got %v", err)
	}
}

func TestBackend_WorksUnderStore(t *testing.T) {
	_, rdb := newMiniredisClient(t)
	ctx := context.Background()
	s := store.New(New(rdb, Config{Key: "t:db"}), store.Options{MaxRetries: 2})

	for i := 0; i < 3; i++ {
		if err := s.WithinTx(ctx, func(db *store.Database) error {
			db.InsertUser(&loan.User{Role: loan.RoleBorrower, Status: loan.UserActive})
			return nil
		}); err != nil {
			t.Fatalf("WithinTx %d: %v", i, err)
		}
	}
	err := s.View(ctx, func(db *store.Database) error {
		if db.Version != 3 || len(db.Users) != 3 {
			t.Fatalf("version=%d users=%d", db.Version, len(db.Users))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}
