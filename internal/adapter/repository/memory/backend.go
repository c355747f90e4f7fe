package memory

import (
	"context"
	"sync"

	"loan-marketplace/internal/store"
)

// Backend keeps the encoded aggregate in process memory. Every Load decodes a
// fresh copy, so a discarded unit of work leaves no trace.
type Backend struct {
	mu      sync.RWMutex
	blob    []byte
	version uint64
}

func New() *Backend { return &Backend{} }

func (b *Backend) Name() string { return "memory" }

func (b *Backend) Load(ctx context.Context) (*store.Database, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.RLock()
	blob := b.blob
	b.mu.RUnlock()
	return store.Decode(blob)
}

func (b *Backend) Save(ctx context.Context, db *store.Database, expectedVersion uint64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob, err := store.Encode(db)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.version != expectedVersion {
		return store.ErrVersionConflict
	}
	b.blob = blob
	b.version = db.Version
	return nil
}

// Bytes returns the last saved blob.
func (b *Backend) Bytes() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]byte(nil), b.blob...)
}
