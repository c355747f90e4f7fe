package uow

import (
	"context"

	"loan-marketplace/internal/store"
)

// UnitOfWork is the only way usecases touch the aggregate.
type UnitOfWork interface {
	// WithinTx runs fn as one load-mutate-save unit; an error from fn discards every change.
	WithinTx(ctx context.Context, fn func(db *store.Database) error) error
	// View runs fn against a read-only snapshot.
	View(ctx context.Context, fn func(db *store.Database) error) error
}

var _ UnitOfWork = (*store.Store)(nil)
