package uowmock

import (
	"context"
	"errors"

	"loan-marketplace/internal/domain/uow"
	"loan-marketplace/internal/store"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn func(ctx context.Context, fn func(db *store.Database) error) error
	ViewFn     func(ctx context.Context, fn func(db *store.Database) error) error
}

func New() *UoW { return &UoW{} }

// OnDatabase runs every call directly against db, with no rollback.
func OnDatabase(db *store.Database) *UoW {
	run := func(_ context.Context, fn func(*store.Database) error) error { return fn(db) }
	return &UoW{WithinTxFn: run, ViewFn: run}
}

// Failing returns err from every call without invoking fn.
func Failing(err error) *UoW {
	fail := func(context.Context, func(*store.Database) error) error { return err }
	return &UoW{WithinTxFn: fail, ViewFn: fail}
}

func (m *UoW) WithinTx(ctx context.Context, fn func(db *store.Database) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) View(ctx context.Context, fn func(db *store.Database) error) error {
	if m.ViewFn != nil {
		return m.ViewFn(ctx, fn)
	}
	return errUnimplemented
}
