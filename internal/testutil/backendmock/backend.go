package backendmock

import (
	"context"

	"loan-marketplace/internal/store"
)

var _ store.Backend = (*Backend)(nil)

// Backend is a function-backed mock that satisfies store.Backend.
// With no functions set it behaves as an empty, always-accepting store.
type Backend struct {
	NameValue string
	LoadFn    func(ctx context.Context) (*store.Database, error)
	SaveFn    func(ctx context.Context, db *store.Database, expectedVersion uint64) error

	Loads int
	Saves int
}

func (m *Backend) Name() string {
	if m.NameValue != "" {
		return m.NameValue
	}
	return "mock"
}

func (m *Backend) Load(ctx context.Context) (*store.Database, error) {
	m.Loads++
	if m.LoadFn != nil {
		return m.LoadFn(ctx)
	}
	return store.NewDatabase(), nil
}

func (m *Backend) Save(ctx context.Context, db *store.Database, expectedVersion uint64) error {
	m.Saves++
	if m.SaveFn != nil {
		return m.SaveFn(ctx, db, expectedVersion)
	}
	return nil
}
