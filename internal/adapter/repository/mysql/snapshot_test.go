package mysql

import (
	"context"
	"errors"
	"testing"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/store"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB pinned to one connection so every
// query sees the same database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newRepo(t *testing.T, name string) *SnapshotRepository {
	t.Helper()
	r := NewSnapshotRepository(openTestDB(t), name)
	if err := r.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return r
}

func TestSnapshotRepository_LoadEmpty(t *testing.T) {
	r := newRepo(t, "t")
	db, err := r.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.Version != 0 || len(db.LoanOffers) != 0 {
		t.Fatalf("unexpected aggregate: %+v", db)
	}
}

func TestSnapshotRepository_CreateThenUpdate(t *testing.T) {
	r := newRepo(t, "t")
	ctx := context.Background()

	db, _ := r.Load(ctx)
	db.InsertUser(&loan.User{Email: "b@x.io", Role: loan.RoleBorrower, Status: loan.UserActive})
	db.Version = 1
	if err := r.Save(ctx, db, 0); err != nil {
		t.Fatalf("first Save: %v", err)
	}

	db, _ = r.Load(ctx)
	db.InsertUser(&loan.User{Email: "l@x.io", Role: loan.RoleLender, Status: loan.UserActive})
	db.Version = 2
	if err := r.Save(ctx, db, 1); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := r.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Version != 2 || len(got.Users) != 2 {
		t.Fatalf("version=%d users=%d", got.Version, len(got.Users))
	}
	if got.Users[1].ID != 2 {
		t.Fatalf("second user id = %d, want 2", got.Users[1].ID)
	}
}

func TestSnapshotRepository_Conflicts(t *testing.T) {
	r := newRepo(t, "t")
	ctx := context.Background()

	db, _ := r.Load(ctx)
	db.Version = 1
	if err := r.Save(ctx, db, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tests := []struct {
		name     string
		expected uint64
	}{
		{"second initial insert", 0},
		{"stale version", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db.Version = tt.expected + 1
			if err := r.Save(ctx, db, tt.expected); !errors.Is(err, store.ErrVersionConflict) {
				t.Fatalf("want ErrVersionConflict, got %v", err)
			}
		})
	}
}

func TestSnapshotRepository_NamesAreIsolated(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()
	a := NewSnapshotRepository(gdb, "a")
	b := NewSnapshotRepository(gdb, "b")
	if err := a.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db, _ := a.Load(ctx)
	db.InsertUser(&loan.User{Email: "only-in-a@x.io"})
	db.Version = 1
	if err := a.Save(ctx, db, 0); err != nil {
		t.Fatalf("Save a: %v", err)
	}

	other, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("Load b: %v", err)
	}
	if len(other.Users) != 0 {
		t.Fatalf("snapshot b sees %d users", len(other.Users))
	}
}

func TestSnapshotRepository_UnderStoreRollsBackFailedUnits(t *testing.T) {
	r := newRepo(t, "t")
	ctx := context.Background()
	s := store.New(r, store.Options{})

	sentinel := errors.New("boom")
	err := s.WithinTx(ctx, func(db *store.Database) error {
		db.InsertUser(&loan.User{Email: "ghost@x.io"})
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("want sentinel, got %v", err)
	}

	db, _ := r.Load(ctx)
	if len(db.Users) != 0 || db.Version != 0 {
		t.Fatalf("failed unit leaked: version=%d users=%d", db.Version, len(db.Users))
	}
}
