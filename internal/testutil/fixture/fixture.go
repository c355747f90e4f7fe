// Package fixture builds small in-memory marketplaces for usecase tests.
package fixture

import (
	"context"
	"testing"
	"time"

	"loan-marketplace/internal/adapter/repository/memory"
	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/store"
)

// Now is the clock every fixture record is stamped with.
var Now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type Market struct {
	Store   *store.Store
	Backend *memory.Backend

	Borrower      int64
	OtherBorrower int64
	Lender        int64
	OtherLender   int64
	Admin         int64
	Analyst       int64
	Suspended     int64 // suspended borrower

	Offer         int64 // 1000..10000 at 12.5% over 24 months
	ZeroRateOffer int64 // 100..1200 at 0% over 12 months
	OtherOffer    int64 // owned by OtherLender
}

func New(t *testing.T) *Market {
	t.Helper()
	b := memory.New()
	m := &Market{Backend: b, Store: store.New(b, store.Options{})}
	err := m.Store.WithinTx(context.Background(), func(db *store.Database) error {
		user := func(email string, role loan.Role, status loan.UserStatus) int64 {
			return db.InsertUser(&loan.User{
				Email: email, Name: email, Role: role, Status: status, CreatedAt: Now,
			}).ID
		}
		m.Borrower = user("borrower@test.com", loan.RoleBorrower, loan.UserActive)
		m.OtherBorrower = user("borrower2@test.com", loan.RoleBorrower, loan.UserActive)
		m.Lender = user("lender@test.com", loan.RoleLender, loan.UserActive)
		m.OtherLender = user("lender2@test.com", loan.RoleLender, loan.UserActive)
		m.Admin = user("admin@test.com", loan.RoleAdmin, loan.UserActive)
		m.Analyst = user("analyst@test.com", loan.RoleAnalyst, loan.UserActive)
		m.Suspended = user("suspended@test.com", loan.RoleBorrower, loan.UserSuspended)

		offer := func(lender int64, min, max, rate float64, term int) int64 {
			return db.InsertOffer(&loan.LoanOffer{
				LenderID: lender, Title: "offer", MinAmount: min, MaxAmount: max,
				InterestRate: rate, Term: term, Status: loan.OfferActive, CreatedAt: Now,
			}).ID
		}
		m.Offer = offer(m.Lender, 1000, 10000, 12.5, 24)
		m.ZeroRateOffer = offer(m.Lender, 100, 1200, 0, 12)
		m.OtherOffer = offer(m.OtherLender, 500, 5000, 10, 6)
		return nil
	})
	if err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return m
}

// Mutate applies fn in a unit of work and fails the test on error.
func (m *Market) Mutate(t *testing.T, fn func(db *store.Database)) {
	t.Helper()
	err := m.Store.WithinTx(context.Background(), func(db *store.Database) error {
		fn(db)
		return nil
	})
	if err != nil {
		t.Fatalf("fixture mutate: %v", err)
	}
}

// Snapshot returns a fresh copy of the persisted aggregate.
func (m *Market) Snapshot(t *testing.T) *store.Database {
	t.Helper()
	var out *store.Database
	if err := m.Store.View(context.Background(), func(db *store.Database) error {
		out = db
		return nil
	}); err != nil {
		t.Fatalf("fixture snapshot: %v", err)
	}
	return out
}
