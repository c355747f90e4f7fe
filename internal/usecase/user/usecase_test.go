package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/store"
	"loan-marketplace/internal/testutil/fixture"
	"loan-marketplace/internal/testutil/uowmock"
)

func newUsecase(m *fixture.Market) *Usecase {
	uc := NewUsecase(m.Store)
	uc.now = func() time.Time { return fixture.Now }
	return uc
}

func TestUsecase_Register(t *testing.T) {
	tests := []struct {
		name    string
		in      RegisterInput
		wantErr error
	}{
		{name: "borrower", in: RegisterInput{Email: "New@Example.com", Name: "New", Role: loan.RoleBorrower}},
		{name: "lender with company", in: RegisterInput{Email: "l3@example.com", Name: "L", Company: "Acme", Role: loan.RoleLender}},
		{name: "duplicate email any case", in: RegisterInput{Email: "BORROWER@test.com", Name: "Dup", Role: loan.RoleBorrower}, wantErr: loan.ErrDuplicateEmail},
		{name: "bad email", in: RegisterInput{Email: "nope", Name: "x", Role: loan.RoleBorrower}, wantErr: loan.ErrInvalidInput},
		{name: "analyst", in: RegisterInput{Email: "a2@example.com", Name: "A", Role: loan.RoleAnalyst}},
		{name: "admin cannot self-register", in: RegisterInput{Email: "root@example.com", Name: "Root", Role: loan.RoleAdmin}, wantErr: loan.ErrInvalidInput},
		{name: "unknown role", in: RegisterInput{Email: "r@example.com", Name: "x", Role: "root"}, wantErr: loan.ErrInvalidInput},
		{name: "missing name", in: RegisterInput{Email: "n@example.com", Role: loan.RoleAnalyst}, wantErr: loan.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fixture.New(t)
			u, err := newUsecase(m).Register(context.Background(), tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want err=%v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if u.Status != loan.UserActive || u.ID == 0 || !u.CreatedAt.Equal(fixture.Now) {
				t.Fatalf("user = %+v", u)
			}
		})
	}
}

func TestUsecase_Register_NormalizesEmail(t *testing.T) {
	m := fixture.New(t)
	uc := newUsecase(m)
	u, err := uc.Register(context.Background(), RegisterInput{Email: "  Mixed@Case.IO ", Name: "M", Role: loan.RoleBorrower})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "mixed@case.io" {
		t.Fatalf("email = %q", u.Email)
	}
}

func TestUsecase_ListAndGet(t *testing.T) {
	m := fixture.New(t)
	uc := newUsecase(m)
	borrowers, err := uc.List(context.Background(), loan.UserFilter{Role: loan.RoleBorrower})
	if err != nil || len(borrowers) != 3 {
		t.Fatalf("borrowers = %d (%v)", len(borrowers), err)
	}
	suspended, _ := uc.List(context.Background(), loan.UserFilter{Status: loan.UserSuspended})
	if len(suspended) != 1 {
		t.Fatalf("suspended = %d", len(suspended))
	}
	if _, err := uc.Get(context.Background(), 777); !errors.Is(err, loan.ErrUserNotFound) {
		t.Fatalf("Get missing: %v", err)
	}
}

func TestUsecase_UpdateStatus(t *testing.T) {
	m := fixture.New(t)
	uc := newUsecase(m)

	got, err := uc.UpdateStatus(context.Background(), UpdateStatusInput{ActorID: m.Admin, UserID: m.Borrower, Status: loan.UserSuspended})
	if err != nil || got.Status != loan.UserSuspended {
		t.Fatalf("suspend: %+v %v", got, err)
	}
	if _, err := uc.UpdateStatus(context.Background(), UpdateStatusInput{ActorID: m.Analyst, UserID: m.Borrower, Status: loan.UserActive}); !errors.Is(err, loan.ErrForbidden) {
		t.Fatalf("analyst actor: %v", err)
	}
	if _, err := uc.UpdateStatus(context.Background(), UpdateStatusInput{ActorID: m.Admin, UserID: m.Borrower, Status: "frozen"}); !errors.Is(err, loan.ErrInvalidInput) {
		t.Fatalf("bad status: %v", err)
	}
	if _, err := uc.UpdateStatus(context.Background(), UpdateStatusInput{ActorID: m.Admin, UserID: m.Admin, Status: loan.UserSuspended}); !errors.Is(err, loan.ErrInvalidInput) {
		t.Fatalf("self: %v", err)
	}
	if _, err := uc.UpdateStatus(context.Background(), UpdateStatusInput{ActorID: m.Admin, UserID: 999, Status: loan.UserActive}); !errors.Is(err, loan.ErrUserNotFound) {
		t.Fatalf("missing target: %v", err)
	}
}

func TestUsecase_Delete(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, m *fixture.Market) DeleteInput
		wantErr error
	}{
		{
			name: "borrower with active loan",
			setup: func(t *testing.T, m *fixture.Market) DeleteInput {
				m.Mutate(t, func(db *store.Database) {
					db.InsertLoan(&loan.ApprovedLoan{BorrowerID: m.Borrower, LenderID: m.Lender, Status: loan.LoanActive})
				})
				return DeleteInput{ActorID: m.Admin, UserID: m.Borrower}
			},
			wantErr: loan.ErrReferentialIntegrity,
		},
		{
			name: "borrower with pending application",
			setup: func(t *testing.T, m *fixture.Market) DeleteInput {
				m.Mutate(t, func(db *store.Database) {
					db.InsertApplication(&loan.LoanApplication{BorrowerID: m.Borrower, LoanOfferID: m.Offer, Status: loan.ApplicationPending})
				})
				return DeleteInput{ActorID: m.Admin, UserID: m.Borrower}
			},
			wantErr: loan.ErrReferentialIntegrity,
		},
		{
			name: "lender with active offers",
			setup: func(t *testing.T, m *fixture.Market) DeleteInput {
				return DeleteInput{ActorID: m.Admin, UserID: m.Lender}
			},
			wantErr: loan.ErrReferentialIntegrity,
		},
		{
			name: "lender with active loan and no offers",
			setup: func(t *testing.T, m *fixture.Market) DeleteInput {
				m.Mutate(t, func(db *store.Database) {
					o, _ := db.OfferByID(m.OtherOffer)
					o.Status = loan.OfferWithdrawn
					db.InsertLoan(&loan.ApprovedLoan{BorrowerID: m.OtherBorrower, LenderID: m.OtherLender, Status: loan.LoanActive})
				})
				return DeleteInput{ActorID: m.Admin, UserID: m.OtherLender}
			},
			wantErr: loan.ErrReferentialIntegrity,
		},
		{
			name: "non-admin actor",
			setup: func(t *testing.T, m *fixture.Market) DeleteInput {
				return DeleteInput{ActorID: m.Lender, UserID: m.Analyst}
			},
			wantErr: loan.ErrForbidden,
		},
		{
			name: "unknown user",
			setup: func(t *testing.T, m *fixture.Market) DeleteInput {
				return DeleteInput{ActorID: m.Admin, UserID: 4040}
			},
			wantErr: loan.ErrUserNotFound,
		},
		{
			name: "self",
			setup: func(t *testing.T, m *fixture.Market) DeleteInput {
				return DeleteInput{ActorID: m.Admin, UserID: m.Admin}
			},
			wantErr: loan.ErrInvalidInput,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := fixture.New(t)
			in := tt.setup(t, m)
			before := len(m.Snapshot(t).Users)
			if err := newUsecase(m).Delete(context.Background(), in); !errors.Is(err, tt.wantErr) {
				t.Fatalf("want err=%v, got %v", tt.wantErr, err)
			}
			if after := len(m.Snapshot(t).Users); after != before {
				t.Fatalf("users %d -> %d after failed delete", before, after)
			}
		})
	}
}

func TestUsecase_Delete_Cascades(t *testing.T) {
	m := fixture.New(t)
	var loanID int64
	m.Mutate(t, func(db *store.Database) {
		app := db.InsertApplication(&loan.LoanApplication{BorrowerID: m.Borrower, LoanOfferID: m.Offer, Status: loan.ApplicationApproved})
		db.InsertApplication(&loan.LoanApplication{BorrowerID: m.Borrower, LoanOfferID: m.Offer, Status: loan.ApplicationRejected})
		l := db.InsertLoan(&loan.ApprovedLoan{ApplicationID: app.ID, BorrowerID: m.Borrower, LenderID: m.Lender, Status: loan.LoanCompleted})
		loanID = l.ID
		db.InsertPayment(&loan.Payment{LoanID: l.ID, Number: 1, Status: loan.PaymentPaid})
	})

	if err := newUsecase(m).Delete(context.Background(), DeleteInput{ActorID: m.Admin, UserID: m.Borrower}); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	db := m.Snapshot(t)
	if _, err := db.UserByID(m.Borrower); !errors.Is(err, loan.ErrUserNotFound) {
		t.Fatalf("user still present: %v", err)
	}
	if n := len(db.FindApplications(loan.ApplicationFilter{BorrowerID: m.Borrower})); n != 0 {
		t.Fatalf("applications left = %d", n)
	}
	if n := len(db.FindPayments(loan.PaymentFilter{LoanID: loanID})); n != 0 {
		t.Fatalf("payments left = %d", n)
	}
	if _, err := db.LoanByID(loanID); !errors.Is(err, loan.ErrLoanNotFound) {
		t.Fatalf("loan still present: %v", err)
	}
}

func TestUsecase_StoreFailure(t *testing.T) {
	down := errors.New("down")
	uc := NewUsecase(uowmock.Failing(down))
	if _, err := uc.Register(context.Background(), RegisterInput{Email: "a@b.io", Name: "a", Role: loan.RoleBorrower}); !errors.Is(err, down) {
		t.Fatalf("Register: %v", err)
	}
	if err := uc.Delete(context.Background(), DeleteInput{ActorID: 1, UserID: 2}); !errors.Is(err, down) {
		t.Fatalf("Delete: %v", err)
	}
}
