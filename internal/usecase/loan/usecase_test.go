package loan

import (
	"context"
	"errors"
	"testing"

	domainLoan "loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/store"
	"loan-marketplace/internal/testutil/fixture"
	"loan-marketplace/internal/testutil/uowmock"
	"loan-marketplace/internal/usecase/approval"
	"loan-marketplace/internal/usecase/payment"
)

func approve(t *testing.T, m *fixture.Market, borrower, offer int64, amount float64, lender int64) *approval.ApprovalDTO {
	t.Helper()
	var appID int64
	m.Mutate(t, func(db *store.Database) {
		appID = db.InsertApplication(&domainLoan.LoanApplication{
			BorrowerID: borrower, LoanOfferID: offer, Amount: amount, Status: domainLoan.ApplicationPending,
		}).ID
	})
	dto, err := approval.NewUsecase(m.Store).Approve(context.Background(), approval.ApproveInput{ApplicationID: appID, LenderID: lender})
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	return dto
}

func TestUsecase_List(t *testing.T) {
	m := fixture.New(t)
	approve(t, m, m.Borrower, m.Offer, 5000, m.Lender)
	approve(t, m, m.OtherBorrower, m.Offer, 2000, m.Lender)
	approve(t, m, m.Borrower, m.OtherOffer, 1000, m.OtherLender)
	uc := NewUsecase(m.Store)

	tests := []struct {
		name string
		f    domainLoan.LoanFilter
		want int
	}{
		{"all", domainLoan.LoanFilter{}, 3},
		{"by borrower", domainLoan.LoanFilter{BorrowerID: m.Borrower}, 2},
		{"by lender", domainLoan.LoanFilter{LenderID: m.Lender}, 2},
		{"borrower and lender", domainLoan.LoanFilter{BorrowerID: m.Borrower, LenderID: m.OtherLender}, 1},
		{"completed", domainLoan.LoanFilter{Status: domainLoan.LoanCompleted}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := uc.List(context.Background(), tt.f)
			if err != nil || len(got) != tt.want {
				t.Fatalf("got %d (%v), want %d", len(got), err, tt.want)
			}
		})
	}
	if _, err := uc.List(context.Background(), domainLoan.LoanFilter{Status: "late"}); !errors.Is(err, domainLoan.ErrInvalidInput) {
		t.Fatalf("bad status: %v", err)
	}
}

func TestUsecase_Get(t *testing.T) {
	m := fixture.New(t)
	a := approve(t, m, m.Borrower, m.ZeroRateOffer, 1200, m.Lender)
	if _, err := payment.NewUsecase(m.Store).Settle(context.Background(), payment.SettleInput{PaymentID: a.Schedule[0].ID, PayerID: m.Borrower}); err != nil {
		t.Fatalf("Settle: %v", err)
	}

	uc := NewUsecase(m.Store)
	got, err := uc.Get(context.Background(), a.Loan.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Schedule) != 12 || got.PaidCount != 1 {
		t.Fatalf("schedule=%d paid=%d", len(got.Schedule), got.PaidCount)
	}
	if got.NextPayment == nil || got.NextPayment.Number != 2 {
		t.Fatalf("next payment = %+v", got.NextPayment)
	}
	if got.Loan.RemainingBalance != 1100 {
		t.Fatalf("balance = %v", got.Loan.RemainingBalance)
	}

	if _, err := uc.Get(context.Background(), 424242); !errors.Is(err, domainLoan.ErrLoanNotFound) {
		t.Fatalf("missing loan: %v", err)
	}
}

func TestUsecase_Transactions(t *testing.T) {
	m := fixture.New(t)
	a := approve(t, m, m.Borrower, m.Offer, 5000, m.Lender)
	if _, err := payment.NewUsecase(m.Store).Settle(context.Background(), payment.SettleInput{PaymentID: a.Schedule[0].ID, PayerID: m.Borrower}); err != nil {
		t.Fatalf("Settle: %v", err)
	}
	uc := NewUsecase(m.Store)

	all, err := uc.Transactions(context.Background(), domainLoan.TransactionFilter{LoanID: a.Loan.ID})
	if err != nil || len(all) != 2 {
		t.Fatalf("Transactions: %d %v", len(all), err)
	}
	if all[0].Type != domainLoan.TxDisbursement || all[1].Type != domainLoan.TxPayment {
		t.Fatalf("order = %s, %s", all[0].Type, all[1].Type)
	}
	mine, _ := uc.Transactions(context.Background(), domainLoan.TransactionFilter{UserID: m.Lender})
	if len(mine) != 1 {
		t.Fatalf("lender transactions = %d", len(mine))
	}
	if _, err := uc.Transactions(context.Background(), domainLoan.TransactionFilter{Type: "refund"}); !errors.Is(err, domainLoan.ErrInvalidInput) {
		t.Fatalf("bad type: %v", err)
	}
}

func TestUsecase_StoreFailure(t *testing.T) {
	down := errors.New("down")
	uc := NewUsecase(uowmock.Failing(down))
	if _, err := uc.List(context.Background(), domainLoan.LoanFilter{}); !errors.Is(err, down) {
		t.Fatalf("List: %v", err)
	}
	if _, err := uc.Get(context.Background(), 1); !errors.Is(err, down) {
		t.Fatalf("Get: %v", err)
	}
}
