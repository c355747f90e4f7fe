package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/domain/uow"
	"loan-marketplace/internal/infrastructure/logging"
	"loan-marketplace/internal/store"
	"loan-marketplace/pkg/amortization"

	"go.uber.org/zap"
)

type Usecase struct {
	uow uow.UnitOfWork
	now func() time.Time
	log *logging.Logger
}

func NewUsecase(tx uow.UnitOfWork) *Usecase {
	return &Usecase{uow: tx, now: time.Now, log: logging.L().Named("application")}
}

// Submit files a pending application against an active offer.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*loan.LoanApplication, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", loan.ErrInvalidInput)
	}
	if in.CreditScore < 0 || in.Income < 0 {
		return nil, fmt.Errorf("%w: creditScore and income must not be negative", loan.ErrInvalidInput)
	}
	amount := amortization.Round(in.Amount)

	var out *loan.LoanApplication
	err := u.uow.WithinTx(ctx, func(db *store.Database) error {
		if _, err := db.Actor(in.BorrowerID, loan.RoleBorrower); err != nil {
			return err
		}
		o, err := db.OfferByID(in.OfferID)
		if err != nil {
			return err
		}
		if o.Status != loan.OfferActive {
			return fmt.Errorf("%w: offer %d is %s", loan.ErrOfferNotFound, o.ID, o.Status)
		}
		if !o.InRange(amount) {
			return fmt.Errorf("%w: %.2f not in [%.2f, %.2f]", loan.ErrOutOfRange, amount, o.MinAmount, o.MaxAmount)
		}
		out = db.InsertApplication(&loan.LoanApplication{
			BorrowerID:  in.BorrowerID,
			LoanOfferID: o.ID,
			Amount:      amount,
			Purpose:     strings.TrimSpace(in.Purpose),
			CreditScore: in.CreditScore,
			Income:      in.Income,
			Status:      loan.ApplicationPending,
			AppliedAt:   u.now().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("application submitted",
		zap.Int64("application_id", out.ID),
		zap.Int64("borrower_id", out.BorrowerID),
		zap.Float64("amount", out.Amount),
	)
	return out, nil
}

// Reject closes a pending application. Only the lender owning the offer may do so.
func (u *Usecase) Reject(ctx context.Context, in DecisionInput) (*loan.LoanApplication, error) {
	var out *loan.LoanApplication
	err := u.uow.WithinTx(ctx, func(db *store.Database) error {
		app, _, err := db.PendingDecision(in.ApplicationID, in.LenderID)
		if err != nil {
			return err
		}
		now := u.now().UTC()
		app.Status = loan.ApplicationRejected
		app.DecidedAt = &now
		out = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("application rejected", zap.Int64("application_id", out.ID), zap.Int64("lender_id", in.LenderID))
	return out, nil
}

func (u *Usecase) List(ctx context.Context, f loan.ApplicationFilter) ([]*loan.LoanApplication, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []*loan.LoanApplication
	err := u.uow.View(ctx, func(db *store.Database) error {
		out = db.FindApplications(f)
		return nil
	})
	return out, err
}

func (u *Usecase) Get(ctx context.Context, appID int64) (*loan.LoanApplication, error) {
	var out *loan.LoanApplication
	err := u.uow.View(ctx, func(db *store.Database) error {
		a, err := db.ApplicationByID(appID)
		out = a
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
