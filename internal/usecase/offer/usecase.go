package offer

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
	return &Usecase{uow: tx, now: time.Now, log: logging.L().Named("offer")}
}

func (in CreateOfferInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return fmt.Errorf("%w: title is required", loan.ErrInvalidInput)
	case in.MinAmount <= 0:
		return fmt.Errorf("%w: minAmount must be positive", loan.ErrInvalidInput)
	case in.MinAmount > in.MaxAmount:
		return fmt.Errorf("%w: minAmount exceeds maxAmount", loan.ErrInvalidInput)
	case in.InterestRate < 0:
		return fmt.Errorf("%w: interestRate must not be negative", loan.ErrInvalidInput)
	case in.InterestRate > amortization.MaxAnnualRatePercent:
		return fmt.Errorf("%w: interestRate above %d", loan.ErrInvalidInput, amortization.MaxAnnualRatePercent)
	case in.Term <= 0:
		return fmt.Errorf("%w: term must be positive", loan.ErrInvalidInput)
	case in.Term > amortization.MaxTermMonths:
		return fmt.Errorf("%w: term above %d months", loan.ErrInvalidInput, amortization.MaxTermMonths)
	}
	return nil
}

// Create publishes a new active offer on behalf of an active lender.
func (u *Usecase) Create(ctx context.Context, in CreateOfferInput) (*loan.LoanOffer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out *loan.LoanOffer
	err := u.uow.WithinTx(ctx, func(db *store.Database) error {
		if _, err := db.Actor(in.LenderID, loan.RoleLender); err != nil {
			return err
		}
		out = db.InsertOffer(&loan.LoanOffer{
			LenderID:     in.LenderID,
			Title:        strings.TrimSpace(in.Title),
			Description:  strings.TrimSpace(in.Description),
			MinAmount:    amortization.Round(in.MinAmount),
			MaxAmount:    amortization.Round(in.MaxAmount),
			InterestRate: in.InterestRate,
			Term:         in.Term,
			Status:       loan.OfferActive,
			CreatedAt:    u.now().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("offer created", zap.Int64("offer_id", out.ID), zap.Int64("lender_id", out.LenderID))
	return out, nil
}

func (u *Usecase) List(ctx context.Context, f loan.OfferFilter) ([]*loan.LoanOffer, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []*loan.LoanOffer
	err := u.uow.View(ctx, func(db *store.Database) error {
		out = db.FindOffers(f)
		return nil
	})
	return out, err
}

func (u *Usecase) Get(ctx context.Context, offerID int64) (*loan.LoanOffer, error) {
	var out *loan.LoanOffer
	err := u.uow.View(ctx, func(db *store.Database) error {
		o, err := db.OfferByID(offerID)
		out = o
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
