package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/internal/domain/uow"
	"loan-marketplace/internal/infrastructure/logging"
	"loan-marketplace/internal/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New()

type Usecase struct {
	uow uow.UnitOfWork
	now func() time.Time
	log *logging.Logger
}

func NewUsecase(tx uow.UnitOfWork) *Usecase {
	return &Usecase{uow: tx, now: time.Now, log: logging.L().Named("user")}
}

func (in RegisterInput) normalize() (RegisterInput, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	in.Company = strings.TrimSpace(in.Company)
	if err := validate.Var(in.Email, "required,email"); err != nil {
		return in, fmt.Errorf("%w: email %q", loan.ErrInvalidInput, in.Email)
	}
	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", loan.ErrInvalidInput)
	}
	if !in.Role.Valid() {
		return in, fmt.Errorf("%w: role %q", loan.ErrInvalidInput, in.Role)
	}
	// Admins are provisioned out of band, never through sign-up.
	if in.Role == loan.RoleAdmin {
		return in, fmt.Errorf("%w: role %q cannot self-register", loan.ErrInvalidInput, in.Role)
	}
	return in, nil
}

// Register creates an active user. Emails are unique regardless of case.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*loan.User, error) {
	in, err := in.normalize()
	if err != nil {
		return nil, err
	}
	var out *loan.User
	err = u.uow.WithinTx(ctx, func(db *store.Database) error {
		if _, err := db.UserByEmail(in.Email); err == nil {
			return fmt.Errorf("%w: %s", loan.ErrDuplicateEmail, in.Email)
		} else if !errors.Is(err, loan.ErrNotFound) {
			return err
		}
		out = db.InsertUser(&loan.User{
			Email:     in.Email,
			Name:      in.Name,
			Company:   in.Company,
			Role:      in.Role,
			Status:    loan.UserActive,
			CreatedAt: u.now().UTC(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("user registered", zap.Int64("user_id", out.ID), zap.String("role", string(out.Role)))
	return out, nil
}

func (u *Usecase) List(ctx context.Context, f loan.UserFilter) ([]*loan.User, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	var out []*loan.User
	err := u.uow.View(ctx, func(db *store.Database) error {
		out = db.FindUsers(f)
		return nil
	})
	return out, err
}

func (u *Usecase) Get(ctx context.Context, userID int64) (*loan.User, error) {
	var out *loan.User
	err := u.uow.View(ctx, func(db *store.Database) error {
		x, err := db.UserByID(userID)
		out = x
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatus suspends or reactivates a user. Admins cannot change their own status.
func (u *Usecase) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*loan.User, error) {
	if !in.Status.Valid() {
		return nil, fmt.Errorf("%w: status %q", loan.ErrInvalidInput, in.Status)
	}
	if in.ActorID == in.UserID {
		return nil, fmt.Errorf("%w: cannot change own status", loan.ErrInvalidInput)
	}
	var out *loan.User
	err := u.uow.WithinTx(ctx, func(db *store.Database) error {
		if _, err := db.Actor(in.ActorID, loan.RoleAdmin); err != nil {
			return err
		}
		target, err := db.UserByID(in.UserID)
		if err != nil {
			return err
		}
		target.Status = in.Status
		out = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("user status changed",
		zap.Int64("user_id", out.ID),
		zap.String("status", string(out.Status)),
		zap.Int64("actor_id", in.ActorID),
	)
	return out, nil
}

// Delete removes a user and the records it owns. A borrower with active loans
// or pending applications, or a lender with active offers or active loans, is
// kept and ErrReferentialIntegrity is returned.
func (u *Usecase) Delete(ctx context.Context, in DeleteInput) error {
	if in.ActorID == in.UserID {
		return fmt.Errorf("%w: cannot delete own account", loan.ErrInvalidInput)
	}
	err := u.uow.WithinTx(ctx, func(db *store.Database) error {
		if _, err := db.Actor(in.ActorID, loan.RoleAdmin); err != nil {
			return err
		}
		target, err := db.UserByID(in.UserID)
		if err != nil {
			return err
		}
		if err := checkDependents(db, target); err != nil {
			return err
		}
		return db.RemoveUser(target.ID)
	})
	if err != nil {
		return err
	}
	u.log.Info("user deleted", zap.Int64("user_id", in.UserID), zap.Int64("actor_id", in.ActorID))
	return nil
}

func checkDependents(db *store.Database, target *loan.User) error {
	switch target.Role {
	case loan.RoleBorrower:
		if n := len(db.FindLoans(loan.LoanFilter{BorrowerID: target.ID, Status: loan.LoanActive})); n > 0 {
			return fmt.Errorf("%w: borrower has %d active loans", loan.ErrReferentialIntegrity, n)
		}
		if n := len(db.FindApplications(loan.ApplicationFilter{BorrowerID: target.ID, Status: loan.ApplicationPending})); n > 0 {
			return fmt.Errorf("%w: borrower has %d pending applications", loan.ErrReferentialIntegrity, n)
		}
	case loan.RoleLender:
		if n := len(db.FindOffers(loan.OfferFilter{LenderID: target.ID, Status: loan.OfferActive})); n > 0 {
			return fmt.Errorf("%w: lender has %d active offers", loan.ErrReferentialIntegrity, n)
		}
		if n := len(db.FindLoans(loan.LoanFilter{LenderID: target.ID, Status: loan.LoanActive})); n > 0 {
			return fmt.Errorf("%w: lender has %d active loans", loan.ErrReferentialIntegrity, n)
		}
	}
	return nil
}
