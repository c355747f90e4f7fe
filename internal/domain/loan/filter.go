package loan

import "fmt"

// Filters are equality predicates; a zero field matches everything.

type OfferFilter struct {
	LenderID int64
	Status   OfferStatus
}

func (f OfferFilter) Validate() error {
	if f.LenderID < 0 {
		return fmt.Errorf("%w: lender id %d", ErrInvalidInput, f.LenderID)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: offer status %q", ErrInvalidInput, f.Status)
	}
	return nil
}

func (f OfferFilter) Match(o *LoanOffer) bool {
	return (f.LenderID == 0 || o.LenderID == f.LenderID) &&
		(f.Status == "" || o.Status == f.Status)
}

// ApplicationFilter.LenderID selects applications made against that lender's offers.
type ApplicationFilter struct {
	BorrowerID int64
	LenderID   int64
	OfferID    int64
	Status     ApplicationStatus
}

func (f ApplicationFilter) Validate() error {
	if f.BorrowerID < 0 || f.LenderID < 0 || f.OfferID < 0 {
		return fmt.Errorf("%w: negative id in application filter", ErrInvalidInput)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: application status %q", ErrInvalidInput, f.Status)
	}
	return nil
}

type LoanFilter struct {
	BorrowerID int64
	LenderID   int64
	Status     LoanStatus
}

func (f LoanFilter) Validate() error {
	if f.BorrowerID < 0 || f.LenderID < 0 {
		return fmt.Errorf("%w: negative id in loan filter", ErrInvalidInput)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: loan status %q", ErrInvalidInput, f.Status)
	}
	return nil
}

func (f LoanFilter) Match(l *ApprovedLoan) bool {
	return (f.BorrowerID == 0 || l.BorrowerID == f.BorrowerID) &&
		(f.LenderID == 0 || l.LenderID == f.LenderID) &&
		(f.Status == "" || l.Status == f.Status)
}

type PaymentFilter struct {
	LoanID int64
	Status PaymentStatus
}

func (f PaymentFilter) Validate() error {
	if f.LoanID < 0 {
		return fmt.Errorf("%w: loan id %d", ErrInvalidInput, f.LoanID)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: payment status %q", ErrInvalidInput, f.Status)
	}
	return nil
}

func (f PaymentFilter) Match(p *Payment) bool {
	return (f.LoanID == 0 || p.LoanID == f.LoanID) &&
		(f.Status == "" || p.Status == f.Status)
}

type TransactionFilter struct {
	LoanID int64
	UserID int64
	Type   TransactionType
}

func (f TransactionFilter) Validate() error {
	if f.LoanID < 0 || f.UserID < 0 {
		return fmt.Errorf("%w: negative id in transaction filter", ErrInvalidInput)
	}
	if f.Type != "" && !f.Type.Valid() {
		return fmt.Errorf("%w: transaction type %q", ErrInvalidInput, f.Type)
	}
	return nil
}

func (f TransactionFilter) Match(t *Transaction) bool {
	return (f.LoanID == 0 || t.LoanID == f.LoanID) &&
		(f.UserID == 0 || t.UserID == f.UserID) &&
		(f.Type == "" || t.Type == f.Type)
}

type UserFilter struct {
	Role   Role
	Status UserStatus
}

func (f UserFilter) Validate() error {
	if f.Role != "" && !f.Role.Valid() {
		return fmt.Errorf("%w: role %q", ErrInvalidInput, f.Role)
	}
	if f.Status != "" && !f.Status.Valid() {
		return fmt.Errorf("%w: user status %q", ErrInvalidInput, f.Status)
	}
	return nil
}

func (f UserFilter) Match(u *User) bool {
	return (f.Role == "" || u.Role == f.Role) &&
		(f.Status == "" || u.Status == f.Status)
}
