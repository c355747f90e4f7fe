package loan

import (
	"time"
)

type Role string

const (
	RoleBorrower Role = "borrower"
	RoleLender   Role = "lender"
	RoleAnalyst  Role = "analyst"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBorrower, RoleLender, RoleAnalyst, RoleAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserSuspended UserStatus = "suspended"
)

func (s UserStatus) Valid() bool { return s == UserActive || s == UserSuspended }

type OfferStatus string

const (
	OfferActive OfferStatus = "active"
	// OfferWithdrawn exists in the data model but nothing sets it yet.
	OfferWithdrawn OfferStatus = "withdrawn"
)

func (s OfferStatus) Valid() bool { return s == OfferActive || s == OfferWithdrawn }

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationApproved ApplicationStatus = "approved"
	ApplicationRejected ApplicationStatus = "rejected"
)

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected:
		return true
	}
	return false
}

// Terminal reports whether no further decision may be taken.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationApproved || s == ApplicationRejected
}

type LoanStatus string

const (
	LoanActive    LoanStatus = "active"
	LoanCompleted LoanStatus = "completed"
	// LoanDefaulted is reported by analytics but no operation transitions into it.
	LoanDefaulted LoanStatus = "defaulted"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanActive, LoanCompleted, LoanDefaulted:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	// PaymentLate is never assigned; kept so stored data using it still validates.
	PaymentLate PaymentStatus = "late"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentLate:
		return true
	}
	return false
}

type TransactionType string

const (
	TxDisbursement TransactionType = "disbursement"
	TxPayment      TransactionType = "payment"
	TxFee          TransactionType = "fee"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TxDisbursement, TxPayment, TxFee:
		return true
	}
	return false
}

type User struct {
	ID        int64      `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Company   string     `json:"company,omitempty"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (u *User) Active() bool { return u.Status == UserActive }

// LoanOffer is a lender-published product template.
type LoanOffer struct {
	ID           int64       `json:"id"`
	LenderID     int64       `json:"lenderId"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	MinAmount    float64     `json:"minAmount"`
	MaxAmount    float64     `json:"maxAmount"`
	InterestRate float64     `json:"interestRate"` // annual, percent
	Term         int         `json:"term"`         // months
	Status       OfferStatus `json:"status"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// InRange reports whether amount lies within [MinAmount, MaxAmount].
func (o *LoanOffer) InRange(amount float64) bool {
	return amount >= o.MinAmount && amount <= o.MaxAmount
}

type LoanApplication struct {
	ID          int64             `json:"id"`
	BorrowerID  int64             `json:"borrowerId"`
	LoanOfferID int64             `json:"loanOfferId"`
	Amount      float64           `json:"amount"`
	Purpose     string            `json:"purpose"`
	CreditScore int               `json:"creditScore,omitempty"`
	Income      float64           `json:"income,omitempty"`
	Status      ApplicationStatus `json:"status"`
	AppliedAt   time.Time         `json:"appliedAt"`
	DecidedAt   *time.Time        `json:"decidedAt"`
}

// ApprovedLoan is created exactly once per approved application.
type ApprovedLoan struct {
	ID               int64      `json:"id"`
	ApplicationID    int64      `json:"applicationId"`
	BorrowerID       int64      `json:"borrowerId"`
	LenderID         int64      `json:"lenderId"`
	LoanOfferID      int64      `json:"loanOfferId"`
	Amount           float64    `json:"amount"`
	InterestRate     float64    `json:"interestRate"`
	Term             int        `json:"term"`
	MonthlyPayment   float64    `json:"monthlyPayment"`
	TotalRepayment   float64    `json:"totalRepayment"`
	RemainingBalance float64    `json:"remainingBalance"`
	Status           LoanStatus `json:"status"`
	StartDate        time.Time  `json:"startDate"`
	CompletedAt      *time.Time `json:"completedAt"`
}

// Payment is one scheduled installment of an ApprovedLoan.
type Payment struct {
	ID        int64         `json:"id"`
	LoanID    int64         `json:"loanId"`
	Number    int           `json:"number"`
	Amount    float64       `json:"amount"`
	DueDate   time.Time     `json:"dueDate"`
	Status    PaymentStatus `json:"status"`
	PaidAt    *time.Time    `json:"paidAt"`
	Principal float64       `json:"principal"`
	Interest  float64       `json:"interest"`
}

// Transaction is an append-only audit record. Nothing reads it back for decisions.
type Transaction struct {
	ID          int64           `json:"id"`
	LoanID      int64           `json:"loanId"`
	UserID      int64           `json:"userId"`
	Type        TransactionType `json:"type"`
	Amount      float64         `json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}
