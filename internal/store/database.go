package store

import (
	"fmt"
	"slices"
	"strings"

	"loan-marketplace/internal/domain/loan"
	"loan-marketplace/pkg/id"
)

// Database is the whole persisted aggregate. Backends save and load it wholesale.
// Pointers returned by its accessors alias the working copy: mutate them only
// inside Store.WithinTx.
type Database struct {
	Version          uint64                  `json:"version"`
	Sequence         id.Sequence             `json:"sequence"`
	Users            []*loan.User            `json:"users"`
	LoanOffers       []*loan.LoanOffer       `json:"loanOffers"`
	LoanApplications []*loan.LoanApplication `json:"loanApplications"`
	ApprovedLoans    []*loan.ApprovedLoan    `json:"approvedLoans"`
	Payments         []*loan.Payment         `json:"payments"`
	Transactions     []*loan.Transaction     `json:"transactions"`
}

func NewDatabase() *Database {
	db := &Database{}
	db.normalize()
	return db
}

// normalize replaces nil collections and moves the sequence past every stored id.
func (db *Database) normalize() {
	if db.Users == nil {
		db.Users = []*loan.User{}
	}
	if db.LoanOffers == nil {
		db.LoanOffers = []*loan.LoanOffer{}
	}
	if db.LoanApplications == nil {
		db.LoanApplications = []*loan.LoanApplication{}
	}
	if db.ApprovedLoans == nil {
		db.ApprovedLoans = []*loan.ApprovedLoan{}
	}
	if db.Payments == nil {
		db.Payments = []*loan.Payment{}
	}
	if db.Transactions == nil {
		db.Transactions = []*loan.Transaction{}
	}
	for _, u := range db.Users {
		db.Sequence.Observe(u.ID)
	}
	for _, o := range db.LoanOffers {
		db.Sequence.Observe(o.ID)
	}
	for _, a := range db.LoanApplications {
		db.Sequence.Observe(a.ID)
	}
	for _, l := range db.ApprovedLoans {
		db.Sequence.Observe(l.ID)
	}
	for _, p := range db.Payments {
		db.Sequence.Observe(p.ID)
	}
	for _, t := range db.Transactions {
		db.Sequence.Observe(t.ID)
	}
}

// ---- inserts ----

func (db *Database) InsertUser(u *loan.User) *loan.User {
	u.ID = db.Sequence.Next()
	db.Users = append(db.Users, u)
	return u
}

func (db *Database) InsertOffer(o *loan.LoanOffer) *loan.LoanOffer {
	o.ID = db.Sequence.Next()
	db.LoanOffers = append(db.LoanOffers, o)
	return o
}

func (db *Database) InsertApplication(a *loan.LoanApplication) *loan.LoanApplication {
	a.ID = db.Sequence.Next()
	db.LoanApplications = append(db.LoanApplications, a)
	return a
}

func (db *Database) InsertLoan(l *loan.ApprovedLoan) *loan.ApprovedLoan {
	l.ID = db.Sequence.Next()
	db.ApprovedLoans = append(db.ApprovedLoans, l)
	return l
}

func (db *Database) InsertPayment(p *loan.Payment) *loan.Payment {
	p.ID = db.Sequence.Next()
	db.Payments = append(db.Payments, p)
	return p
}

func (db *Database) AppendTransaction(t *loan.Transaction) *loan.Transaction {
	t.ID = db.Sequence.Next()
	db.Transactions = append(db.Transactions, t)
	return t
}

// ---- lookups ----

func find[T any](items []*T, match func(*T) bool, notFound error) (*T, error) {
	for _, it := range items {
		if match(it) {
			return it, nil
		}
	}
	return nil, notFound
}

func filter[T any](items []*T, match func(*T) bool) []*T {
	out := make([]*T, 0)
	for _, it := range items {
		if match(it) {
			out = append(out, it)
		}
	}
	return out
}

func (db *Database) UserByID(userID int64) (*loan.User, error) {
	return find(db.Users, func(u *loan.User) bool { return u.ID == userID }, loan.ErrUserNotFound)
}

// UserByEmail matches case-insensitively.
func (db *Database) UserByEmail(email string) (*loan.User, error) {
	email = strings.TrimSpace(email)
	return find(db.Users, func(u *loan.User) bool { return strings.EqualFold(u.Email, email) }, loan.ErrUserNotFound)
}

func (db *Database) OfferByID(offerID int64) (*loan.LoanOffer, error) {
	return find(db.LoanOffers, func(o *loan.LoanOffer) bool { return o.ID == offerID }, loan.ErrOfferNotFound)
}

func (db *Database) ApplicationByID(appID int64) (*loan.LoanApplication, error) {
	return find(db.LoanApplications, func(a *loan.LoanApplication) bool { return a.ID == appID }, loan.ErrApplicationNotFound)
}

func (db *Database) LoanByID(loanID int64) (*loan.ApprovedLoan, error) {
	return find(db.ApprovedLoans, func(l *loan.ApprovedLoan) bool { return l.ID == loanID }, loan.ErrLoanNotFound)
}

func (db *Database) LoanByApplicationID(appID int64) (*loan.ApprovedLoan, error) {
	return find(db.ApprovedLoans, func(l *loan.ApprovedLoan) bool { return l.ApplicationID == appID }, loan.ErrLoanNotFound)
}

func (db *Database) PaymentByID(paymentID int64) (*loan.Payment, error) {
	return find(db.Payments, func(p *loan.Payment) bool { return p.ID == paymentID }, loan.ErrPaymentNotFound)
}

// ---- filtered collections ----

func (db *Database) FindUsers(f loan.UserFilter) []*loan.User {
	return filter(db.Users, f.Match)
}

func (db *Database) FindOffers(f loan.OfferFilter) []*loan.LoanOffer {
	return filter(db.LoanOffers, f.Match)
}

func (db *Database) FindApplications(f loan.ApplicationFilter) []*loan.LoanApplication {
	var owned map[int64]struct{}
	if f.LenderID != 0 {
		owned = make(map[int64]struct{})
		for _, o := range db.LoanOffers {
			if o.LenderID == f.LenderID {
				owned[o.ID] = struct{}{}
			}
		}
	}
	return filter(db.LoanApplications, func(a *loan.LoanApplication) bool {
		if f.BorrowerID != 0 && a.BorrowerID != f.BorrowerID {
			return false
		}
		if f.OfferID != 0 && a.LoanOfferID != f.OfferID {
			return false
		}
		if f.Status != "" && a.Status != f.Status {
			return false
		}
		if owned != nil {
			if _, ok := owned[a.LoanOfferID]; !ok {
				return false
			}
		}
		return true
	})
}

func (db *Database) FindLoans(f loan.LoanFilter) []*loan.ApprovedLoan {
	return filter(db.ApprovedLoans, f.Match)
}

// FindPayments keeps insertion order, which is schedule order within a loan.
func (db *Database) FindPayments(f loan.PaymentFilter) []*loan.Payment {
	return filter(db.Payments, f.Match)
}

func (db *Database) FindTransactions(f loan.TransactionFilter) []*loan.Transaction {
	return filter(db.Transactions, f.Match)
}

// ---- removal ----

// RemoveUser deletes the user together with data owned by it: a borrower's
// applications, loans with their payments and ledger transactions; a
// lender's offers. Callers check referential integrity first.
func (db *Database) RemoveUser(userID int64) error {
	u, err := db.UserByID(userID)
	if err != nil {
		return err
	}
	db.Users = slices.DeleteFunc(db.Users, func(x *loan.User) bool { return x.ID == userID })

	switch u.Role {
	case loan.RoleBorrower:
		removed := make(map[int64]struct{})
		db.ApprovedLoans = slices.DeleteFunc(db.ApprovedLoans, func(l *loan.ApprovedLoan) bool {
			if l.BorrowerID == userID {
				removed[l.ID] = struct{}{}
				return true
			}
			return false
		})
		db.Payments = slices.DeleteFunc(db.Payments, func(p *loan.Payment) bool {
			_, ok := removed[p.LoanID]
			return ok
		})
		db.Transactions = slices.DeleteFunc(db.Transactions, func(t *loan.Transaction) bool {
			_, ok := removed[t.LoanID]
			return ok
		})
		db.LoanApplications = slices.DeleteFunc(db.LoanApplications, func(a *loan.LoanApplication) bool {
			return a.BorrowerID == userID
		})
	case loan.RoleLender:
		db.LoanOffers = slices.DeleteFunc(db.LoanOffers, func(o *loan.LoanOffer) bool { return o.LenderID == userID })
	}
	return nil
}

// ---- authorization ----

// Actor returns the user behind userID when it exists, is active and holds
// one of roles. Anything else is ErrForbidden.
func (db *Database) Actor(userID int64, roles ...loan.Role) (*loan.User, error) {
	u, err := db.UserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown user %d", loan.ErrForbidden, userID)
	}
	if !u.Active() {
		return nil, fmt.Errorf("%w: user %d is %s", loan.ErrForbidden, userID, u.Status)
	}
	if len(roles) > 0 && !slices.Contains(roles, u.Role) {
		return nil, fmt.Errorf("%w: role %s not allowed", loan.ErrForbidden, u.Role)
	}
	return u, nil
}

// PendingDecision resolves an application a lender is about to approve or
// reject. The lender must be active and own the offer the application was
// made against, and the application must still be pending.
func (db *Database) PendingDecision(appID, lenderID int64) (*loan.LoanApplication, *loan.LoanOffer, error) {
	app, err := db.ApplicationByID(appID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := db.Actor(lenderID, loan.RoleLender); err != nil {
		return nil, nil, err
	}
	offer, err := db.OfferByID(app.LoanOfferID)
	if err != nil {
		return nil, nil, err
	}
	if offer.LenderID != lenderID {
		return nil, nil, fmt.Errorf("%w: offer %d belongs to another lender", loan.ErrForbidden, offer.ID)
	}
	switch app.Status {
	case loan.ApplicationPending:
		return app, offer, nil
	case loan.ApplicationApproved:
		return nil, nil, loan.ErrAlreadyApproved
	default:
		return nil, nil, fmt.Errorf("%w: application %d is %s", loan.ErrInvalidTransition, app.ID, app.Status)
	}
}
