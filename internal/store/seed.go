package store

import (
	"time"

	"loan-marketplace/internal/domain/loan"
)

// SeedDemo fills an empty aggregate with one user per role and two offers
// from the demo lender. It reports whether anything was written.
func SeedDemo(db *Database, now time.Time) bool {
	if len(db.Users) > 0 {
		return false
	}
	now = now.UTC()
	user := func(email, name, company string, role loan.Role) *loan.User {
		return db.InsertUser(&loan.User{
			Email: email, Name: name, Company: company, Role: role,
			Status: loan.UserActive, CreatedAt: now,
		})
	}
	user("borrower@test.com", "John Borrower", "", loan.RoleBorrower)
	lender := user("lender@test.com", "Jane Lender", "Quick Loans Inc.", loan.RoleLender)
	user("admin@test.com", "System Admin", "", loan.RoleAdmin)
	user("analyst@test.com", "Financial Analyst", "", loan.RoleAnalyst)

	db.InsertOffer(&loan.LoanOffer{
		LenderID: lender.ID, Title: "Personal Loan",
		Description: "Quick personal loans for immediate needs",
		MinAmount:   1000, MaxAmount: 10000, InterestRate: 12.5, Term: 24,
		Status: loan.OfferActive, CreatedAt: now,
	})
	db.InsertOffer(&loan.LoanOffer{
		LenderID: lender.ID, Title: "Business Loan",
		Description: "For small business expansion",
		MinAmount:   5000, MaxAmount: 50000, InterestRate: 8.5, Term: 60,
		Status: loan.OfferActive, CreatedAt: now,
	})
	return true
}
