package user

import "loan-marketplace/internal/domain/loan"

type RegisterInput struct {
	Email   string
	Name    string
	Company string
	Role    loan.Role
}

// UpdateStatusInput: ActorID must be an active admin.
type UpdateStatusInput struct {
	ActorID int64
	UserID  int64
	Status  loan.UserStatus
}

type DeleteInput struct {
	ActorID int64
	UserID  int64
}
