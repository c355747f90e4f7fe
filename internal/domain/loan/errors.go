package loan

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrOfferNotFound       = fmt.Errorf("loan offer %w", ErrNotFound)
	ErrApplicationNotFound = fmt.Errorf("loan application %w", ErrNotFound)
	ErrLoanNotFound        = fmt.Errorf("loan %w", ErrNotFound)
	ErrPaymentNotFound     = fmt.Errorf("payment %w", ErrNotFound)

	ErrInvalidTransition = errors.New("invalid state transition")
	ErrAlreadyApproved   = fmt.Errorf("application already approved: %w", ErrInvalidTransition)

	ErrOutOfRange           = errors.New("amount outside offer range")
	ErrAlreadySettled       = errors.New("payment already settled")
	ErrReferentialIntegrity = errors.New("referential integrity violation")

	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")
	ErrDuplicateEmail = errors.New("email already registered")
)
