package services

import (
	"errors"
	"fmt"

	"gripinvest/models"
)

// Not found.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
)

// Invalid input.
var (
	ErrInvalidAmount     = errors.New("invalid investment amount")
	ErrAmountOutOfBounds = errors.New("investment amount out of bounds")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInvalidProfile    = errors.New("invalid profile")
	ErrInvalidOTP        = errors.New("invalid OTP")
	ErrOTPExpired        = errors.New("OTP has expired")
	ErrInvalidCredential = errors.New("invalid email or password")
)

var (
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrEmailTaken        = errors.New("user with this email already exists")
	ErrProductInUse      = errors.New("product has investments")
)

// Bound names which product limit an amount violated.
type Bound string

const (
	BoundMin Bound = "min"
	BoundMax Bound = "max"
)

// AmountOutOfBoundsError carries the product bound an amount violated.
type AmountOutOfBoundsError struct {
	Bound Bound
	Limit models.Money
}

func (e *AmountOutOfBoundsError) Error() string {
	if e.Bound == BoundMax {
		return fmt.Sprintf("Investment amount cannot exceed %s", e.Limit)
	}
	return fmt.Sprintf("Investment amount must be at least %s", e.Limit)
}

func (e *AmountOutOfBoundsError) Unwrap() error { return ErrAmountOutOfBounds }

// ValidationError reports a rejected input field.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Kind }

func invalid(kind error, format string, args ...any) error {
	return &ValidationError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Kind classifies an error into the taxonomy the HTTP layer maps to statuses.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalidInput
	KindInsufficientFunds
	KindConflict
	KindUnauthorized
)

func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrProductNotFound), errors.Is(err, ErrUserNotFound):
		return KindNotFound
	case errors.Is(err, ErrInsufficientFunds):
		return KindInsufficientFunds
	case errors.Is(err, ErrProductInUse):
		return KindConflict
	case errors.Is(err, ErrInvalidCredential):
		return KindUnauthorized
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrAmountOutOfBounds),
		errors.Is(err, ErrInvalidProduct), errors.Is(err, ErrInvalidProfile),
		errors.Is(err, ErrInvalidOTP), errors.Is(err, ErrOTPExpired),
		errors.Is(err, ErrEmailTaken):
		return KindInvalidInput
	}
	return KindInternal
}
