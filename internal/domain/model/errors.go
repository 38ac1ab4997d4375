package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// Sentinel errors. Typed errors below wrap them so callers can match with
// errors.Is and still read the detail with errors.As.
var (
	ErrNotFound               = errors.New("not found")
	ErrValidation             = errors.New("validation failed")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrOverpayment            = errors.New("payment exceeds remaining balance")
	ErrEmptySchedule          = errors.New("schedule has no installments")
	ErrScheduleImbalance      = errors.New("schedule does not reconcile with total")
	ErrScheduleAlreadyExists  = errors.New("a schedule already exists for this payment")
	ErrScheduleExceedsBalance = errors.New("installments exceed remaining balance")
	ErrInstallmentAlreadyPaid = errors.New("installment already paid")
	ErrInvalidTransition      = errors.New("invalid transition")
	ErrStaleState             = errors.New("stale state, refresh and retry")
	ErrForbidden              = errors.New("forbidden")
	ErrTransferNotAllowed     = errors.New("transfer to notary not allowed")
	ErrDuplicateRequest       = errors.New("duplicate request")
	ErrConcurrentModification = errors.New("concurrent modification")
)

// ValidationError names the offending field and, for installments, its index.
// Index is -1 when the field is not part of a list.
type ValidationError struct {
	Field  string
	Index  int
	Reason string
}

// NewValidationError builds a ValidationError for a top-level field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Index: -1, Reason: reason}
}

// NewInstallmentError builds a ValidationError for installment i.
func NewInstallmentError(i int, field, reason string) *ValidationError {
	return &ValidationError{Field: field, Index: i, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("installment %d: %s %s", e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// OverpaymentError reports the balance a payment would have overshot.
type OverpaymentError struct {
	Amount    decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("payment of %s exceeds remaining balance %s; split the payment",
		e.Amount.String(), e.Remaining.String())
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpayment }

// ScheduleImbalanceError reports how far the installments are off the total.
type ScheduleImbalanceError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
	Delta    decimal.Decimal
}

func (e *ScheduleImbalanceError) Error() string {
	return fmt.Sprintf("installments sum to %s but total is %s (delta %s)",
		e.Actual.String(), e.Expected.String(), e.Delta.String())
}

func (e *ScheduleImbalanceError) Unwrap() error { return ErrScheduleImbalance }

// ExceedsBalanceError is returned when a generated plan asks for more than
// the sale still owes.
type ExceedsBalanceError struct {
	Requested decimal.Decimal
	Remaining decimal.Decimal
}

func (e *ExceedsBalanceError) Error() string {
	return fmt.Sprintf("amountPerInstallment x count = %s exceeds remaining balance %s",
		e.Requested.String(), e.Remaining.String())
}

func (e *ExceedsBalanceError) Unwrap() []error {
	return []error{ErrScheduleExceedsBalance, ErrValidation}
}

// TransitionError is returned when no transition exists for (From, Action).
type TransitionError struct {
	From   valueobject.MortgageFileStatus
	Action valueobject.MortgageAction
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s a mortgage file in state %s", e.Action, e.From)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// StaleStateError is returned when the caller acted on an outdated view of
// the file. It matches both ErrStaleState and ErrInvalidTransition.
type StaleStateError struct {
	Current valueobject.MortgageFileStatus
	Action  valueobject.MortgageAction
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("cannot %s: mortgage file is now %s, refresh and retry", e.Action, e.Current)
}

func (e *StaleStateError) Unwrap() []error {
	return []error{ErrStaleState, ErrInvalidTransition}
}

// ForbiddenError names the role and the capability it lacks.
type ForbiddenError struct {
	Roles      []string
	Capability valueobject.Capability
}

func (e *ForbiddenError) Error() string {
	if len(e.Roles) == 0 {
		return fmt.Sprintf("not allowed to %s", e.Capability)
	}
	return fmt.Sprintf("roles %v may not %s", e.Roles, e.Capability)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// TransferBlockedError explains why a sale cannot move to a notary.
type TransferBlockedError struct {
	Reason string
}

func (e *TransferBlockedError) Error() string {
	return "transfer to notary not allowed: " + e.Reason
}

func (e *TransferBlockedError) Unwrap() error { return ErrTransferNotAllowed }
