package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/money"
)

// Installment is one due payment of a schedule. Only the paid flag is
// stored; upcoming and overdue are derived on read.
type Installment struct {
	ID                string
	Position          int
	DueDate           time.Time
	Amount            decimal.Decimal
	Paid              bool
	ActualPaymentDate time.Time
	Notes             string
}

// InstallmentDraft is an installment as supplied by a caller, before it is
// validated into a schedule. ID is set when the draft refers to an existing
// installment. A nil Notes keeps the stored notes on replace.
type InstallmentDraft struct {
	ID      string
	DueDate time.Time
	Amount  decimal.Decimal
	Notes   *string
}

// DeriveInstallmentStatus returns the status shown to callers. Dates are
// compared by calendar day, so an installment due today is still upcoming.
func DeriveInstallmentStatus(inst Installment, now time.Time) valueobject.InstallmentStatus {
	if inst.Paid {
		return valueobject.InstallmentStatusPaid
	}
	if dateOf(inst.DueDate).Before(dateOf(now)) {
		return valueobject.InstallmentStatusOverdue
	}
	return valueobject.InstallmentStatusUpcoming
}

// ValidateInstallments checks drafts against the amount they must add up to.
func ValidateInstallments(drafts []InstallmentDraft, total decimal.Decimal) error {
	if len(drafts) == 0 {
		return ErrEmptySchedule
	}
	if len(drafts) > MaxInstallments {
		return NewValidationError("installments", fmt.Sprintf("must not exceed %d", MaxInstallments))
	}

	sum := decimal.Zero
	for i, d := range drafts {
		if d.DueDate.IsZero() {
			return NewInstallmentError(i, "dueDate", "is required")
		}
		if !d.Amount.IsPositive() {
			return NewInstallmentError(i, "amount", "must be greater than zero")
		}
		if !money.HasValidScale(d.Amount) {
			return NewInstallmentError(i, "amount", fmt.Sprintf("must have at most %d decimal places", money.MaxScale))
		}
		sum = sum.Add(d.Amount)
	}

	if !money.WithinTolerance(sum, total, money.Cent) {
		return &ScheduleImbalanceError{Expected: total, Actual: sum, Delta: sum.Sub(total)}
	}
	return nil
}

// dateOf is the UTC calendar day of t.
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return dateOf(a).Equal(dateOf(b))
}
