package model

import (
	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// Balance is the {total, paid, remaining} ledger of a sale. Remaining is
// always derived from total and paid, so the three can never disagree.
type Balance struct {
	total decimal.Decimal
	paid  decimal.Decimal
}

// NewBalance opens a ledger with nothing paid.
func NewBalance(total decimal.Decimal) (Balance, error) {
	if total.IsNegative() {
		return Balance{}, NewValidationError("totalAmount", "must not be negative")
	}
	return Balance{total: total, paid: decimal.Zero}, nil
}

// ReconstructBalance rebuilds a ledger from persistence.
func ReconstructBalance(total, paid decimal.Decimal) Balance {
	return Balance{total: total, paid: paid}
}

// ApplyPayment returns the ledger with amount added to paid. Payments that
// would overshoot the remaining balance are rejected, never clamped.
func (b Balance) ApplyPayment(amount decimal.Decimal) (Balance, error) {
	if !amount.IsPositive() {
		return b, ErrInvalidAmount
	}
	remaining := b.Remaining()
	if amount.GreaterThan(remaining) {
		return b, &OverpaymentError{Amount: amount, Remaining: remaining}
	}
	return Balance{total: b.total, paid: b.paid.Add(amount)}, nil
}

func (b Balance) Total() decimal.Decimal { return b.total }
func (b Balance) Paid() decimal.Decimal { return b.paid }

// Remaining is total − paid, floored at zero.
func (b Balance) Remaining() decimal.Decimal {
	r := b.total.Sub(b.paid)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// Status is paid exactly when nothing remains.
func (b Balance) Status() valueobject.PaymentStatus {
	if b.Remaining().IsZero() {
		return valueobject.PaymentStatusPaid
	}
	return valueobject.PaymentStatusUnpaid
}
