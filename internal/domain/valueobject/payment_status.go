package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// PaymentStatus – settlement state of a sale payment record
// ---------------------------------------------------------------------------

// PaymentStatus is paid exactly when nothing remains to be collected.
type PaymentStatus struct {
	value string
}

const (
	paymentStatusUnpaid = "unpaid"
	paymentStatusPaid   = "paid"
)

var (
	PaymentStatusUnpaid = PaymentStatus{value: paymentStatusUnpaid}
	PaymentStatusPaid   = PaymentStatus{value: paymentStatusPaid}
)

var validPaymentStatuses = map[string]PaymentStatus{
	paymentStatusUnpaid: PaymentStatusUnpaid,
	paymentStatusPaid:   PaymentStatusPaid,
}

// NewPaymentStatus creates a PaymentStatus from a raw string.
func NewPaymentStatus(s string) (PaymentStatus, error) {
	v, ok := validPaymentStatuses[s]
	if !ok {
		return PaymentStatus{}, fmt.Errorf("invalid payment status: %q", s)
	}
	return v, nil
}

func (s PaymentStatus) String() string { return s.value }
func (s PaymentStatus) IsZero() bool { return s.value == "" }
func (s PaymentStatus) Equal(other PaymentStatus) bool { return s.value == other.value }
func (s PaymentStatus) IsPaid() bool { return s.value == paymentStatusPaid }

// ---------------------------------------------------------------------------
// SaleStatus – status of the sale as reported by the sales directory
// ---------------------------------------------------------------------------

// SaleStatus is owned by the external sales system; any value is accepted.
type SaleStatus string

const (
	SaleStatusPaymentComplete SaleStatus = "paiement_complet"
	SaleStatusTransferred     SaleStatus = "transfere_notaire"
	SaleStatusWithNotary      SaleStatus = "en_cours_notaire"
	SaleStatusDeedSigned      SaleStatus = "acte_signe"
)

// AlreadyTransferred reports whether the sale has been handed to a notary.
func (s SaleStatus) AlreadyTransferred() bool {
	switch s {
	case SaleStatusTransferred, SaleStatusWithNotary, SaleStatusDeedSigned:
		return true
	}
	return false
}
