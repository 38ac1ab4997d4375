package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/domain/event"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/money"
)

// PartialPayment is one immutable payment applied to a sale. Records are
// append-only.
type PartialPayment struct {
	ID              string
	PaymentID       string
	Amount          decimal.Decimal
	ReceiptURL      string
	ReceiptFilename string
	InstallmentID   string
	RecordedBy      string
	PaidAt          time.Time
}

// Receipt is the caller-supplied part of a partial payment.
type Receipt struct {
	Amount        decimal.Decimal
	URL           string
	Filename      string
	InstallmentID string
	RecordedBy    string
}

// ---------------------------------------------------------------------------
// SalePayment aggregate root
// ---------------------------------------------------------------------------

// SalePayment is the financial state of one sale. It is immutable; mutations
// return a new copy.
type SalePayment struct {
	id           string
	tenantID     string
	saleID       string
	currency     money.Currency
	balance      Balance
	version      int
	createdAt    time.Time
	updatedAt    time.Time
	domainEvents []event.DomainEvent
}

// NewSalePayment opens a payment record for a sale. saleID may be empty until
// the sale is registered.
func NewSalePayment(tenantID, saleID string, total decimal.Decimal, currency money.Currency, now time.Time) (SalePayment, error) {
	if tenantID == "" {
		return SalePayment{}, NewValidationError("tenantId", "is required")
	}
	balance, err := NewBalance(total)
	if err != nil {
		return SalePayment{}, err
	}
	if currency.Code() == "" {
		currency = money.DefaultCurrency
	}

	p := SalePayment{
		id:        uuid.New().String(),
		tenantID:  tenantID,
		saleID:    saleID,
		currency:  currency,
		balance:   balance,
		createdAt: now,
		updatedAt: now,
	}
	p.domainEvents = append(p.domainEvents,
		event.NewSalePaymentOpened(p.id, tenantID, saleID, total, currency.Code(), now))
	return p, nil
}

// ReconstructSalePayment rebuilds a SalePayment from persistence.
func ReconstructSalePayment(
	id, tenantID, saleID string,
	currency money.Currency,
	total, paid decimal.Decimal,
	version int,
	createdAt, updatedAt time.Time,
) SalePayment {
	return SalePayment{
		id:        id,
		tenantID:  tenantID,
		saleID:    saleID,
		currency:  currency,
		balance:   ReconstructBalance(total, paid),
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// RecordPayment applies a partial payment to the ledger and returns the new
// aggregate with the event to append.
func (p SalePayment) RecordPayment(r Receipt, now time.Time) (SalePayment, PartialPayment, error) {
	balance, err := p.balance.ApplyPayment(r.Amount)
	if err != nil {
		return p, PartialPayment{}, err
	}

	pp := PartialPayment{
		ID:              uuid.New().String(),
		PaymentID:       p.id,
		Amount:          r.Amount,
		ReceiptURL:      r.URL,
		ReceiptFilename: r.Filename,
		InstallmentID:   r.InstallmentID,
		RecordedBy:      r.RecordedBy,
		PaidAt:          now,
	}

	next := p
	next.balance = balance
	next.updatedAt = now
	next.domainEvents = copyEvents(p.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewPartialPaymentRecorded(
		p.id, p.tenantID, pp.ID, r.Amount, balance.Paid(), balance.Remaining(),
		r.InstallmentID, r.URL, now,
	))
	if balance.Status().IsPaid() && !p.balance.Status().IsPaid() {
		next.domainEvents = append(next.domainEvents,
			event.NewSalePaymentCompleted(p.id, p.tenantID, p.saleID, balance.Total(), now))
	}
	return next, pp, nil
}

// MarkTransferred records the notary hand-off event.
func (p SalePayment) MarkTransferred(notaryID string, now time.Time) SalePayment {
	next := p
	next.updatedAt = now
	next.domainEvents = copyEvents(p.domainEvents)
	next.domainEvents = append(next.domainEvents,
		event.NewSaleTransferredToNotary(p.id, p.tenantID, p.saleID, notaryID, now))
	return next
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (p SalePayment) ID() string { return p.id }
func (p SalePayment) TenantID() string { return p.tenantID }
func (p SalePayment) SaleID() string { return p.saleID }
func (p SalePayment) Currency() money.Currency { return p.currency }
func (p SalePayment) Balance() Balance { return p.balance }
func (p SalePayment) Status() valueobject.PaymentStatus { return p.balance.Status() }
func (p SalePayment) Version() int { return p.version }
func (p SalePayment) CreatedAt() time.Time { return p.createdAt }
func (p SalePayment) UpdatedAt() time.Time { return p.updatedAt }
func (p SalePayment) DomainEvents() []event.DomainEvent { return p.domainEvents }

// ClearEvents returns a copy with an empty event list.
func (p SalePayment) ClearEvents() SalePayment {
	next := p
	next.domainEvents = nil
	return next
}

func copyEvents(src []event.DomainEvent) []event.DomainEvent {
	if src == nil {
		return nil
	}
	dst := make([]event.DomainEvent, len(src))
	copy(dst, src)
	return dst
}
