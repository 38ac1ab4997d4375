package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	aggregateSalePayment = "SalePayment"
	aggregateSchedule    = "Schedule"
	aggregateMortgage    = "MortgageFile"
)

// ---------------------------------------------------------------------------
// Sale payment events
// ---------------------------------------------------------------------------

// SalePaymentOpened is raised when a sale payment record is created.
type SalePaymentOpened struct {
	events.BaseEvent
	SaleID      string          `json:"sale_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

func NewSalePaymentOpened(paymentID, tenantID, saleID string, total decimal.Decimal, currency string, at time.Time) SalePaymentOpened {
	return SalePaymentOpened{
		BaseEvent:   events.NewBaseEvent("settlement.sale_payment.opened", paymentID, aggregateSalePayment, tenantID, at),
		SaleID:      saleID,
		TotalAmount: total,
		Currency:    currency,
	}
}

// PartialPaymentRecorded is raised for every accepted partial payment. Views
// showing the balance refresh on it.
type PartialPaymentRecorded struct {
	events.BaseEvent
	PartialPaymentID string          `json:"partial_payment_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaidAmount       decimal.Decimal `json:"paid_amount"`
	RemainingAmount  decimal.Decimal `json:"remaining_amount"`
	InstallmentID    string          `json:"installment_id,omitempty"`
	ReceiptURL       string          `json:"receipt_url,omitempty"`
}

func NewPartialPaymentRecorded(
	paymentID, tenantID, partialID string,
	amount, paid, remaining decimal.Decimal,
	installmentID, receiptURL string,
	at time.Time,
) PartialPaymentRecorded {
	return PartialPaymentRecorded{
		BaseEvent:        events.NewBaseEvent("settlement.partial_payment.recorded", paymentID, aggregateSalePayment, tenantID, at),
		PartialPaymentID: partialID,
		Amount:           amount,
		PaidAmount:       paid,
		RemainingAmount:  remaining,
		InstallmentID:    installmentID,
		ReceiptURL:       receiptURL,
	}
}

// SalePaymentCompleted is raised when the remaining balance reaches zero.
type SalePaymentCompleted struct {
	events.BaseEvent
	SaleID      string          `json:"sale_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func NewSalePaymentCompleted(paymentID, tenantID, saleID string, total decimal.Decimal, at time.Time) SalePaymentCompleted {
	return SalePaymentCompleted{
		BaseEvent:   events.NewBaseEvent("settlement.sale_payment.completed", paymentID, aggregateSalePayment, tenantID, at),
		SaleID:      saleID,
		TotalAmount: total,
	}
}

// SaleTransferredToNotary is raised once a notary has been assigned.
type SaleTransferredToNotary struct {
	events.BaseEvent
	SaleID   string `json:"sale_id"`
	NotaryID string `json:"notary_id"`
}

func NewSaleTransferredToNotary(paymentID, tenantID, saleID, notaryID string, at time.Time) SaleTransferredToNotary {
	return SaleTransferredToNotary{
		BaseEvent: events.NewBaseEvent("settlement.sale.transferred_to_notary", paymentID, aggregateSalePayment, tenantID, at),
		SaleID:    saleID,
		NotaryID:  notaryID,
	}
}

// ---------------------------------------------------------------------------
// Schedule events
// ---------------------------------------------------------------------------

// ScheduleCreated is raised when a validated schedule is persisted.
type ScheduleCreated struct {
	events.BaseEvent
	PaymentID        string          `json:"payment_id"`
	Mode             string          `json:"mode"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InstallmentCount int             `json:"installment_count"`
}

func NewScheduleCreated(scheduleID, tenantID, paymentID, mode string, total decimal.Decimal, count int, at time.Time) ScheduleCreated {
	return ScheduleCreated{
		BaseEvent:        events.NewBaseEvent("settlement.schedule.created", scheduleID, aggregateSchedule, tenantID, at),
		PaymentID:        paymentID,
		Mode:             mode,
		TotalAmount:      total,
		InstallmentCount: count,
	}
}

// ScheduleReplaced is raised after a whole-schedule edit.
type ScheduleReplaced struct {
	events.BaseEvent
	PaymentID        string `json:"payment_id"`
	InstallmentCount int    `json:"installment_count"`
	Removed          int    `json:"removed"`
	Added            int    `json:"added"`
}

func NewScheduleReplaced(scheduleID, tenantID, paymentID string, count, removed, added int, at time.Time) ScheduleReplaced {
	return ScheduleReplaced{
		BaseEvent:        events.NewBaseEvent("settlement.schedule.replaced", scheduleID, aggregateSchedule, tenantID, at),
		PaymentID:        paymentID,
		InstallmentCount: count,
		Removed:          removed,
		Added:            added,
	}
}

// InstallmentPaid is raised when an installment becomes payee.
type InstallmentPaid struct {
	events.BaseEvent
	PaymentID       string          `json:"payment_id"`
	InstallmentID   string          `json:"installment_id"`
	Amount          decimal.Decimal `json:"amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

func NewInstallmentPaid(
	scheduleID, tenantID, paymentID, installmentID string,
	amount, paid, remaining decimal.Decimal,
	at time.Time,
) InstallmentPaid {
	return InstallmentPaid{
		BaseEvent:       events.NewBaseEvent("settlement.installment.paid", scheduleID, aggregateSchedule, tenantID, at),
		PaymentID:       paymentID,
		InstallmentID:   installmentID,
		Amount:          amount,
		PaidAmount:      paid,
		RemainingAmount: remaining,
	}
}

// ScheduleCompleted is raised when the last installment is paid.
type ScheduleCompleted struct {
	events.BaseEvent
	PaymentID string `json:"payment_id"`
}

func NewScheduleCompleted(scheduleID, tenantID, paymentID string, at time.Time) ScheduleCompleted {
	return ScheduleCompleted{
		BaseEvent: events.NewBaseEvent("settlement.schedule.completed", scheduleID, aggregateSchedule, tenantID, at),
		PaymentID: paymentID,
	}
}

// ---------------------------------------------------------------------------
// Mortgage file events
// ---------------------------------------------------------------------------

// MortgageFileSubmitted is raised when a bank submits a credit file.
type MortgageFileSubmitted struct {
	events.BaseEvent
	BankID       string          `json:"bank_id"`
	NotaryID     string          `json:"notary_id"`
	BorrowerName string          `json:"borrower_name"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Currency     string          `json:"currency"`
}

func NewMortgageFileSubmitted(
	fileID, tenantID, bankID, notaryID, borrower string,
	amount decimal.Decimal, currency string,
	at time.Time,
) MortgageFileSubmitted {
	return MortgageFileSubmitted{
		BaseEvent:    events.NewBaseEvent("settlement.mortgage_file.submitted", fileID, aggregateMortgage, tenantID, at),
		BankID:       bankID,
		NotaryID:     notaryID,
		BorrowerName: borrower,
		CreditAmount: amount,
		Currency:     currency,
	}
}

// MortgageFileTransitioned is raised after every workflow transition.
type MortgageFileTransitioned struct {
	events.BaseEvent
	Action  string `json:"action"`
	From    string `json:"from"`
	To      string `json:"to"`
	ActorID string `json:"actor_id,omitempty"`
	Motif   string `json:"motif,omitempty"`
	Comment string `json:"comment,omitempty"`
}

func NewMortgageFileTransitioned(fileID, tenantID, action, from, to, actorID, motif, comment string, at time.Time) MortgageFileTransitioned {
	return MortgageFileTransitioned{
		BaseEvent: events.NewBaseEvent("settlement.mortgage_file."+action, fileID, aggregateMortgage, tenantID, at),
		Action:    action,
		From:      from,
		To:        to,
		ActorID:   actorID,
		Motif:     motif,
		Comment:   comment,
	}
}
