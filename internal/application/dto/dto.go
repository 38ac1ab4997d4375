package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Actor identifies the authenticated caller of a use case.
type Actor struct {
	UserID   string   `json:"user_id"`
	TenantID string   `json:"tenant_id"`
	Roles    []string `json:"roles"`
}

// ---------------------------------------------------------------------------
// Schedule requests
// ---------------------------------------------------------------------------

// InstallmentInput is one installment as submitted by a caller. ID refers to
// an existing installment on replace. A nil Notes leaves stored notes as is.
type InstallmentInput struct {
	ID      string          `json:"id,omitempty"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
	Notes   *string         `json:"notes,omitempty"`
}

// GetScheduleRequest identifies the schedule of a sale payment.
type GetScheduleRequest struct {
	Actor     Actor
	PaymentID string `json:"payment_id"`
}

// PreviewScheduleRequest carries the auto-generation parameters.
type PreviewScheduleRequest struct {
	Actor                Actor
	PaymentID            string          `json:"payment_id"`
	Count                int             `json:"count"`
	Frequency            string          `json:"frequency"`
	FirstDueDate         time.Time       `json:"first_due_date"`
	AmountPerInstallment decimal.Decimal `json:"amount_per_installment"`
}

// CreateScheduleRequest submits a reviewed schedule.
type CreateScheduleRequest struct {
	Actor        Actor
	PaymentID    string             `json:"payment_id"`
	Mode         string             `json:"mode"`
	Installments []InstallmentInput `json:"installments"`
}

// ReplaceScheduleRequest replaces every installment of a schedule.
type ReplaceScheduleRequest struct {
	Actor        Actor
	ScheduleID   string             `json:"schedule_id"`
	Installments []InstallmentInput `json:"installments"`
}

// MarkInstallmentPaidRequest settles one installment.
type MarkInstallmentPaidRequest struct {
	Actor           Actor
	ScheduleID      string `json:"schedule_id"`
	InstallmentID   string `json:"installment_id"`
	ReceiptURL      string `json:"receipt_url,omitempty"`
	ReceiptFilename string `json:"receipt_filename,omitempty"`
	IdempotencyKey  string `json:"idempotency_key,omitempty"`
}

// ---------------------------------------------------------------------------
// Payment requests
// ---------------------------------------------------------------------------

// OpenSalePaymentRequest creates a sale payment record.
type OpenSalePaymentRequest struct {
	Actor       Actor
	SaleID      string          `json:"sale_id,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

// GetSalePaymentRequest identifies a sale payment record.
type GetSalePaymentRequest struct {
	Actor     Actor
	PaymentID string `json:"payment_id"`
}

// RecordPartialPaymentRequest applies a payment to a sale.
type RecordPartialPaymentRequest struct {
	Actor           Actor
	PaymentID       string          `json:"payment_id"`
	Amount          decimal.Decimal `json:"amount"`
	ReceiptURL      string          `json:"receipt_url,omitempty"`
	ReceiptFilename string          `json:"receipt_filename,omitempty"`
	InstallmentID   string          `json:"installment_id,omitempty"`
	IdempotencyKey  string          `json:"idempotency_key,omitempty"`
}

// ListPartialPaymentsRequest identifies the payment whose history is listed.
type ListPartialPaymentsRequest struct {
	Actor     Actor
	PaymentID string `json:"payment_id"`
}

// TransferRequest hands a settled sale to a notary.
type TransferRequest struct {
	Actor     Actor
	PaymentID string `json:"payment_id"`
	NotaryID  string `json:"notary_id"`
}

// TransferEligibilityRequest asks whether a sale may be transferred.
type TransferEligibilityRequest struct {
	Actor     Actor
	PaymentID string `json:"payment_id"`
}

// ---------------------------------------------------------------------------
// Mortgage requests
// ---------------------------------------------------------------------------

// DocumentDTO references a stored document.
type DocumentDTO struct {
	URL                string `json:"url"`
	Filename           string `json:"filename,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

// SubmitMortgageFileRequest opens a mortgage credit file.
type SubmitMortgageFileRequest struct {
	Actor              Actor
	BankID             string          `json:"bank_id"`
	NotaryID           string          `json:"notary_id"`
	BorrowerName       string          `json:"borrower_name"`
	CreditAmount       decimal.Decimal `json:"credit_amount"`
	Currency           string          `json:"currency"`
	TitleDeed          DocumentDTO     `json:"titre_propriete"`
	CreditNotification DocumentDTO     `json:"notification_credit"`
}

// GetMortgageFileRequest identifies a mortgage file.
type GetMortgageFileRequest struct {
	Actor  Actor
	FileID string `json:"file_id"`
}

// ListMortgageFilesRequest filters mortgage files.
type ListMortgageFilesRequest struct {
	Actor    Actor
	BankID   string `json:"bank_id,omitempty"`
	NotaryID string `json:"notary_id,omitempty"`
	Status   string `json:"status,omitempty"`
}

// TransitionMortgageFileRequest runs one workflow action. ExpectedStatus is
// the status the caller last saw; when set, a mismatch is reported as stale.
type TransitionMortgageFileRequest struct {
	Actor          Actor
	FileID         string      `json:"file_id"`
	Action         string      `json:"action"`
	ExpectedStatus string      `json:"expected_status,omitempty"`
	Motif          string      `json:"motif,omitempty"`
	Convention     DocumentDTO `json:"convention_ouverture_credit"`
	Deed           DocumentDTO `json:"acte_hypothecaire"`
	DeedNumber     string      `json:"numero_acte,omitempty"`
	Comment        string      `json:"comment,omitempty"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// InstallmentResponse is an installment with its derived status.
type InstallmentResponse struct {
	ID                string          `json:"id,omitempty"`
	Position          int             `json:"position"`
	DueDate           time.Time       `json:"due_date"`
	Amount            decimal.Decimal `json:"amount"`
	Status            string          `json:"status"`
	ActualPaymentDate *time.Time      `json:"actual_payment_date,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// ScheduleResponse is the external representation of a schedule.
type ScheduleResponse struct {
	ID              string                `json:"id"`
	PaymentID       string                `json:"payment_id"`
	Mode            string                `json:"mode"`
	TotalAmount     decimal.Decimal       `json:"total_amount"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	RemainingAmount decimal.Decimal       `json:"remaining_amount"`
	Status          string                `json:"status"`
	Installments    []InstallmentResponse `json:"installments"`
	Version         int                   `json:"version"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// GetScheduleResponse reports absence with Found=false rather than an error.
type GetScheduleResponse struct {
	Found    bool              `json:"found"`
	Schedule *ScheduleResponse `json:"schedule,omitempty"`
}

// PreviewScheduleResponse is a generated, unsaved proposal.
type PreviewScheduleResponse struct {
	PaymentID    string                `json:"payment_id"`
	TotalAmount  decimal.Decimal       `json:"total_amount"`
	Installments []InstallmentResponse `json:"installments"`
}

// SalePaymentResponse is the ledger snapshot of a sale.
type SalePaymentResponse struct {
	ID              string          `json:"id"`
	SaleID          string          `json:"sale_id,omitempty"`
	Currency        string          `json:"currency"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaidAmount      decimal.Decimal `json:"paid_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
	Status          string          `json:"status"`
	Version         int             `json:"version"`
}

// PartialPaymentResponse is one recorded payment.
type PartialPaymentResponse struct {
	ID              string          `json:"id"`
	Amount          decimal.Decimal `json:"amount"`
	ReceiptURL      string          `json:"receipt_url,omitempty"`
	ReceiptFilename string          `json:"receipt_filename,omitempty"`
	InstallmentID   string          `json:"installment_id,omitempty"`
	RecordedBy      string          `json:"recorded_by,omitempty"`
	PaidAt          time.Time       `json:"paid_at"`
}

// RecordPartialPaymentResponse returns the updated ledger, the new payment
// and, when an installment was settled, the updated schedule.
type RecordPartialPaymentResponse struct {
	Payment        SalePaymentResponse    `json:"payment"`
	PartialPayment PartialPaymentResponse `json:"partial_payment"`
	Schedule       *ScheduleResponse      `json:"schedule,omitempty"`
}

// ListPartialPaymentsResponse lists payments oldest first.
type ListPartialPaymentsResponse struct {
	PaymentID string                   `json:"payment_id"`
	Payments  []PartialPaymentResponse `json:"payments"`
}

// TransferEligibilityResponse is the gate decision.
type TransferEligibilityResponse struct {
	PaymentID string `json:"payment_id"`
	Eligible  bool   `json:"eligible"`
	Reason    string `json:"reason,omitempty"`
}

// TransferResponse confirms a notary assignment.
type TransferResponse struct {
	PaymentID string `json:"payment_id"`
	SaleID    string `json:"sale_id"`
	NotaryID  string `json:"notary_id"`
}

// CommentResponse is one notary comment.
type CommentResponse struct {
	Action   string    `json:"action"`
	AuthorID string    `json:"author_id,omitempty"`
	Text     string    `json:"text"`
	At       time.Time `json:"at"`
}

// MortgageFileResponse is a mortgage file with nested documents.
type MortgageFileResponse struct {
	ID                 string            `json:"id"`
	BankID             string            `json:"bank_id"`
	NotaryID           string            `json:"notary_id"`
	BorrowerName       string            `json:"borrower_name"`
	CreditAmount       decimal.Decimal   `json:"credit_amount"`
	Currency           string            `json:"currency"`
	Status             string            `json:"statut"`
	TitleDeed          DocumentDTO       `json:"titre_propriete"`
	CreditNotification DocumentDTO       `json:"notification_credit"`
	Convention         *DocumentDTO      `json:"convention_ouverture_credit,omitempty"`
	Deed               *DocumentDTO      `json:"acte_hypothecaire,omitempty"`
	RejectionReason    string            `json:"motif_rejet,omitempty"`
	DeedNumber         string            `json:"numero_acte,omitempty"`
	Comments           []CommentResponse `json:"commentaires_notaire"`
	AllowedActions     []string          `json:"allowed_actions"`
	Version            int               `json:"version"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// ListMortgageFilesResponse lists mortgage files.
type ListMortgageFilesResponse struct {
	Files []MortgageFileResponse `json:"files"`
}
