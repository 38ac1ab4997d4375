package grpc

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/application/usecase"
	"github.com/dillanci/settlement/pkg/auth"
	"github.com/dillanci/settlement/pkg/money"
)

// UseCases groups the application services the handler dispatches to.
type UseCases struct {
	GetSchedule            *usecase.GetScheduleUseCase
	PreviewSchedule        *usecase.PreviewScheduleUseCase
	CreateSchedule         *usecase.CreateScheduleUseCase
	ReplaceSchedule        *usecase.ReplaceScheduleUseCase
	MarkInstallmentPaid    *usecase.MarkInstallmentPaidUseCase
	OpenSalePayment        *usecase.OpenSalePaymentUseCase
	GetSalePayment         *usecase.GetSalePaymentUseCase
	RecordPartialPayment   *usecase.RecordPartialPaymentUseCase
	ListPartialPayments    *usecase.ListPartialPaymentsUseCase
	GetTransferEligibility *usecase.GetTransferEligibilityUseCase
	TransferToNotary       *usecase.TransferToNotaryUseCase
	SubmitMortgageFile     *usecase.SubmitMortgageFileUseCase
	GetMortgageFile        *usecase.GetMortgageFileUseCase
	ListMortgageFiles      *usecase.ListMortgageFilesUseCase
	TransitionMortgageFile *usecase.TransitionMortgageFileUseCase
}

// SettlementHandler implements SettlementServiceServer on top of the use cases.
type SettlementHandler struct {
	UnimplementedSettlementServiceServer
	uc     UseCases
	logger *slog.Logger
}

// NewSettlementHandler creates a new gRPC settlement handler.
func NewSettlementHandler(uc UseCases, logger *slog.Logger) *SettlementHandler {
	return &SettlementHandler{uc: uc, logger: logger}
}

// actorFromContext builds the acting identity from the validated token.
func actorFromContext(ctx context.Context) (dto.Actor, error) {
	claims, ok := auth.ClaimsFromContext(ctx)
	if !ok || claims == nil {
		return dto.Actor{}, status.Error(codes.Unauthenticated, "missing credentials")
	}
	return dto.Actor{
		UserID:   claims.UserID.String(),
		TenantID: claims.TenantID.String(),
		Roles:    claims.Roles,
	}, nil
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	d, err := money.ParseAmount(raw)
	if err != nil {
		return decimal.Decimal{}, status.Errorf(codes.InvalidArgument, "%s: %v", field, err)
	}
	return d, nil
}

func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, status.Errorf(codes.InvalidArgument, "invalid %s: %q is not a date", field, raw)
	}
	return t, nil
}

func toInstallmentInputs(in []InstallmentMessage) ([]dto.InstallmentInput, error) {
	out := make([]dto.InstallmentInput, len(in))
	for i, m := range in {
		due, err := parseDate("installments.due_date", m.DueDate)
		if err != nil {
			return nil, err
		}
		amount, err := parseAmount("installments.amount", m.Amount)
		if err != nil {
			return nil, err
		}
		out[i] = dto.InstallmentInput{ID: m.ID, DueDate: due, Amount: amount, Notes: m.Notes}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Schedules
// ---------------------------------------------------------------------------

func (h *SettlementHandler) GetSchedule(ctx context.Context, req *GetScheduleRequest) (*GetScheduleResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.GetSchedule.Execute(ctx, dto.GetScheduleRequest{Actor: actor, PaymentID: req.PaymentID})
	if err != nil {
		return nil, h.toStatus(ctx, "GetSchedule", err)
	}
	return &result, nil
}

func (h *SettlementHandler) PreviewSchedule(ctx context.Context, req *PreviewScheduleRequest) (*PreviewScheduleResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	first, err := parseDate("first_due_date", req.FirstDueDate)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount_per_installment", req.AmountPerInstallment)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.PreviewSchedule.Execute(ctx, dto.PreviewScheduleRequest{
		Actor:                actor,
		PaymentID:            req.PaymentID,
		Count:                int(req.Count),
		Frequency:            req.Frequency,
		FirstDueDate:         first,
		AmountPerInstallment: amount,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "PreviewSchedule", err)
	}
	return &result, nil
}

func (h *SettlementHandler) CreateSchedule(ctx context.Context, req *CreateScheduleRequest) (*ScheduleResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	installments, err := toInstallmentInputs(req.Installments)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.CreateSchedule.Execute(ctx, dto.CreateScheduleRequest{
		Actor:        actor,
		PaymentID:    req.PaymentID,
		Mode:         req.Mode,
		Installments: installments,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "CreateSchedule", err)
	}
	return &result, nil
}

func (h *SettlementHandler) ReplaceSchedule(ctx context.Context, req *ReplaceScheduleRequest) (*ScheduleResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	installments, err := toInstallmentInputs(req.Installments)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.ReplaceSchedule.Execute(ctx, dto.ReplaceScheduleRequest{
		Actor:        actor,
		ScheduleID:   req.ScheduleID,
		Installments: installments,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "ReplaceSchedule", err)
	}
	return &result, nil
}

func (h *SettlementHandler) MarkInstallmentPaid(ctx context.Context, req *MarkInstallmentPaidRequest) (*ScheduleResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.MarkInstallmentPaid.Execute(ctx, dto.MarkInstallmentPaidRequest{
		Actor:           actor,
		ScheduleID:      req.ScheduleID,
		InstallmentID:   req.InstallmentID,
		ReceiptURL:      req.ReceiptURL,
		ReceiptFilename: req.ReceiptFilename,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "MarkInstallmentPaid", err)
	}
	return &result, nil
}

// ---------------------------------------------------------------------------
// Sale payments
// ---------------------------------------------------------------------------

func (h *SettlementHandler) OpenSalePayment(ctx context.Context, req *OpenSalePaymentRequest) (*SalePaymentResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	total, err := parseAmount("total_amount", req.TotalAmount)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.OpenSalePayment.Execute(ctx, dto.OpenSalePaymentRequest{
		Actor:       actor,
		SaleID:      req.SaleID,
		TotalAmount: total,
		Currency:    req.Currency,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "OpenSalePayment", err)
	}
	return &result, nil
}

func (h *SettlementHandler) GetSalePayment(ctx context.Context, req *GetSalePaymentRequest) (*SalePaymentResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.GetSalePayment.Execute(ctx, dto.GetSalePaymentRequest{Actor: actor, PaymentID: req.PaymentID})
	if err != nil {
		return nil, h.toStatus(ctx, "GetSalePayment", err)
	}
	return &result, nil
}

func (h *SettlementHandler) RecordPartialPayment(ctx context.Context, req *RecordPartialPaymentRequest) (*RecordPartialPaymentResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.RecordPartialPayment.Execute(ctx, dto.RecordPartialPaymentRequest{
		Actor:           actor,
		PaymentID:       req.PaymentID,
		Amount:          amount,
		ReceiptURL:      req.ReceiptURL,
		ReceiptFilename: req.ReceiptFilename,
		InstallmentID:   req.InstallmentID,
		IdempotencyKey:  req.IdempotencyKey,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "RecordPartialPayment", err)
	}
	return &result, nil
}

func (h *SettlementHandler) ListPartialPayments(ctx context.Context, req *ListPartialPaymentsRequest) (*ListPartialPaymentsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.ListPartialPayments.Execute(ctx, dto.ListPartialPaymentsRequest{Actor: actor, PaymentID: req.PaymentID})
	if err != nil {
		return nil, h.toStatus(ctx, "ListPartialPayments", err)
	}
	return &result, nil
}

func (h *SettlementHandler) GetTransferEligibility(ctx context.Context, req *GetTransferEligibilityRequest) (*TransferEligibilityResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.GetTransferEligibility.Execute(ctx, dto.TransferEligibilityRequest{Actor: actor, PaymentID: req.PaymentID})
	if err != nil {
		return nil, h.toStatus(ctx, "GetTransferEligibility", err)
	}
	return &result, nil
}

func (h *SettlementHandler) TransferToNotary(ctx context.Context, req *TransferToNotaryRequest) (*TransferResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.TransferToNotary.Execute(ctx, dto.TransferRequest{
		Actor:     actor,
		PaymentID: req.PaymentID,
		NotaryID:  req.NotaryID,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "TransferToNotary", err)
	}
	return &result, nil
}

// ---------------------------------------------------------------------------
// Mortgage files
// ---------------------------------------------------------------------------

func (h *SettlementHandler) SubmitMortgageFile(ctx context.Context, req *SubmitMortgageFileRequest) (*MortgageFileResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}
	credit, err := parseAmount("credit_amount", req.CreditAmount)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.SubmitMortgageFile.Execute(ctx, dto.SubmitMortgageFileRequest{
		Actor:              actor,
		BankID:             req.BankID,
		NotaryID:           req.NotaryID,
		BorrowerName:       req.BorrowerName,
		CreditAmount:       credit,
		Currency:           req.Currency,
		TitleDeed:          req.TitleDeed,
		CreditNotification: req.CreditNotification,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "SubmitMortgageFile", err)
	}
	return &result, nil
}

func (h *SettlementHandler) GetMortgageFile(ctx context.Context, req *GetMortgageFileRequest) (*MortgageFileResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.GetMortgageFile.Execute(ctx, dto.GetMortgageFileRequest{Actor: actor, FileID: req.FileID})
	if err != nil {
		return nil, h.toStatus(ctx, "GetMortgageFile", err)
	}
	return &result, nil
}

func (h *SettlementHandler) ListMortgageFiles(ctx context.Context, req *ListMortgageFilesRequest) (*ListMortgageFilesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.ListMortgageFiles.Execute(ctx, dto.ListMortgageFilesRequest{
		Actor:    actor,
		BankID:   req.BankID,
		NotaryID: req.NotaryID,
		Status:   req.Status,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "ListMortgageFiles", err)
	}
	return &result, nil
}

func (h *SettlementHandler) TransitionMortgageFile(ctx context.Context, req *TransitionMortgageFileRequest) (*MortgageFileResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, err := actorFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := h.uc.TransitionMortgageFile.Execute(ctx, dto.TransitionMortgageFileRequest{
		Actor:          actor,
		FileID:         req.FileID,
		Action:         req.Action,
		ExpectedStatus: req.ExpectedStatus,
		Motif:          req.Motif,
		Convention:     req.Convention,
		Deed:           req.Deed,
		DeedNumber:     req.DeedNumber,
		Comment:        req.Comment,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "TransitionMortgageFile", err)
	}
	return &result, nil
}
