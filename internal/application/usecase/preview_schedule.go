package usecase

import (
	"context"
	"fmt"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// PreviewScheduleUseCase generates an auto-mode proposal against the sale's
// remaining balance. Nothing is persisted.
type PreviewScheduleUseCase struct {
	payments port.SalePaymentRepository
	policy   *service.Policy
	clock    Clock
}

// NewPreviewScheduleUseCase wires dependencies.
func NewPreviewScheduleUseCase(payments port.SalePaymentRepository, policy *service.Policy, clock Clock) *PreviewScheduleUseCase {
	return &PreviewScheduleUseCase{payments: payments, policy: policy, clock: clock}
}

// Execute builds the proposal.
func (uc *PreviewScheduleUseCase) Execute(ctx context.Context, req dto.PreviewScheduleRequest) (dto.PreviewScheduleResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapSchedulePreview); err != nil {
		return dto.PreviewScheduleResponse{}, err
	}

	// 1. Parse the frequency.
	freq, err := valueobject.NewFrequency(req.Frequency)
	if err != nil {
		return dto.PreviewScheduleResponse{}, model.NewValidationError("frequency", "must be monthly, quarterly, semiannual or annual")
	}

	// 2. Load the balance the plan must cover.
	payment, err := uc.payments.FindByID(ctx, req.Actor.TenantID, req.PaymentID)
	if err != nil {
		return dto.PreviewScheduleResponse{}, fmt.Errorf("find payment: %w", err)
	}
	remaining := payment.Balance().Remaining()

	// 3. Generate.
	drafts, err := model.GenerateInstallmentPlan(model.PlanRequest{
		Count:                req.Count,
		Frequency:            freq,
		FirstDueDate:         req.FirstDueDate,
		AmountPerInstallment: req.AmountPerInstallment,
		Remaining:            remaining,
	})
	if err != nil {
		return dto.PreviewScheduleResponse{}, fmt.Errorf("generate plan: %w", err)
	}

	now := uc.clock()
	out := make([]dto.InstallmentResponse, len(drafts))
	for i, d := range drafts {
		inst := model.Installment{Position: i, DueDate: d.DueDate, Amount: d.Amount}
		out[i] = dto.InstallmentResponse{
			Position: i,
			DueDate:  d.DueDate,
			Amount:   d.Amount,
			Status:   model.DeriveInstallmentStatus(inst, now).String(),
		}
	}
	return dto.PreviewScheduleResponse{
		PaymentID:    payment.ID(),
		TotalAmount:  remaining,
		Installments: out,
	}, nil
}
