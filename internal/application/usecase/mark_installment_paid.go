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

// MarkInstallmentPaidUseCase settles one installment. The installment amount
// goes through the payment ledger, capped at what the sale still owes, so
// money already recorded without an installment reference is not charged
// twice and the schedule can always be finished.
type MarkInstallmentPaidUseCase struct {
	schedules port.ScheduleRepository
	recorder  *RecordPartialPaymentUseCase
	policy    *service.Policy
}

// NewMarkInstallmentPaidUseCase wires dependencies.
func NewMarkInstallmentPaidUseCase(
	schedules port.ScheduleRepository,
	recorder *RecordPartialPaymentUseCase,
	policy *service.Policy,
) *MarkInstallmentPaidUseCase {
	return &MarkInstallmentPaidUseCase{schedules: schedules, recorder: recorder, policy: policy}
}

// Execute marks the installment paid and returns the updated schedule.
func (uc *MarkInstallmentPaidUseCase) Execute(ctx context.Context, req dto.MarkInstallmentPaidRequest) (dto.ScheduleResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapInstallmentPay); err != nil {
		return dto.ScheduleResponse{}, err
	}

	// 1. Resolve the installment.
	schedule, err := uc.schedules.FindByID(ctx, req.Actor.TenantID, req.ScheduleID)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("find schedule: %w", err)
	}
	inst, ok := schedule.Installment(req.InstallmentID)
	if !ok {
		return dto.ScheduleResponse{}, fmt.Errorf("installment %s: %w", req.InstallmentID, model.ErrNotFound)
	}
	if inst.Paid {
		return dto.ScheduleResponse{}, fmt.Errorf("installment %d: %w", inst.Position, model.ErrInstallmentAlreadyPaid)
	}

	// 2. Record the installment amount against the sale.
	resp, err := uc.recorder.record(ctx, dto.RecordPartialPaymentRequest{
		Actor:           req.Actor,
		PaymentID:       schedule.PaymentID(),
		Amount:          inst.Amount,
		ReceiptURL:      req.ReceiptURL,
		ReceiptFilename: req.ReceiptFilename,
		InstallmentID:   inst.ID,
		IdempotencyKey:  req.IdempotencyKey,
	}, chargeUpToRemaining)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	return *resp.Schedule, nil
}
