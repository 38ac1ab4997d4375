package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// CreateScheduleUseCase validates and persists the schedule of a sale
// payment. A payment has at most one schedule.
type CreateScheduleUseCase struct {
	payments  port.SalePaymentRepository
	schedules port.ScheduleRepository
	publisher port.EventPublisher
	policy    *service.Policy
	clock     Clock
}

// NewCreateScheduleUseCase wires dependencies.
func NewCreateScheduleUseCase(
	payments port.SalePaymentRepository,
	schedules port.ScheduleRepository,
	publisher port.EventPublisher,
	policy *service.Policy,
	clock Clock,
) *CreateScheduleUseCase {
	return &CreateScheduleUseCase{
		payments:  payments,
		schedules: schedules,
		publisher: publisher,
		policy:    policy,
		clock:     clock,
	}
}

// Execute creates the schedule.
func (uc *CreateScheduleUseCase) Execute(ctx context.Context, req dto.CreateScheduleRequest) (dto.ScheduleResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapScheduleCreate); err != nil {
		return dto.ScheduleResponse{}, err
	}
	now := uc.clock()

	// 1. Reject a second schedule before looking at the input.
	_, err := uc.schedules.FindByPaymentID(ctx, req.Actor.TenantID, req.PaymentID)
	switch {
	case err == nil:
		return dto.ScheduleResponse{}, model.ErrScheduleAlreadyExists
	case !errors.Is(err, model.ErrNotFound):
		return dto.ScheduleResponse{}, fmt.Errorf("find schedule: %w", err)
	}

	// 2. Load the payment whose remaining balance the schedule covers.
	payment, err := uc.payments.FindByID(ctx, req.Actor.TenantID, req.PaymentID)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("find payment: %w", err)
	}

	mode, err := valueobject.NewScheduleMode(req.Mode)
	if err != nil {
		return dto.ScheduleResponse{}, model.NewValidationError("mode", "must be auto or manual")
	}

	// 3. Validate and build.
	schedule, err := model.NewSchedule(
		req.Actor.TenantID, payment.ID(), mode,
		payment.Balance().Remaining(), toDrafts(req.Installments), now,
	)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("create schedule: %w", err)
	}

	// 4. Persist. The unique constraint catches a concurrent creation.
	if err := uc.schedules.Save(ctx, schedule); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("save schedule: %w", err)
	}

	// 5. Publish events.
	publishCommitted(ctx, uc.publisher, schedule.DomainEvents()...)

	return toScheduleResponse(schedule, now), nil
}
