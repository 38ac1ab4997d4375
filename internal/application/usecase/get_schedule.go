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

// GetScheduleUseCase returns the schedule of a sale payment with statuses
// derived for the current day.
type GetScheduleUseCase struct {
	schedules port.ScheduleRepository
	policy    *service.Policy
	clock     Clock
}

// NewGetScheduleUseCase wires dependencies.
func NewGetScheduleUseCase(schedules port.ScheduleRepository, policy *service.Policy, clock Clock) *GetScheduleUseCase {
	return &GetScheduleUseCase{schedules: schedules, policy: policy, clock: clock}
}

// Execute looks up the schedule. A payment without a schedule is reported
// as Found=false, not as an error.
func (uc *GetScheduleUseCase) Execute(ctx context.Context, req dto.GetScheduleRequest) (dto.GetScheduleResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapRead); err != nil {
		return dto.GetScheduleResponse{}, err
	}

	s, err := uc.schedules.FindByPaymentID(ctx, req.Actor.TenantID, req.PaymentID)
	if errors.Is(err, model.ErrNotFound) {
		return dto.GetScheduleResponse{Found: false}, nil
	}
	if err != nil {
		return dto.GetScheduleResponse{}, fmt.Errorf("find schedule: %w", err)
	}

	resp := toScheduleResponse(s, uc.clock())
	return dto.GetScheduleResponse{Found: true, Schedule: &resp}, nil
}
