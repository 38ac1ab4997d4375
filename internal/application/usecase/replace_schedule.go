package usecase

import (
	"context"
	"fmt"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// ReplaceScheduleUseCase applies a whole-schedule edit.
type ReplaceScheduleUseCase struct {
	schedules port.ScheduleRepository
	publisher port.EventPublisher
	policy    *service.Policy
	clock     Clock
}

// NewReplaceScheduleUseCase wires dependencies.
func NewReplaceScheduleUseCase(
	schedules port.ScheduleRepository,
	publisher port.EventPublisher,
	policy *service.Policy,
	clock Clock,
) *ReplaceScheduleUseCase {
	return &ReplaceScheduleUseCase{schedules: schedules, publisher: publisher, policy: policy, clock: clock}
}

// Execute replaces the installments. Moving a due date additionally needs
// the edit-due-date capability.
func (uc *ReplaceScheduleUseCase) Execute(ctx context.Context, req dto.ReplaceScheduleRequest) (dto.ScheduleResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapScheduleReplace); err != nil {
		return dto.ScheduleResponse{}, err
	}
	now := uc.clock()

	// 1. Load the stored schedule.
	schedule, err := uc.schedules.FindByID(ctx, req.Actor.TenantID, req.ScheduleID)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("find schedule: %w", err)
	}

	// 2. Replace against the stored state.
	canEditDates := uc.policy.Allows(req.Actor.Roles, valueobject.CapScheduleEditDue)
	schedule, err = schedule.Replace(toDrafts(req.Installments), canEditDates, now)
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("replace schedule: %w", err)
	}

	// 3. Persist.
	if err := uc.schedules.Save(ctx, schedule); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("save schedule: %w", err)
	}

	// 4. Publish events.
	publishCommitted(ctx, uc.publisher, schedule.DomainEvents()...)

	return toScheduleResponse(schedule, now), nil
}

