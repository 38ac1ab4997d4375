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

// TransitionMortgageFileUseCase runs one workflow action on a mortgage file.
type TransitionMortgageFileUseCase struct {
	files     port.MortgageFileRepository
	publisher port.EventPublisher
	policy    *service.Policy
	clock     Clock
}

// NewTransitionMortgageFileUseCase wires dependencies.
func NewTransitionMortgageFileUseCase(
	files port.MortgageFileRepository,
	publisher port.EventPublisher,
	policy *service.Policy,
	clock Clock,
) *TransitionMortgageFileUseCase {
	return &TransitionMortgageFileUseCase{files: files, publisher: publisher, policy: policy, clock: clock}
}

// Execute applies the action. When another request moved the file first,
// the result is a StaleStateError carrying the file's current status.
func (uc *TransitionMortgageFileUseCase) Execute(ctx context.Context, req dto.TransitionMortgageFileRequest) (dto.MortgageFileResponse, error) {
	// 1. Parse the action and the status the caller last saw.
	action, err := valueobject.NewMortgageAction(req.Action)
	if err != nil {
		return dto.MortgageFileResponse{}, model.NewValidationError("action", "is not a known action")
	}
	var expected valueobject.MortgageFileStatus
	if req.ExpectedStatus != "" {
		if expected, err = valueobject.NewMortgageFileStatus(req.ExpectedStatus); err != nil {
			return dto.MortgageFileResponse{}, model.NewValidationError("expectedStatus", "is not a known status")
		}
	}

	// 2. Check the caller may perform it.
	if err := uc.policy.Authorize(req.Actor.Roles, service.MortgageCapability(action)); err != nil {
		return dto.MortgageFileResponse{}, err
	}

	// 3. Load and transition.
	file, err := uc.files.FindByID(ctx, req.Actor.TenantID, req.FileID)
	if err != nil {
		return dto.MortgageFileResponse{}, fmt.Errorf("find mortgage file: %w", err)
	}
	from := file.Status()
	next, err := file.Apply(model.TransitionInput{
		Action:         action,
		ExpectedStatus: expected,
		Motif:          req.Motif,
		Convention:     toDocument(req.Convention),
		Deed:           toDocument(req.Deed),
		DeedNumber:     req.DeedNumber,
		Comment:        req.Comment,
		ActorID:        req.Actor.UserID,
	}, uc.clock())
	if err != nil {
		return dto.MortgageFileResponse{}, fmt.Errorf("apply %s: %w", action, err)
	}

	// 4. Persist conditionally on the status we transitioned from.
	if err := uc.files.Save(ctx, next, from); err != nil {
		if errors.Is(err, model.ErrConcurrentModification) {
			return dto.MortgageFileResponse{}, uc.staleError(ctx, req, action, from)
		}
		return dto.MortgageFileResponse{}, fmt.Errorf("save mortgage file: %w", err)
	}

	// 5. Publish events.
	publishCommitted(ctx, uc.publisher, next.DomainEvents()...)

	return toMortgageFileResponse(next), nil
}

func (uc *TransitionMortgageFileUseCase) staleError(
	ctx context.Context,
	req dto.TransitionMortgageFileRequest,
	action valueobject.MortgageAction,
	from valueobject.MortgageFileStatus,
) error {
	current := from
	if f, err := uc.files.FindByID(ctx, req.Actor.TenantID, req.FileID); err == nil {
		current = f.Status()
	}
	return &model.StaleStateError{Current: current, Action: action}
}
