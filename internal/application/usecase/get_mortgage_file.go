package usecase

import (
	"context"
	"fmt"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// GetMortgageFileUseCase reads one mortgage file.
type GetMortgageFileUseCase struct {
	files  port.MortgageFileRepository
	policy *service.Policy
}

// NewGetMortgageFileUseCase wires dependencies.
func NewGetMortgageFileUseCase(files port.MortgageFileRepository, policy *service.Policy) *GetMortgageFileUseCase {
	return &GetMortgageFileUseCase{files: files, policy: policy}
}

// Execute returns the file with the actions currently available on it.
func (uc *GetMortgageFileUseCase) Execute(ctx context.Context, req dto.GetMortgageFileRequest) (dto.MortgageFileResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapRead); err != nil {
		return dto.MortgageFileResponse{}, err
	}
	file, err := uc.files.FindByID(ctx, req.Actor.TenantID, req.FileID)
	if err != nil {
		return dto.MortgageFileResponse{}, fmt.Errorf("find mortgage file: %w", err)
	}
	return toMortgageFileResponse(file), nil
}
