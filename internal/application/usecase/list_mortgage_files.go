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

// ListMortgageFilesUseCase lists mortgage files, optionally filtered.
type ListMortgageFilesUseCase struct {
	files  port.MortgageFileRepository
	policy *service.Policy
}

// NewListMortgageFilesUseCase wires dependencies.
func NewListMortgageFilesUseCase(files port.MortgageFileRepository, policy *service.Policy) *ListMortgageFilesUseCase {
	return &ListMortgageFilesUseCase{files: files, policy: policy}
}

// Execute lists the files.
func (uc *ListMortgageFilesUseCase) Execute(ctx context.Context, req dto.ListMortgageFilesRequest) (dto.ListMortgageFilesResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapRead); err != nil {
		return dto.ListMortgageFilesResponse{}, err
	}
	if req.Status != "" {
		if _, err := valueobject.NewMortgageFileStatus(req.Status); err != nil {
			return dto.ListMortgageFilesResponse{}, model.NewValidationError("statut", "is not a known status")
		}
	}

	files, err := uc.files.List(ctx, req.Actor.TenantID, port.MortgageFileFilter{
		BankID:   req.BankID,
		NotaryID: req.NotaryID,
		Status:   req.Status,
	})
	if err != nil {
		return dto.ListMortgageFilesResponse{}, fmt.Errorf("list mortgage files: %w", err)
	}

	out := make([]dto.MortgageFileResponse, len(files))
	for i, f := range files {
		out[i] = toMortgageFileResponse(f)
	}
	return dto.ListMortgageFilesResponse{Files: out}, nil
}
