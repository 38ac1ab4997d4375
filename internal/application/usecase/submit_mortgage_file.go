package usecase

import (
	"context"
	"fmt"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/money"
)

// SubmitMortgageFileUseCase opens a mortgage credit file on behalf of a bank.
type SubmitMortgageFileUseCase struct {
	files     port.MortgageFileRepository
	publisher port.EventPublisher
	policy    *service.Policy
	clock     Clock
}

// NewSubmitMortgageFileUseCase wires dependencies.
func NewSubmitMortgageFileUseCase(
	files port.MortgageFileRepository,
	publisher port.EventPublisher,
	policy *service.Policy,
	clock Clock,
) *SubmitMortgageFileUseCase {
	return &SubmitMortgageFileUseCase{files: files, publisher: publisher, policy: policy, clock: clock}
}

// Execute creates the file in soumis_par_banque.
func (uc *SubmitMortgageFileUseCase) Execute(ctx context.Context, req dto.SubmitMortgageFileRequest) (dto.MortgageFileResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapMortgageSubmit); err != nil {
		return dto.MortgageFileResponse{}, err
	}

	currency, err := money.ParseCurrency(req.Currency)
	if err != nil {
		return dto.MortgageFileResponse{}, model.NewValidationError("currency", "must be a 3-letter ISO code")
	}

	// 1. Create the aggregate.
	file, err := model.NewMortgageFile(model.MortgageSubmission{
		TenantID:     req.Actor.TenantID,
		BankID:       req.BankID,
		NotaryID:     req.NotaryID,
		BorrowerName: req.BorrowerName,
		CreditAmount: req.CreditAmount,
		Currency:     currency,
		Documents: model.BankDocuments{
			TitleDeed:          toDocument(req.TitleDeed),
			CreditNotification: toDocument(req.CreditNotification),
		},
	}, uc.clock())
	if err != nil {
		return dto.MortgageFileResponse{}, fmt.Errorf("submit mortgage file: %w", err)
	}

	// 2. Persist.
	if err := uc.files.Save(ctx, file, valueobject.MortgageFileStatus{}); err != nil {
		return dto.MortgageFileResponse{}, fmt.Errorf("save mortgage file: %w", err)
	}

	// 3. Publish events.
	publishCommitted(ctx, uc.publisher, file.DomainEvents()...)

	return toMortgageFileResponse(file), nil
}
