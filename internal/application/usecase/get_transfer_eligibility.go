package usecase

import (
	"context"
	"fmt"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// GetTransferEligibilityUseCase evaluates the notary transfer gate without
// changing anything.
type GetTransferEligibilityUseCase struct {
	payments port.SalePaymentRepository
	sales    port.SaleDirectory
	policy   *service.Policy
}

// NewGetTransferEligibilityUseCase wires dependencies.
func NewGetTransferEligibilityUseCase(
	payments port.SalePaymentRepository,
	sales port.SaleDirectory,
	policy *service.Policy,
) *GetTransferEligibilityUseCase {
	return &GetTransferEligibilityUseCase{payments: payments, sales: sales, policy: policy}
}

// Execute reports the gate decision.
func (uc *GetTransferEligibilityUseCase) Execute(ctx context.Context, req dto.TransferEligibilityRequest) (dto.TransferEligibilityResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapRead); err != nil {
		return dto.TransferEligibilityResponse{}, err
	}

	payment, err := uc.payments.FindByID(ctx, req.Actor.TenantID, req.PaymentID)
	if err != nil {
		return dto.TransferEligibilityResponse{}, fmt.Errorf("find payment: %w", err)
	}
	sale, err := lookupSale(ctx, uc.sales, req.Actor.TenantID, payment.SaleID())
	if err != nil {
		return dto.TransferEligibilityResponse{}, err
	}

	decision := service.EvaluateTransfer(payment, sale)
	return dto.TransferEligibilityResponse{
		PaymentID: payment.ID(),
		Eligible:  decision.Eligible,
		Reason:    decision.Reason,
	}, nil
}
