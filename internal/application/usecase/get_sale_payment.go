package usecase

import (
	"context"
	"fmt"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// GetSalePaymentUseCase reads a sale's ledger.
type GetSalePaymentUseCase struct {
	payments port.SalePaymentRepository
	policy   *service.Policy
}

// NewGetSalePaymentUseCase wires dependencies.
func NewGetSalePaymentUseCase(payments port.SalePaymentRepository, policy *service.Policy) *GetSalePaymentUseCase {
	return &GetSalePaymentUseCase{payments: payments, policy: policy}
}

// Execute returns the ledger snapshot.
func (uc *GetSalePaymentUseCase) Execute(ctx context.Context, req dto.GetSalePaymentRequest) (dto.SalePaymentResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapRead); err != nil {
		return dto.SalePaymentResponse{}, err
	}
	payment, err := uc.payments.FindByID(ctx, req.Actor.TenantID, req.PaymentID)
	if err != nil {
		return dto.SalePaymentResponse{}, fmt.Errorf("find payment: %w", err)
	}
	return toSalePaymentResponse(payment), nil
}
