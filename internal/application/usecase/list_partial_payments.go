package usecase

import (
	"context"
	"fmt"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// ListPartialPaymentsUseCase returns the payment history of a sale.
type ListPartialPaymentsUseCase struct {
	payments port.SalePaymentRepository
	policy   *service.Policy
}

// NewListPartialPaymentsUseCase wires dependencies.
func NewListPartialPaymentsUseCase(payments port.SalePaymentRepository, policy *service.Policy) *ListPartialPaymentsUseCase {
	return &ListPartialPaymentsUseCase{payments: payments, policy: policy}
}

// Execute lists payments oldest first.
func (uc *ListPartialPaymentsUseCase) Execute(ctx context.Context, req dto.ListPartialPaymentsRequest) (dto.ListPartialPaymentsResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapRead); err != nil {
		return dto.ListPartialPaymentsResponse{}, err
	}

	// The lookup makes an unknown payment a not-found error, not an empty list.
	if _, err := uc.payments.FindByID(ctx, req.Actor.TenantID, req.PaymentID); err != nil {
		return dto.ListPartialPaymentsResponse{}, fmt.Errorf("find payment: %w", err)
	}
	records, err := uc.payments.ListPartialPayments(ctx, req.Actor.TenantID, req.PaymentID)
	if err != nil {
		return dto.ListPartialPaymentsResponse{}, fmt.Errorf("list partial payments: %w", err)
	}

	out := make([]dto.PartialPaymentResponse, len(records))
	for i, pp := range records {
		out[i] = toPartialPaymentResponse(pp)
	}
	return dto.ListPartialPaymentsResponse{PaymentID: req.PaymentID, Payments: out}, nil
}
