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

// OpenSalePaymentUseCase creates the payment record of a sale.
type OpenSalePaymentUseCase struct {
	payments  port.SalePaymentRepository
	publisher port.EventPublisher
	policy    *service.Policy
	clock     Clock
}

// NewOpenSalePaymentUseCase wires dependencies.
func NewOpenSalePaymentUseCase(
	payments port.SalePaymentRepository,
	publisher port.EventPublisher,
	policy *service.Policy,
	clock Clock,
) *OpenSalePaymentUseCase {
	return &OpenSalePaymentUseCase{payments: payments, publisher: publisher, policy: policy, clock: clock}
}

// Execute opens the record with nothing paid.
func (uc *OpenSalePaymentUseCase) Execute(ctx context.Context, req dto.OpenSalePaymentRequest) (dto.SalePaymentResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapPaymentOpen); err != nil {
		return dto.SalePaymentResponse{}, err
	}

	// 1. Validate the currency.
	currency, err := money.ParseCurrency(req.Currency)
	if err != nil {
		return dto.SalePaymentResponse{}, model.NewValidationError("currency", "must be a 3-letter ISO code")
	}

	// 2. Create the aggregate.
	payment, err := model.NewSalePayment(req.Actor.TenantID, req.SaleID, req.TotalAmount, currency, uc.clock())
	if err != nil {
		return dto.SalePaymentResponse{}, fmt.Errorf("open payment: %w", err)
	}

	// 3. Persist.
	if err := uc.payments.Save(ctx, payment); err != nil {
		return dto.SalePaymentResponse{}, fmt.Errorf("save payment: %w", err)
	}

	// 4. Publish events.
	publishCommitted(ctx, uc.publisher, payment.DomainEvents()...)

	return toSalePaymentResponse(payment), nil
}
