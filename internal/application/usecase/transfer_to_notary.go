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

// TransferToNotaryUseCase hands a fully paid sale to a notary.
type TransferToNotaryUseCase struct {
	payments  port.SalePaymentRepository
	sales     port.SaleDirectory
	notaries  port.NotaryAssigner
	publisher port.EventPublisher
	policy    *service.Policy
	clock     Clock
}

// NewTransferToNotaryUseCase wires dependencies.
func NewTransferToNotaryUseCase(
	payments port.SalePaymentRepository,
	sales port.SaleDirectory,
	notaries port.NotaryAssigner,
	publisher port.EventPublisher,
	policy *service.Policy,
	clock Clock,
) *TransferToNotaryUseCase {
	return &TransferToNotaryUseCase{
		payments:  payments,
		sales:     sales,
		notaries:  notaries,
		publisher: publisher,
		policy:    policy,
		clock:     clock,
	}
}

// Execute assigns the notary when the transfer gate allows it.
func (uc *TransferToNotaryUseCase) Execute(ctx context.Context, req dto.TransferRequest) (dto.TransferResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapSaleTransfer); err != nil {
		return dto.TransferResponse{}, err
	}
	if req.NotaryID == "" {
		return dto.TransferResponse{}, model.NewValidationError("notaryId", "is required")
	}

	// 1. Load the payment and its sale.
	payment, err := uc.payments.FindByID(ctx, req.Actor.TenantID, req.PaymentID)
	if err != nil {
		return dto.TransferResponse{}, fmt.Errorf("find payment: %w", err)
	}
	sale, err := lookupSale(ctx, uc.sales, req.Actor.TenantID, payment.SaleID())
	if err != nil {
		return dto.TransferResponse{}, err
	}

	// 2. Check the gate.
	decision := service.EvaluateTransfer(payment, sale)
	if !decision.Eligible {
		return dto.TransferResponse{}, &model.TransferBlockedError{Reason: decision.Reason}
	}

	// 3. Assign the notary in the sales system.
	if err := uc.notaries.AssignNotary(ctx, req.Actor.TenantID, sale.ID, req.NotaryID); err != nil {
		return dto.TransferResponse{}, fmt.Errorf("assign notary: %w", err)
	}

	// 4. Publish events.
	payment = payment.MarkTransferred(req.NotaryID, uc.clock())
	publishCommitted(ctx, uc.publisher, payment.DomainEvents()...)

	return dto.TransferResponse{PaymentID: payment.ID(), SaleID: sale.ID, NotaryID: req.NotaryID}, nil
}

// lookupSale returns nil when the payment has no sale or the sale is unknown.
func lookupSale(ctx context.Context, sales port.SaleDirectory, tenantID, saleID string) (*model.Sale, error) {
	if saleID == "" {
		return nil, nil
	}
	sale, err := sales.FindSale(ctx, tenantID, saleID)
	if errors.Is(err, model.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find sale: %w", err)
	}
	return &sale, nil
}
