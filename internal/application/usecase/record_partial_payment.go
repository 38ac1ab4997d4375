package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/event"
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/money"
)

// RecordPartialPaymentUseCase applies a payment to a sale's ledger and, when
// the payment targets an installment, settles it in the same transaction.
type RecordPartialPaymentUseCase struct {
	payments    port.SalePaymentRepository
	schedules   port.ScheduleRepository
	tx          port.Transactor
	idempotency port.IdempotencyGuard
	publisher   port.EventPublisher
	policy      *service.Policy
	clock       Clock
}

// NewRecordPartialPaymentUseCase wires dependencies.
func NewRecordPartialPaymentUseCase(
	payments port.SalePaymentRepository,
	schedules port.ScheduleRepository,
	tx port.Transactor,
	idempotency port.IdempotencyGuard,
	publisher port.EventPublisher,
	policy *service.Policy,
	clock Clock,
) *RecordPartialPaymentUseCase {
	return &RecordPartialPaymentUseCase{
		payments:    payments,
		schedules:   schedules,
		tx:          tx,
		idempotency: idempotency,
		publisher:   publisher,
		policy:      policy,
		clock:       clock,
	}
}

// Execute records the payment.
func (uc *RecordPartialPaymentUseCase) Execute(ctx context.Context, req dto.RecordPartialPaymentRequest) (dto.RecordPartialPaymentResponse, error) {
	if err := uc.policy.Authorize(req.Actor.Roles, valueobject.CapPaymentRecord); err != nil {
		return dto.RecordPartialPaymentResponse{}, err
	}
	return uc.record(ctx, req, chargeExact)
}

// chargeMode decides how much of the request reaches the ledger.
type chargeMode int

const (
	// chargeExact applies the full amount or fails with an overpayment.
	chargeExact chargeMode = iota
	// chargeUpToRemaining caps the amount at the remaining balance. Money
	// already received without an installment reference covers the rest.
	chargeUpToRemaining
)

func (uc *RecordPartialPaymentUseCase) record(ctx context.Context, req dto.RecordPartialPaymentRequest, mode chargeMode) (dto.RecordPartialPaymentResponse, error) {
	if !req.Amount.IsPositive() {
		return dto.RecordPartialPaymentResponse{}, model.NewValidationError("amount", "must be greater than zero")
	}

	// 1. Claim the idempotency key so a retried request is not applied twice.
	if req.IdempotencyKey != "" {
		claimed, err := uc.idempotency.Claim(ctx, idempotencyScope(req.PaymentID), req.IdempotencyKey)
		if err != nil {
			return dto.RecordPartialPaymentResponse{}, fmt.Errorf("claim idempotency key: %w", err)
		}
		if !claimed {
			return dto.RecordPartialPaymentResponse{}, model.ErrDuplicateRequest
		}
	}

	now := uc.clock()
	var (
		payment  model.SalePayment
		partial  *model.PartialPayment
		schedule *model.Schedule
	)

	// 2. Apply the payment and the installment together.
	err := uc.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		current, err := uc.payments.FindByID(ctx, req.Actor.TenantID, req.PaymentID)
		if err != nil {
			return fmt.Errorf("find payment: %w", err)
		}

		amount := req.Amount
		if mode == chargeUpToRemaining {
			amount = decimal.Min(amount, current.Balance().Remaining())
		}

		payment = current
		if amount.IsPositive() {
			next, pp, err := current.RecordPayment(model.Receipt{
				Amount:        amount,
				URL:           req.ReceiptURL,
				Filename:      req.ReceiptFilename,
				InstallmentID: req.InstallmentID,
				RecordedBy:    req.Actor.UserID,
			}, now)
			if err != nil {
				return fmt.Errorf("record payment: %w", err)
			}
			payment, partial = next, &pp
		}

		if req.InstallmentID != "" {
			s, err := uc.settleInstallment(ctx, req, now)
			if err != nil {
				return err
			}
			schedule = &s
		}

		if partial == nil {
			return nil
		}
		if err := uc.payments.Save(ctx, payment); err != nil {
			return fmt.Errorf("save payment: %w", err)
		}
		if err := uc.payments.AppendPartialPayment(ctx, req.Actor.TenantID, *partial); err != nil {
			return fmt.Errorf("append partial payment: %w", err)
		}
		return nil
	})
	if err != nil {
		// Nothing was written, so the client may retry with the same key.
		uc.releaseKey(ctx, req)
		return dto.RecordPartialPaymentResponse{}, err
	}

	// 3. Publish events once committed. The key stays claimed from here on.
	events := payment.DomainEvents()
	if schedule != nil {
		events = append(append([]event.DomainEvent{}, events...), schedule.DomainEvents()...)
	}
	publishCommitted(ctx, uc.publisher, events...)

	resp := dto.RecordPartialPaymentResponse{Payment: toSalePaymentResponse(payment)}
	if partial != nil {
		resp.PartialPayment = toPartialPaymentResponse(*partial)
	}
	if schedule != nil {
		sr := toScheduleResponse(*schedule, now)
		resp.Schedule = &sr
	}
	return resp, nil
}

func (uc *RecordPartialPaymentUseCase) releaseKey(ctx context.Context, req dto.RecordPartialPaymentRequest) {
	if req.IdempotencyKey == "" {
		return
	}
	if err := uc.idempotency.Release(context.WithoutCancel(ctx), idempotencyScope(req.PaymentID), req.IdempotencyKey); err != nil {
		slog.WarnContext(ctx, "failed to release idempotency key",
			"payment_id", req.PaymentID, "error", err)
	}
}

func idempotencyScope(paymentID string) string { return "payment:" + paymentID }

func (uc *RecordPartialPaymentUseCase) settleInstallment(ctx context.Context, req dto.RecordPartialPaymentRequest, now time.Time) (model.Schedule, error) {
	s, err := uc.schedules.FindByPaymentID(ctx, req.Actor.TenantID, req.PaymentID)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("find schedule: %w", err)
	}
	inst, ok := s.Installment(req.InstallmentID)
	if !ok {
		return model.Schedule{}, fmt.Errorf("installment %s: %w", req.InstallmentID, model.ErrNotFound)
	}
	if !money.WithinTolerance(req.Amount, inst.Amount, money.Cent) {
		return model.Schedule{}, model.NewValidationError("amount",
			fmt.Sprintf("must equal the installment amount %s", inst.Amount.String()))
	}
	s, err = s.MarkInstallmentPaid(req.InstallmentID, now)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("mark installment paid: %w", err)
	}
	if err := uc.schedules.Save(ctx, s); err != nil {
		return model.Schedule{}, fmt.Errorf("save schedule: %w", err)
	}
	return s, nil
}
