package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/money"
)

// MaxInstallments bounds the length of a schedule.
const MaxInstallments = 360

// PlanRequest holds the parameters of an automatically generated schedule.
type PlanRequest struct {
	Count                int
	Frequency            valueobject.Frequency
	FirstDueDate         time.Time
	AmountPerInstallment decimal.Decimal
	Remaining            decimal.Decimal
}

// GenerateInstallmentPlan splits the remaining balance into Count flat
// installments spaced by Frequency. Every installment is
// AmountPerInstallment except the last, which takes whatever is left so the
// plan sums to Remaining exactly.
//
// The result is a proposal: callers review it and submit it through schedule
// creation, which validates it again.
func GenerateInstallmentPlan(req PlanRequest) ([]InstallmentDraft, error) {
	if req.Count < 1 {
		return nil, NewValidationError("count", "must be at least 1")
	}
	if req.Count > MaxInstallments {
		return nil, NewValidationError("count", fmt.Sprintf("must be at most %d", MaxInstallments))
	}
	if req.Frequency.IsZero() {
		return nil, NewValidationError("frequency", "is required")
	}
	if req.FirstDueDate.IsZero() {
		return nil, NewValidationError("firstDueDate", "is required")
	}
	if !req.AmountPerInstallment.IsPositive() {
		return nil, NewValidationError("amountPerInstallment", "must be greater than zero")
	}
	if !money.HasValidScale(req.AmountPerInstallment) {
		return nil, NewValidationError("amountPerInstallment",
			fmt.Sprintf("must have at most %d decimal places", money.MaxScale))
	}

	requested := req.AmountPerInstallment.Mul(decimal.NewFromInt(int64(req.Count)))
	if requested.GreaterThan(req.Remaining.Add(money.Unit)) {
		return nil, &ExceedsBalanceError{Requested: requested, Remaining: req.Remaining}
	}

	first := dateOf(req.FirstDueDate)
	drafts := make([]InstallmentDraft, req.Count)
	allocated := decimal.Zero
	for i := 0; i < req.Count-1; i++ {
		drafts[i] = InstallmentDraft{
			DueDate: req.Frequency.DueDate(first, i),
			Amount:  req.AmountPerInstallment,
		}
		allocated = allocated.Add(req.AmountPerInstallment)
	}

	last := req.Count - 1
	lastAmount := req.Remaining.Sub(allocated)
	if !lastAmount.IsPositive() {
		return nil, NewInstallmentError(last, "amount", "would not be positive after balancing")
	}
	drafts[last] = InstallmentDraft{
		DueDate: req.Frequency.DueDate(first, last),
		Amount:  lastAmount,
	}
	return drafts, nil
}
