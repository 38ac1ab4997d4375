package service

import (
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// TransferDecision is the outcome of the notary transfer gate.
type TransferDecision struct {
	Eligible bool
	Reason   string
}

// CanTransferToNotary reports whether a settled sale may move to notarial
// handling. It has no side effects.
func CanTransferToNotary(payment model.SalePayment, sale *model.Sale) bool {
	return EvaluateTransfer(payment, sale).Eligible
}

// EvaluateTransfer is CanTransferToNotary with the reason for a refusal.
func EvaluateTransfer(payment model.SalePayment, sale *model.Sale) TransferDecision {
	switch {
	case !payment.Status().IsPaid():
		return TransferDecision{Reason: "payment is not complete, " + payment.Balance().Remaining().String() + " remaining"}
	case sale == nil:
		return TransferDecision{Reason: "payment is not linked to a sale"}
	case sale.Status.AlreadyTransferred():
		return TransferDecision{Reason: "sale already transferred (" + string(sale.Status) + ")"}
	case sale.Status != valueobject.SaleStatusPaymentComplete:
		return TransferDecision{Reason: "sale status is " + string(sale.Status) + ", expected " + string(valueobject.SaleStatusPaymentComplete)}
	}
	return TransferDecision{Eligible: true}
}
