package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dillanci/settlement/internal/domain/model"
)

// errorCodes is checked in order; the first matching sentinel wins.
// Stale state also matches ErrInvalidTransition, so it comes first.
var errorCodes = []struct {
	target error
	code   codes.Code
}{
	{model.ErrStaleState, codes.Aborted},
	{model.ErrConcurrentModification, codes.Aborted},
	{model.ErrValidation, codes.InvalidArgument},
	{model.ErrInvalidAmount, codes.InvalidArgument},
	{model.ErrEmptySchedule, codes.InvalidArgument},
	{model.ErrScheduleImbalance, codes.InvalidArgument},
	{model.ErrScheduleAlreadyExists, codes.AlreadyExists},
	{model.ErrDuplicateRequest, codes.AlreadyExists},
	{model.ErrInvalidTransition, codes.FailedPrecondition},
	{model.ErrOverpayment, codes.FailedPrecondition},
	{model.ErrInstallmentAlreadyPaid, codes.FailedPrecondition},
	{model.ErrTransferNotAllowed, codes.FailedPrecondition},
	{model.ErrNotFound, codes.NotFound},
	{model.ErrForbidden, codes.PermissionDenied},
}

// toStatus maps a use case error to a gRPC status. Unclassified errors are
// logged and reported as Internal without leaking their text.
func (h *SettlementHandler) toStatus(ctx context.Context, method string, err error) error {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.target) {
			return status.Error(ec.code, err.Error())
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}

	h.logger.ErrorContext(ctx, "settlement call failed",
		slog.String("method", method),
		slog.String("error", err.Error()),
	)
	return status.Error(codes.Internal, "internal error")
}
