package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/application/usecase"
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/testutil"
)

func saleDirectory(status valueobject.SaleStatus) *mockSaleDirectory {
	return &mockSaleDirectory{sales: map[string]model.Sale{
		saleID: {ID: saleID, TenantID: tenant, Status: status},
	}}
}

func TestTransferToNotary_Execute(t *testing.T) {
	notaryID := testutil.NotaryID.String()

	t.Run("assigns the notary once the sale is paid", func(t *testing.T) {
		assigner := &mockNotaryAssigner{}
		publisher := &mockEventPublisher{}
		uc := usecase.NewTransferToNotaryUseCase(
			newPaymentRepository(openPayment("30000000", "30000000")),
			saleDirectory(valueobject.SaleStatusPaymentComplete),
			assigner, publisher, service.NewPolicy(), clock,
		)

		resp, err := uc.Execute(context.Background(), dto.TransferRequest{Actor: agent, PaymentID: "pay-1", NotaryID: notaryID})

		require.NoError(t, err)
		assert.Equal(t, saleID, resp.SaleID)
		assert.Equal(t, notaryID, assigner.assigned[saleID])
		assert.Equal(t, []string{"settlement.sale.transferred_to_notary"}, publisher.types())
	})

	t.Run("refuses while a balance remains", func(t *testing.T) {
		assigner := &mockNotaryAssigner{}
		uc := usecase.NewTransferToNotaryUseCase(
			newPaymentRepository(openPayment("30000000", "29999999")),
			saleDirectory(valueobject.SaleStatusPaymentComplete),
			assigner, &mockEventPublisher{}, service.NewPolicy(), clock,
		)

		_, err := uc.Execute(context.Background(), dto.TransferRequest{Actor: agent, PaymentID: "pay-1", NotaryID: notaryID})

		var blocked *model.TransferBlockedError
		require.ErrorAs(t, err, &blocked)
		assert.Contains(t, blocked.Reason, "1 remaining")
		assert.Empty(t, assigner.assigned)
	})

	t.Run("refuses a sale already with a notary", func(t *testing.T) {
		uc := usecase.NewTransferToNotaryUseCase(
			newPaymentRepository(openPayment("30000000", "30000000")),
			saleDirectory(valueobject.SaleStatusWithNotary),
			&mockNotaryAssigner{}, &mockEventPublisher{}, service.NewPolicy(), clock,
		)

		_, err := uc.Execute(context.Background(), dto.TransferRequest{Actor: agent, PaymentID: "pay-1", NotaryID: notaryID})

		require.ErrorIs(t, err, model.ErrTransferNotAllowed)
	})

	t.Run("refuses an unknown sale", func(t *testing.T) {
		uc := usecase.NewTransferToNotaryUseCase(
			newPaymentRepository(openPayment("30000000", "30000000")),
			&mockSaleDirectory{},
			&mockNotaryAssigner{}, &mockEventPublisher{}, service.NewPolicy(), clock,
		)

		_, err := uc.Execute(context.Background(), dto.TransferRequest{Actor: agent, PaymentID: "pay-1", NotaryID: notaryID})

		require.ErrorIs(t, err, model.ErrTransferNotAllowed)
	})

	t.Run("notary id is required", func(t *testing.T) {
		uc := usecase.NewTransferToNotaryUseCase(
			newPaymentRepository(), &mockSaleDirectory{},
			&mockNotaryAssigner{}, &mockEventPublisher{}, service.NewPolicy(), clock,
		)

		_, err := uc.Execute(context.Background(), dto.TransferRequest{Actor: agent, PaymentID: "pay-1"})

		require.ErrorIs(t, err, model.ErrValidation)
	})
}

func TestGetTransferEligibility_Execute(t *testing.T) {
	tests := []struct {
		name     string
		paid     string
		status   valueobject.SaleStatus
		eligible bool
	}{
		{"fully paid", "30000000", valueobject.SaleStatusPaymentComplete, true},
		{"balance remaining", "10000000", valueobject.SaleStatusPaymentComplete, false},
		{"already signed", "30000000", valueobject.SaleStatusDeedSigned, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewGetTransferEligibilityUseCase(
				newPaymentRepository(openPayment("30000000", tt.paid)),
				saleDirectory(tt.status), service.NewPolicy(),
			)

			resp, err := uc.Execute(context.Background(), dto.TransferEligibilityRequest{Actor: client, PaymentID: "pay-1"})

			require.NoError(t, err)
			assert.Equal(t, tt.eligible, resp.Eligible)
			if !tt.eligible {
				assert.NotEmpty(t, resp.Reason)
			}
		})
	}
}
