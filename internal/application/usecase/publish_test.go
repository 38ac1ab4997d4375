package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/application/usecase"
	"github.com/dillanci/settlement/internal/domain/event"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/testutil"
)

func brokerDown() *mockEventPublisher {
	return &mockEventPublisher{publishFunc: func(context.Context, ...event.DomainEvent) error {
		return errors.New("broker down")
	}}
}

func TestCommittedWrites_SurvivePublishFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("open sale payment", func(t *testing.T) {
		payments := newPaymentRepository()
		uc := usecase.NewOpenSalePaymentUseCase(payments, brokerDown(), service.NewPolicy(), clock)

		_, err := uc.Execute(ctx, dto.OpenSalePaymentRequest{Actor: agent, SaleID: saleID, TotalAmount: dec("1000")})

		require.NoError(t, err)
		assert.Len(t, payments.savedPayments, 1)
	})

	t.Run("create schedule", func(t *testing.T) {
		schedules := newScheduleRepository()
		uc := usecase.NewCreateScheduleUseCase(newPaymentRepository(openPayment("30000000", "0")), schedules, brokerDown(), service.NewPolicy(), clock)

		resp, err := uc.Execute(ctx, dto.CreateScheduleRequest{
			Actor: agent, PaymentID: "pay-1", Installments: threeMonthly("10000000"),
		})

		require.NoError(t, err)
		assert.Len(t, resp.Installments, 3)
		assert.Len(t, schedules.savedSchedules, 1)
	})

	t.Run("replace schedule", func(t *testing.T) {
		stored := storedSchedule(t, testutil.Date(2025, time.April, 1))
		schedules := newScheduleRepository(stored)
		uc := usecase.NewReplaceScheduleUseCase(schedules, brokerDown(), service.NewPolicy(), clock)
		insts := stored.Installments()

		_, err := uc.Execute(ctx, dto.ReplaceScheduleRequest{
			Actor: agent, ScheduleID: stored.ID(),
			Installments: []dto.InstallmentInput{
				{ID: insts[0].ID, DueDate: insts[0].DueDate, Amount: dec("20000000")},
				{ID: insts[1].ID, DueDate: insts[1].DueDate, Amount: dec("10000000")},
			},
		})

		require.NoError(t, err)
		assert.Len(t, schedules.savedSchedules, 1)
	})

	t.Run("transfer to notary", func(t *testing.T) {
		assigner := &mockNotaryAssigner{}
		uc := usecase.NewTransferToNotaryUseCase(
			newPaymentRepository(openPayment("30000000", "30000000")),
			saleDirectory(valueobject.SaleStatusPaymentComplete),
			assigner, brokerDown(), service.NewPolicy(), clock,
		)

		_, err := uc.Execute(ctx, dto.TransferRequest{Actor: agent, PaymentID: "pay-1", NotaryID: testutil.NotaryID.String()})

		require.NoError(t, err)
		assert.Equal(t, testutil.NotaryID.String(), assigner.assigned[saleID])
	})

	t.Run("submit mortgage file", func(t *testing.T) {
		files := newMortgageFileRepository()
		uc := usecase.NewSubmitMortgageFileUseCase(files, brokerDown(), service.NewPolicy(), clock)

		_, err := uc.Execute(ctx, dto.SubmitMortgageFileRequest{
			Actor:              bank,
			BankID:             testutil.BankID.String(),
			NotaryID:           testutil.NotaryID.String(),
			BorrowerName:       "Awa Diop",
			CreditAmount:       dec("25000000"),
			TitleDeed:          dto.DocumentDTO{URL: "https://files.example.com/tf.pdf"},
			CreditNotification: dto.DocumentDTO{URL: "https://files.example.com/nc.pdf"},
		})

		require.NoError(t, err)
		assert.Equal(t, 1, files.saves)
	})

	t.Run("transition mortgage file is not retried into a stale error", func(t *testing.T) {
		f := submittedFile(t)
		files := newMortgageFileRepository(f)
		uc := transitionUseCase(files, brokerDown())

		resp, err := uc.Execute(ctx, dto.TransitionMortgageFileRequest{Actor: notary, FileID: f.ID(), Action: "accept"})

		require.NoError(t, err)
		assert.Equal(t, "en_traitement_notaire", resp.Status)
		assert.True(t, files.files[f.ID()].Status().Equal(valueobject.MortgageStatusNotaryProcessing))
	})
}
