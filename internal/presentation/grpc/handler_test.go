package grpc_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dillanci/settlement/internal/application/usecase"
	"github.com/dillanci/settlement/internal/domain/event"
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/service"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	settlementgrpc "github.com/dillanci/settlement/internal/presentation/grpc"
	"github.com/dillanci/settlement/pkg/auth"
)

// --- Mock implementations ---

type mockPaymentRepo struct {
	mu       sync.Mutex
	payments map[string]model.SalePayment
	partials map[string][]model.PartialPayment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{
		payments: make(map[string]model.SalePayment),
		partials: make(map[string][]model.PartialPayment),
	}
}

func (m *mockPaymentRepo) Save(_ context.Context, p model.SalePayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID()] = p
	return nil
}

func (m *mockPaymentRepo) FindByID(_ context.Context, _, id string) (model.SalePayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return model.SalePayment{}, model.ErrNotFound
	}
	return p, nil
}

func (m *mockPaymentRepo) AppendPartialPayment(_ context.Context, _ string, pp model.PartialPayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partials[pp.PaymentID] = append(m.partials[pp.PaymentID], pp)
	return nil
}

func (m *mockPaymentRepo) ListPartialPayments(_ context.Context, _, paymentID string) ([]model.PartialPayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.partials[paymentID], nil
}

type mockScheduleRepo struct{}

func (mockScheduleRepo) Save(context.Context, model.Schedule) error { return nil }
func (mockScheduleRepo) FindByID(context.Context, string, string) (model.Schedule, error) {
	return model.Schedule{}, model.ErrNotFound
}
func (mockScheduleRepo) FindByPaymentID(context.Context, string, string) (model.Schedule, error) {
	return model.Schedule{}, model.ErrNotFound
}

type mockMortgageRepo struct {
	findErr error
}

func (m *mockMortgageRepo) Save(context.Context, model.MortgageFile, valueobject.MortgageFileStatus) error {
	return nil
}

func (m *mockMortgageRepo) FindByID(context.Context, string, string) (model.MortgageFile, error) {
	return model.MortgageFile{}, m.findErr
}

func (m *mockMortgageRepo) List(context.Context, string, port.MortgageFileFilter) ([]model.MortgageFile, error) {
	return nil, nil
}

type mockPublisher struct{}

func (mockPublisher) Publish(context.Context, ...event.DomainEvent) error { return nil }

type mockTransactor struct{}

func (mockTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type mockGuard struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (g *mockGuard) Claim(_ context.Context, scope, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.keys == nil {
		g.keys = make(map[string]bool)
	}
	if g.keys[scope+key] {
		return false, nil
	}
	g.keys[scope+key] = true
	return true, nil
}

func (g *mockGuard) Release(_ context.Context, scope, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, scope+key)
	return nil
}

type mockSales struct{}

func (mockSales) FindSale(context.Context, string, string) (model.Sale, error) {
	return model.Sale{}, model.ErrNotFound
}

func (mockSales) AssignNotary(context.Context, string, string, string) error { return nil }

// --- Helpers ---

var tenantID = uuid.New()

func contextWithRoles(roles ...string) context.Context {
	claims := &auth.Claims{
		UserID:   uuid.New(),
		TenantID: tenantID,
		Roles:    roles,
	}
	return auth.ContextWithClaims(context.Background(), claims)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	handler   *settlementgrpc.SettlementHandler
	payments  *mockPaymentRepo
	mortgages *mockMortgageRepo
}

func buildTestHandler() fixture {
	payments := newMockPaymentRepo()
	schedules := mockScheduleRepo{}
	mortgages := &mockMortgageRepo{findErr: model.ErrNotFound}
	publisher := mockPublisher{}
	policy := service.NewPolicy()
	clock := func() time.Time { return time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC) }

	recorder := usecase.NewRecordPartialPaymentUseCase(payments, schedules, mockTransactor{}, &mockGuard{}, publisher, policy, clock)
	h := settlementgrpc.NewSettlementHandler(settlementgrpc.UseCases{
		GetSchedule:            usecase.NewGetScheduleUseCase(schedules, policy, clock),
		PreviewSchedule:        usecase.NewPreviewScheduleUseCase(payments, policy, clock),
		CreateSchedule:         usecase.NewCreateScheduleUseCase(payments, schedules, publisher, policy, clock),
		ReplaceSchedule:        usecase.NewReplaceScheduleUseCase(schedules, publisher, policy, clock),
		MarkInstallmentPaid:    usecase.NewMarkInstallmentPaidUseCase(schedules, recorder, policy),
		OpenSalePayment:        usecase.NewOpenSalePaymentUseCase(payments, publisher, policy, clock),
		GetSalePayment:         usecase.NewGetSalePaymentUseCase(payments, policy),
		RecordPartialPayment:   recorder,
		ListPartialPayments:    usecase.NewListPartialPaymentsUseCase(payments, policy),
		GetTransferEligibility: usecase.NewGetTransferEligibilityUseCase(payments, mockSales{}, policy),
		TransferToNotary:       usecase.NewTransferToNotaryUseCase(payments, mockSales{}, mockSales{}, publisher, policy, clock),
		SubmitMortgageFile:     usecase.NewSubmitMortgageFileUseCase(mortgages, publisher, policy, clock),
		GetMortgageFile:        usecase.NewGetMortgageFileUseCase(mortgages, policy),
		ListMortgageFiles:      usecase.NewListMortgageFilesUseCase(mortgages, policy),
		TransitionMortgageFile: usecase.NewTransitionMortgageFileUseCase(mortgages, publisher, policy, clock),
	}, testLogger())

	return fixture{handler: h, payments: payments, mortgages: mortgages}
}

func requireGRPCCode(t *testing.T, err error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok, "expected gRPC status error, got %v", err)
	assert.Equal(t, code, st.Code(), st.Message())
}

func openPayment(t *testing.T, f fixture, total string) *settlementgrpc.SalePaymentResponse {
	t.Helper()
	resp, err := f.handler.OpenSalePayment(contextWithRoles(auth.RoleAgence), &settlementgrpc.OpenSalePaymentRequest{
		SaleID:      "sale-1",
		TotalAmount: total,
		Currency:    "XOF",
	})
	require.NoError(t, err)
	return resp
}

// --- Tests ---

func TestOpenSalePayment(t *testing.T) {
	t.Run("nil request returns InvalidArgument", func(t *testing.T) {
		f := buildTestHandler()
		_, err := f.handler.OpenSalePayment(contextWithRoles(auth.RoleAgence), nil)
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("missing claims returns Unauthenticated", func(t *testing.T) {
		f := buildTestHandler()
		_, err := f.handler.OpenSalePayment(context.Background(), &settlementgrpc.OpenSalePaymentRequest{TotalAmount: "100"})
		requireGRPCCode(t, err, codes.Unauthenticated)
	})

	t.Run("malformed amount returns InvalidArgument", func(t *testing.T) {
		f := buildTestHandler()
		_, err := f.handler.OpenSalePayment(contextWithRoles(auth.RoleAgence), &settlementgrpc.OpenSalePaymentRequest{TotalAmount: "12,5"})
		requireGRPCCode(t, err, codes.InvalidArgument)
	})

	t.Run("client role returns PermissionDenied", func(t *testing.T) {
		f := buildTestHandler()
		_, err := f.handler.OpenSalePayment(contextWithRoles(auth.RoleClient), &settlementgrpc.OpenSalePaymentRequest{TotalAmount: "100"})
		requireGRPCCode(t, err, codes.PermissionDenied)
	})

	t.Run("success", func(t *testing.T) {
		f := buildTestHandler()
		resp := openPayment(t, f, "1500000")

		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "1500000", resp.TotalAmount.String())
		assert.True(t, resp.PaidAmount.IsZero())
		assert.Equal(t, "unpaid", resp.Status)
		assert.Len(t, f.payments.payments, 1)
	})
}

func TestRecordPartialPayment(t *testing.T) {
	t.Run("records and reports the new balance", func(t *testing.T) {
		f := buildTestHandler()
		payment := openPayment(t, f, "1000")

		resp, err := f.handler.RecordPartialPayment(contextWithRoles(auth.RoleAgence), &settlementgrpc.RecordPartialPaymentRequest{
			PaymentID: payment.ID,
			Amount:    "400.50",
		})
		require.NoError(t, err)
		assert.Equal(t, "400.5", resp.Payment.PaidAmount.String())
		assert.Equal(t, "599.5", resp.Payment.RemainingAmount.String())
		assert.Nil(t, resp.Schedule)
	})

	t.Run("overpayment returns FailedPrecondition", func(t *testing.T) {
		f := buildTestHandler()
		payment := openPayment(t, f, "1000")

		_, err := f.handler.RecordPartialPayment(contextWithRoles(auth.RoleAgence), &settlementgrpc.RecordPartialPaymentRequest{
			PaymentID: payment.ID,
			Amount:    "1000.01",
		})
		requireGRPCCode(t, err, codes.FailedPrecondition)
	})

	t.Run("replayed idempotency key returns AlreadyExists", func(t *testing.T) {
		f := buildTestHandler()
		payment := openPayment(t, f, "1000")
		req := &settlementgrpc.RecordPartialPaymentRequest{
			PaymentID:      payment.ID,
			Amount:         "100",
			IdempotencyKey: "receipt-42",
		}

		_, err := f.handler.RecordPartialPayment(contextWithRoles(auth.RoleAgence), req)
		require.NoError(t, err)
		_, err = f.handler.RecordPartialPayment(contextWithRoles(auth.RoleAgence), req)
		requireGRPCCode(t, err, codes.AlreadyExists)
	})

	t.Run("unknown payment returns NotFound", func(t *testing.T) {
		f := buildTestHandler()
		_, err := f.handler.RecordPartialPayment(contextWithRoles(auth.RoleAgence), &settlementgrpc.RecordPartialPaymentRequest{
			PaymentID: "missing",
			Amount:    "10",
		})
		requireGRPCCode(t, err, codes.NotFound)
	})
}

func TestCreateSchedule_RejectsMalformedDate(t *testing.T) {
	f := buildTestHandler()
	_, err := f.handler.CreateSchedule(contextWithRoles(auth.RoleAgence), &settlementgrpc.CreateScheduleRequest{
		PaymentID: "pay-1",
		Mode:      "manual",
		Installments: []settlementgrpc.InstallmentMessage{
			{DueDate: "10/04/2025", Amount: "100"},
		},
	})
	requireGRPCCode(t, err, codes.InvalidArgument)
}

func TestGetSchedule_AbsentIsNotAnError(t *testing.T) {
	f := buildTestHandler()
	resp, err := f.handler.GetSchedule(contextWithRoles(auth.RoleClient), &settlementgrpc.GetScheduleRequest{PaymentID: "pay-1"})
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Nil(t, resp.Schedule)
}

func TestPreviewSchedule_Bounds(t *testing.T) {
	f := buildTestHandler()
	payment := openPayment(t, f, "300000")
	req := settlementgrpc.PreviewScheduleRequest{
		PaymentID:            payment.ID,
		Count:                3,
		Frequency:            "monthly",
		FirstDueDate:         "2025-04-01",
		AmountPerInstallment: "100000",
	}

	resp, err := f.handler.PreviewSchedule(contextWithRoles(auth.RoleClient), &req)
	require.NoError(t, err)
	assert.Len(t, resp.Installments, 3)

	huge := req
	huge.Count = 2_000_000_000
	huge.AmountPerInstallment = "0.01"
	_, err = f.handler.PreviewSchedule(contextWithRoles(auth.RoleClient), &huge)
	requireGRPCCode(t, err, codes.InvalidArgument)

	fine := req
	fine.Count = 300
	fine.AmountPerInstallment = "0.000001"
	_, err = f.handler.PreviewSchedule(contextWithRoles(auth.RoleClient), &fine)
	requireGRPCCode(t, err, codes.InvalidArgument)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"not found", model.ErrNotFound, codes.NotFound},
		{"stale", &model.StaleStateError{Current: valueobject.MortgageStatusRejected, Action: valueobject.MortgageActionAccept}, codes.Aborted},
		{"lost race", model.ErrConcurrentModification, codes.Aborted},
		{"transition", &model.TransitionError{From: valueobject.MortgageStatusRejected, Action: valueobject.MortgageActionFinalize}, codes.FailedPrecondition},
		{"validation", model.NewValidationError("motif", "is required"), codes.InvalidArgument},
		{"imbalance", model.ErrScheduleImbalance, codes.InvalidArgument},
		{"transfer blocked", &model.TransferBlockedError{Reason: "balance outstanding"}, codes.FailedPrecondition},
		{"cancelled", context.Canceled, codes.Canceled},
		{"unexpected", errors.New("connection reset"), codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := buildTestHandler()
			f.mortgages.findErr = tt.err

			_, err := f.handler.GetMortgageFile(contextWithRoles(auth.RoleNotaire), &settlementgrpc.GetMortgageFileRequest{FileID: "mf-1"})
			requireGRPCCode(t, err, tt.code)
		})
	}

	t.Run("internal errors do not leak details", func(t *testing.T) {
		f := buildTestHandler()
		f.mortgages.findErr = errors.New("password authentication failed")

		_, err := f.handler.GetMortgageFile(contextWithRoles(auth.RoleNotaire), &settlementgrpc.GetMortgageFileRequest{FileID: "mf-1"})
		st, _ := status.FromError(err)
		assert.NotContains(t, st.Message(), "password")
	})
}
