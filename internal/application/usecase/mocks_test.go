package usecase_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/application/dto"
	"github.com/dillanci/settlement/internal/domain/event"
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/money"
	"github.com/dillanci/settlement/pkg/testutil"
)

var (
	now    = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)
	clock  = testutil.FixedClock(now)
	tenant = testutil.TenantID.String()
	saleID = testutil.SaleID.String()
	agent  = dto.Actor{UserID: testutil.AgentID.String(), TenantID: testutil.TenantID.String(), Roles: []string{"agence"}}
	client = dto.Actor{UserID: "client-1", TenantID: testutil.TenantID.String(), Roles: []string{"client"}}
	notary = dto.Actor{UserID: testutil.NotaryID.String(), TenantID: testutil.TenantID.String(), Roles: []string{"notaire"}}
	bank   = dto.Actor{UserID: testutil.BankID.String(), TenantID: testutil.TenantID.String(), Roles: []string{"banque"}}
	admin  = dto.Actor{UserID: "admin-1", TenantID: testutil.TenantID.String(), Roles: []string{"admin"}}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

// openPayment returns a stored sale payment with paid already applied.
func openPayment(total, paid string) model.SalePayment {
	return model.ReconstructSalePayment(
		"pay-1", tenant, saleID, money.XOF,
		dec(total), dec(paid), 1, now, now,
	)
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

type mockPaymentRepository struct {
	saveFunc      func(ctx context.Context, p model.SalePayment) error
	findByIDFunc  func(ctx context.Context, tenantID, id string) (model.SalePayment, error)
	appendFunc    func(ctx context.Context, tenantID string, pp model.PartialPayment) error
	payments      map[string]model.SalePayment
	partials      []model.PartialPayment
	savedPayments []model.SalePayment
}

func newPaymentRepository(payments ...model.SalePayment) *mockPaymentRepository {
	m := &mockPaymentRepository{payments: make(map[string]model.SalePayment)}
	for _, p := range payments {
		m.payments[p.ID()] = p
	}
	return m
}

func (m *mockPaymentRepository) Save(ctx context.Context, p model.SalePayment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, p)
	}
	m.savedPayments = append(m.savedPayments, p)
	m.payments[p.ID()] = p.ClearEvents()
	return nil
}

func (m *mockPaymentRepository) FindByID(ctx context.Context, tenantID, id string) (model.SalePayment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	p, ok := m.payments[id]
	if !ok {
		return model.SalePayment{}, model.ErrNotFound
	}
	return p, nil
}

func (m *mockPaymentRepository) AppendPartialPayment(ctx context.Context, tenantID string, pp model.PartialPayment) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, tenantID, pp)
	}
	m.partials = append(m.partials, pp)
	return nil
}

func (m *mockPaymentRepository) ListPartialPayments(_ context.Context, _, paymentID string) ([]model.PartialPayment, error) {
	var out []model.PartialPayment
	for _, pp := range m.partials {
		if pp.PaymentID == paymentID {
			out = append(out, pp)
		}
	}
	return out, nil
}

type mockScheduleRepository struct {
	saveFunc       func(ctx context.Context, s model.Schedule) error
	schedules      map[string]model.Schedule
	savedSchedules []model.Schedule
}

func newScheduleRepository(schedules ...model.Schedule) *mockScheduleRepository {
	m := &mockScheduleRepository{schedules: make(map[string]model.Schedule)}
	for _, s := range schedules {
		m.schedules[s.ID()] = s
	}
	return m
}

func (m *mockScheduleRepository) Save(ctx context.Context, s model.Schedule) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, s)
	}
	m.savedSchedules = append(m.savedSchedules, s)
	m.schedules[s.ID()] = s.ClearEvents()
	return nil
}

func (m *mockScheduleRepository) FindByID(_ context.Context, _, id string) (model.Schedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return model.Schedule{}, model.ErrNotFound
	}
	return s, nil
}

func (m *mockScheduleRepository) FindByPaymentID(_ context.Context, _, paymentID string) (model.Schedule, error) {
	for _, s := range m.schedules {
		if s.PaymentID() == paymentID {
			return s, nil
		}
	}
	return model.Schedule{}, model.ErrNotFound
}

// mockMortgageFileRepository enforces the conditional update on the stored
// status like the real store does.
type mockMortgageFileRepository struct {
	findByIDFunc func(ctx context.Context, tenantID, id string) (model.MortgageFile, error)
	files        map[string]model.MortgageFile
	filters      []port.MortgageFileFilter
	saves        int
}

func newMortgageFileRepository(files ...model.MortgageFile) *mockMortgageFileRepository {
	m := &mockMortgageFileRepository{files: make(map[string]model.MortgageFile)}
	for _, f := range files {
		m.files[f.ID()] = f
	}
	return m
}

func (m *mockMortgageFileRepository) Save(_ context.Context, f model.MortgageFile, from valueobject.MortgageFileStatus) error {
	if stored, ok := m.files[f.ID()]; ok && !stored.Status().Equal(from) {
		return model.ErrConcurrentModification
	}
	m.saves++
	m.files[f.ID()] = f.ClearEvents()
	return nil
}

func (m *mockMortgageFileRepository) FindByID(ctx context.Context, tenantID, id string) (model.MortgageFile, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, tenantID, id)
	}
	f, ok := m.files[id]
	if !ok {
		return model.MortgageFile{}, model.ErrNotFound
	}
	return f, nil
}

func (m *mockMortgageFileRepository) List(_ context.Context, _ string, filter port.MortgageFileFilter) ([]model.MortgageFile, error) {
	m.filters = append(m.filters, filter)
	var out []model.MortgageFile
	for _, f := range m.files {
		if filter.Status != "" && f.Status().String() != filter.Status {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

func (m *mockEventPublisher) types() []string {
	out := make([]string, len(m.publishedEvents))
	for i, e := range m.publishedEvents {
		out[i] = e.EventType()
	}
	return out
}

type mockTransactor struct {
	calls int
}

func (m *mockTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockIdempotencyGuard struct {
	claimFunc func(ctx context.Context, scope, key string) (bool, error)
	claimed   map[string]bool
	released  []string
}

func newIdempotencyGuard() *mockIdempotencyGuard {
	return &mockIdempotencyGuard{claimed: make(map[string]bool)}
}

func (m *mockIdempotencyGuard) Claim(ctx context.Context, scope, key string) (bool, error) {
	if m.claimFunc != nil {
		return m.claimFunc(ctx, scope, key)
	}
	if m.claimed[scope+"/"+key] {
		return false, nil
	}
	m.claimed[scope+"/"+key] = true
	return true, nil
}

func (m *mockIdempotencyGuard) Release(_ context.Context, scope, key string) error {
	delete(m.claimed, scope+"/"+key)
	m.released = append(m.released, key)
	return nil
}

// ---------------------------------------------------------------------------
// External collaborators
// ---------------------------------------------------------------------------

type mockSaleDirectory struct {
	sales map[string]model.Sale
}

func (m *mockSaleDirectory) FindSale(_ context.Context, _, id string) (model.Sale, error) {
	s, ok := m.sales[id]
	if !ok {
		return model.Sale{}, model.ErrNotFound
	}
	return s, nil
}

type mockNotaryAssigner struct {
	assignFunc func(ctx context.Context, tenantID, saleID, notaryID string) error
	assigned   map[string]string
}

func (m *mockNotaryAssigner) AssignNotary(ctx context.Context, tenantID, saleID, notaryID string) error {
	if m.assignFunc != nil {
		return m.assignFunc(ctx, tenantID, saleID, notaryID)
	}
	if m.assigned == nil {
		m.assigned = make(map[string]string)
	}
	m.assigned[saleID] = notaryID
	return nil
}
