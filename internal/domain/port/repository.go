package port

import (
	"context"

	"github.com/dillanci/settlement/internal/domain/event"
	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// Lookups return model.ErrNotFound (possibly wrapped) when nothing matches.
// Saves of a stale version return model.ErrConcurrentModification.

// SalePaymentRepository persists sale payment records and their partial
// payment history.
type SalePaymentRepository interface {
	Save(ctx context.Context, p model.SalePayment) error
	FindByID(ctx context.Context, tenantID, id string) (model.SalePayment, error)
	AppendPartialPayment(ctx context.Context, tenantID string, pp model.PartialPayment) error
	ListPartialPayments(ctx context.Context, tenantID, paymentID string) ([]model.PartialPayment, error)
}

// ScheduleRepository persists installment schedules. Saving a new schedule
// for a payment that already has one returns model.ErrScheduleAlreadyExists.
type ScheduleRepository interface {
	Save(ctx context.Context, s model.Schedule) error
	FindByID(ctx context.Context, tenantID, id string) (model.Schedule, error)
	FindByPaymentID(ctx context.Context, tenantID, paymentID string) (model.Schedule, error)
}

// MortgageFileFilter narrows a mortgage file listing. Empty fields match all.
type MortgageFileFilter struct {
	BankID   string
	NotaryID string
	Status   string
}

// MortgageFileRepository persists mortgage credit files. Save updates only
// when the stored row still has the file's version and the status `from`;
// otherwise it returns model.ErrConcurrentModification.
type MortgageFileRepository interface {
	Save(ctx context.Context, f model.MortgageFile, from valueobject.MortgageFileStatus) error
	FindByID(ctx context.Context, tenantID, id string) (model.MortgageFile, error)
	List(ctx context.Context, tenantID string, filter MortgageFileFilter) ([]model.MortgageFile, error)
}

// ---------------------------------------------------------------------------
// Infrastructure ports
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// Transactor runs fn so that every repository call made with the context it
// receives commits or rolls back together.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// IdempotencyGuard claims request keys. Claim returns false when the key is
// already taken. Release frees a key whose request failed.
type IdempotencyGuard interface {
	Claim(ctx context.Context, scope, key string) (bool, error)
	Release(ctx context.Context, scope, key string) error
}

// ---------------------------------------------------------------------------
// External collaborator ports
// ---------------------------------------------------------------------------

// SaleDirectory looks up sales owned by the sales system.
type SaleDirectory interface {
	FindSale(ctx context.Context, tenantID, saleID string) (model.Sale, error)
}

// NotaryAssigner hands a sale to a notary.
type NotaryAssigner interface {
	AssignNotary(ctx context.Context, tenantID, saleID, notaryID string) error
}
