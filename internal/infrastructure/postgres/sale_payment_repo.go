package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/pkg/money"
	pkgpostgres "github.com/dillanci/settlement/pkg/postgres"
)

// SalePaymentRepo implements port.SalePaymentRepository.
type SalePaymentRepo struct {
	pool *pgxpool.Pool
}

// NewSalePaymentRepo creates a new PostgreSQL-backed sale payment repository.
func NewSalePaymentRepo(pool *pgxpool.Pool) *SalePaymentRepo {
	return &SalePaymentRepo{pool: pool}
}

// Save inserts a new payment or updates the ledger of an existing one under
// optimistic locking.
func (r *SalePaymentRepo) Save(ctx context.Context, p model.SalePayment) error {
	q := pkgpostgres.Conn(ctx, r.pool)
	b := p.Balance()

	if p.Version() == 0 {
		_, err := q.Exec(ctx, `
			INSERT INTO sale_payments (
				id, tenant_id, sale_id, currency, total_amount, paid_amount,
				version, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, 1, $7, $8)`,
			p.ID(), p.TenantID(), nullable(p.SaleID()), p.Currency().Code(),
			b.Total(), b.Paid(), p.CreatedAt(), p.UpdatedAt(),
		)
		if err != nil {
			return fmt.Errorf("insert sale payment: %w", err)
		}
		return nil
	}

	tag, err := q.Exec(ctx, `
		UPDATE sale_payments
		SET paid_amount = $1,
		    version     = version + 1,
		    updated_at  = $2
		WHERE tenant_id = $3 AND id = $4 AND version = $5`,
		b.Paid(), p.UpdatedAt(), p.TenantID(), p.ID(), p.Version(),
	)
	if err != nil {
		return fmt.Errorf("update sale payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return conflict("sale payment", p.ID(), p.Version())
	}
	return nil
}

// FindByID retrieves a sale payment. Inside a transaction the row is locked
// until commit.
func (r *SalePaymentRepo) FindByID(ctx context.Context, tenantID, id string) (model.SalePayment, error) {
	row := pkgpostgres.Conn(ctx, r.pool).QueryRow(ctx, `
		SELECT id, tenant_id, COALESCE(sale_id, ''), currency, total_amount, paid_amount,
		       version, created_at, updated_at
		FROM sale_payments
		WHERE tenant_id = $1 AND id = $2`+lockClause(ctx),
		tenantID, id,
	)

	var (
		pid, tenant, saleID, currency string
		total, paid                   decimal.Decimal
		version                       int
		createdAt, updatedAt          time.Time
	)
	if err := row.Scan(&pid, &tenant, &saleID, &currency, &total, &paid, &version, &createdAt, &updatedAt); err != nil {
		return model.SalePayment{}, notFound(err, "sale payment", id)
	}
	cur, err := money.NewCurrency(currency)
	if err != nil {
		return model.SalePayment{}, fmt.Errorf("parse currency: %w", err)
	}
	return model.ReconstructSalePayment(pid, tenant, saleID, cur, total, paid, version, createdAt, updatedAt), nil
}

// AppendPartialPayment stores one payment record. Records are never updated.
func (r *SalePaymentRepo) AppendPartialPayment(ctx context.Context, tenantID string, pp model.PartialPayment) error {
	_, err := pkgpostgres.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO partial_payments (
			id, tenant_id, payment_id, amount, receipt_url, receipt_filename,
			installment_id, recorded_by, paid_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		pp.ID, tenantID, pp.PaymentID, pp.Amount,
		nullable(pp.ReceiptURL), nullable(pp.ReceiptFilename),
		nullable(pp.InstallmentID), nullable(pp.RecordedBy), pp.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert partial payment: %w", err)
	}
	return nil
}

// ListPartialPayments returns the payments of a sale ordered by payment time.
func (r *SalePaymentRepo) ListPartialPayments(ctx context.Context, tenantID, paymentID string) ([]model.PartialPayment, error) {
	rows, err := pkgpostgres.Conn(ctx, r.pool).Query(ctx, `
		SELECT id, payment_id, amount, COALESCE(receipt_url, ''), COALESCE(receipt_filename, ''),
		       COALESCE(installment_id, ''), COALESCE(recorded_by, ''), paid_at
		FROM partial_payments
		WHERE tenant_id = $1 AND payment_id = $2
		ORDER BY paid_at, id`,
		tenantID, paymentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query partial payments: %w", err)
	}
	defer rows.Close()

	var result []model.PartialPayment
	for rows.Next() {
		var pp model.PartialPayment
		if err := rows.Scan(
			&pp.ID, &pp.PaymentID, &pp.Amount, &pp.ReceiptURL, &pp.ReceiptFilename,
			&pp.InstallmentID, &pp.RecordedBy, &pp.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("scan partial payment: %w", err)
		}
		result = append(result, pp)
	}
	return result, rows.Err()
}
