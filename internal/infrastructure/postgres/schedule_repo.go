package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	pkgpostgres "github.com/dillanci/settlement/pkg/postgres"
)

const schedulePaymentConstraint = "schedules_payment_id_key"

// ScheduleRepo implements port.ScheduleRepository. A schedule and its
// installments are always written together.
type ScheduleRepo struct {
	pool *pgxpool.Pool
	tx   *pkgpostgres.TxRunner
}

// NewScheduleRepo creates a new PostgreSQL-backed schedule repository.
func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool, tx: pkgpostgres.NewTxRunner(pool)}
}

// Save inserts a new schedule or replaces the installments of an existing
// one under optimistic locking.
func (r *ScheduleRepo) Save(ctx context.Context, s model.Schedule) error {
	return r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		q := pkgpostgres.Conn(ctx, r.pool)

		if s.Version() == 0 {
			_, err := q.Exec(ctx, `
				INSERT INTO schedules (
					id, tenant_id, payment_id, mode, total_amount, version, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, 1, $6, $7)`,
				s.ID(), s.TenantID(), s.PaymentID(), s.Mode().String(),
				s.TotalAmount(), s.CreatedAt(), s.UpdatedAt(),
			)
			if pkgpostgres.IsUniqueViolation(err, schedulePaymentConstraint) {
				return model.ErrScheduleAlreadyExists
			}
			if err != nil {
				return fmt.Errorf("insert schedule: %w", err)
			}
		} else {
			tag, err := q.Exec(ctx, `
				UPDATE schedules
				SET version    = version + 1,
				    updated_at = $1
				WHERE tenant_id = $2 AND id = $3 AND version = $4`,
				s.UpdatedAt(), s.TenantID(), s.ID(), s.Version(),
			)
			if err != nil {
				return fmt.Errorf("update schedule: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return conflict("schedule", s.ID(), s.Version())
			}
			if _, err := q.Exec(ctx, `DELETE FROM installments WHERE schedule_id = $1`, s.ID()); err != nil {
				return fmt.Errorf("delete installments: %w", err)
			}
		}

		batch := &pgx.Batch{}
		for _, inst := range s.Installments() {
			var paidAt *time.Time
			if inst.Paid {
				t := inst.ActualPaymentDate
				paidAt = &t
			}
			batch.Queue(`
				INSERT INTO installments (
					id, schedule_id, position, due_date, amount, paid, actual_payment_date, notes
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				inst.ID, s.ID(), inst.Position, inst.DueDate, inst.Amount, inst.Paid, paidAt, inst.Notes,
			)
		}
		if err := sendBatch(ctx, q, batch); err != nil {
			return fmt.Errorf("insert installments: %w", err)
		}
		return nil
	})
}

// FindByID retrieves a schedule with its installments in position order.
func (r *ScheduleRepo) FindByID(ctx context.Context, tenantID, id string) (model.Schedule, error) {
	return r.findOne(ctx, "id", tenantID, id)
}

// FindByPaymentID retrieves the schedule of a sale payment.
func (r *ScheduleRepo) FindByPaymentID(ctx context.Context, tenantID, paymentID string) (model.Schedule, error) {
	return r.findOne(ctx, "payment_id", tenantID, paymentID)
}

func (r *ScheduleRepo) findOne(ctx context.Context, column, tenantID, value string) (model.Schedule, error) {
	q := pkgpostgres.Conn(ctx, r.pool)

	var (
		id, tenant, paymentID, modeStr string
		total                          decimal.Decimal
		version                        int
		createdAt, updatedAt           time.Time
	)
	err := q.QueryRow(ctx, `
		SELECT id, tenant_id, payment_id, mode, total_amount, version, created_at, updated_at
		FROM schedules
		WHERE tenant_id = $1 AND `+column+` = $2`+lockClause(ctx),
		tenantID, value,
	).Scan(&id, &tenant, &paymentID, &modeStr, &total, &version, &createdAt, &updatedAt)
	if err != nil {
		return model.Schedule{}, notFound(err, "schedule", value)
	}

	mode, err := valueobject.NewScheduleMode(modeStr)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("parse mode: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, position, due_date, amount, paid, actual_payment_date, notes
		FROM installments
		WHERE schedule_id = $1
		ORDER BY position`,
		id,
	)
	if err != nil {
		return model.Schedule{}, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	var installments []model.Installment
	for rows.Next() {
		inst, err := scanInstallment(rows)
		if err != nil {
			return model.Schedule{}, err
		}
		installments = append(installments, inst)
	}
	if err := rows.Err(); err != nil {
		return model.Schedule{}, fmt.Errorf("iterate installments: %w", err)
	}

	return model.ReconstructSchedule(
		id, tenant, paymentID, mode, total, installments, version, createdAt, updatedAt,
	), nil
}

func scanInstallment(s scannable) (model.Installment, error) {
	var (
		inst   model.Installment
		paidAt *time.Time
	)
	if err := s.Scan(&inst.ID, &inst.Position, &inst.DueDate, &inst.Amount, &inst.Paid, &paidAt, &inst.Notes); err != nil {
		return model.Installment{}, fmt.Errorf("scan installment: %w", err)
	}
	inst.DueDate = inst.DueDate.UTC()
	if paidAt != nil {
		inst.ActualPaymentDate = paidAt.UTC()
	}
	return inst, nil
}
