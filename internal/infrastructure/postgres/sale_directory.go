package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	pkgpostgres "github.com/dillanci/settlement/pkg/postgres"
)

// SaleDirectory reads and hands off sales through the shared sales table.
// It implements port.SaleDirectory and port.NotaryAssigner.
type SaleDirectory struct {
	pool *pgxpool.Pool
}

// NewSaleDirectory creates a SaleDirectory.
func NewSaleDirectory(pool *pgxpool.Pool) *SaleDirectory {
	return &SaleDirectory{pool: pool}
}

// FindSale retrieves a sale.
func (d *SaleDirectory) FindSale(ctx context.Context, tenantID, saleID string) (model.Sale, error) {
	var (
		sale   model.Sale
		status string
	)
	err := pkgpostgres.Conn(ctx, d.pool).QueryRow(ctx, `
		SELECT id, tenant_id, status, COALESCE(notary_id, '')
		FROM sales
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, saleID,
	).Scan(&sale.ID, &sale.TenantID, &status, &sale.NotaryID)
	if err != nil {
		return model.Sale{}, notFound(err, "sale", saleID)
	}
	sale.Status = valueobject.SaleStatus(status)
	return sale, nil
}

// AssignNotary moves a settled sale to the notary. The update only applies
// while the sale is still in paiement_complet.
func (d *SaleDirectory) AssignNotary(ctx context.Context, tenantID, saleID, notaryID string) error {
	tag, err := pkgpostgres.Conn(ctx, d.pool).Exec(ctx, `
		UPDATE sales
		SET notary_id  = $1,
		    status     = $2,
		    updated_at = now()
		WHERE tenant_id = $3 AND id = $4 AND status = $5`,
		notaryID, string(valueobject.SaleStatusTransferred),
		tenantID, saleID, string(valueobject.SaleStatusPaymentComplete),
	)
	if err != nil {
		return fmt.Errorf("assign notary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &model.TransferBlockedError{Reason: "sale is no longer in " + string(valueobject.SaleStatusPaymentComplete)}
	}
	return nil
}
