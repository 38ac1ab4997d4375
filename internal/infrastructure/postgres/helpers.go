package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dillanci/settlement/internal/domain/model"
	pkgpostgres "github.com/dillanci/settlement/pkg/postgres"
)

type scannable interface {
	Scan(dest ...any) error
}

// notFound converts pgx.ErrNoRows into model.ErrNotFound.
func notFound(err error, what, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", what, id, model.ErrNotFound)
	}
	return err
}

func conflict(what, id string, version int) error {
	return fmt.Errorf("%s %s at version %d: %w", what, id, version, model.ErrConcurrentModification)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// lockClause returns FOR UPDATE when ctx carries a transaction.
func lockClause(ctx context.Context) string {
	if pkgpostgres.InTransaction(ctx) {
		return " FOR UPDATE"
	}
	return ""
}

// sendBatch runs every queued statement and returns the first failure.
func sendBatch(ctx context.Context, q pkgpostgres.Querier, b *pgx.Batch) error {
	if b.Len() == 0 {
		return nil
	}
	results := q.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return err
		}
	}
	return results.Close()
}
