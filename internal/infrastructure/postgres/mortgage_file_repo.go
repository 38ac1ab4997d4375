package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dillanci/settlement/internal/domain/model"
	"github.com/dillanci/settlement/internal/domain/port"
	"github.com/dillanci/settlement/internal/domain/valueobject"
	"github.com/dillanci/settlement/pkg/money"
	pkgpostgres "github.com/dillanci/settlement/pkg/postgres"
)

// documentRecord is the JSONB shape of a stored document reference.
type documentRecord struct {
	URL                string `json:"url,omitempty"`
	Filename           string `json:"filename,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
}

type bankDocumentsRecord struct {
	TitleDeed          documentRecord `json:"titre_propriete"`
	CreditNotification documentRecord `json:"notification_credit"`
}

type notaryDocumentsRecord struct {
	CreditConvention *documentRecord `json:"convention_ouverture_credit,omitempty"`
	MortgageDeed     *documentRecord `json:"acte_hypothecaire,omitempty"`
}

// MortgageFileRepo implements port.MortgageFileRepository.
type MortgageFileRepo struct {
	pool *pgxpool.Pool
	tx   *pkgpostgres.TxRunner
}

// NewMortgageFileRepo creates a new PostgreSQL-backed mortgage file repository.
func NewMortgageFileRepo(pool *pgxpool.Pool) *MortgageFileRepo {
	return &MortgageFileRepo{pool: pool, tx: pkgpostgres.NewTxRunner(pool)}
}

// Save inserts a new file, or updates one only while the stored row still has
// the file's version and the status the transition started from.
func (r *MortgageFileRepo) Save(ctx context.Context, f model.MortgageFile, from valueobject.MortgageFileStatus) error {
	return r.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		q := pkgpostgres.Conn(ctx, r.pool)

		if f.Version() == 0 {
			_, err := q.Exec(ctx, `
				INSERT INTO mortgage_files (
					id, tenant_id, bank_id, notary_id, borrower_name, credit_amount, currency,
					status, bank_documents, notary_documents, rejection_reason, deed_number,
					version, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, $13, $14)`,
				f.ID(), f.TenantID(), f.BankID(), f.NotaryID(), f.BorrowerName(),
				f.CreditAmount(), f.Currency().Code(), f.Status().String(),
				toBankRecord(f.BankDocuments()), toNotaryRecord(f.NotaryDocuments()),
				f.RejectionReason(), f.DeedNumber(), f.CreatedAt(), f.UpdatedAt(),
			)
			if err != nil {
				return fmt.Errorf("insert mortgage file: %w", err)
			}
		} else {
			tag, err := q.Exec(ctx, `
				UPDATE mortgage_files
				SET status           = $1,
				    notary_documents = $2,
				    rejection_reason = $3,
				    deed_number      = $4,
				    version          = version + 1,
				    updated_at       = $5
				WHERE tenant_id = $6 AND id = $7 AND version = $8 AND status = $9`,
				f.Status().String(), toNotaryRecord(f.NotaryDocuments()),
				f.RejectionReason(), f.DeedNumber(), f.UpdatedAt(),
				f.TenantID(), f.ID(), f.Version(), from.String(),
			)
			if err != nil {
				return fmt.Errorf("update mortgage file: %w", err)
			}
			if tag.RowsAffected() == 0 {
				return conflict("mortgage file", f.ID(), f.Version())
			}
		}

		// Comments are append-only; positions already stored are skipped.
		batch := &pgx.Batch{}
		for i, c := range f.Comments() {
			batch.Queue(`
				INSERT INTO mortgage_comments (file_id, position, action, author_id, text, at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (file_id, position) DO NOTHING`,
				f.ID(), i, c.Action.String(), c.AuthorID, c.Text, c.At,
			)
		}
		if err := sendBatch(ctx, q, batch); err != nil {
			return fmt.Errorf("insert mortgage comments: %w", err)
		}
		return nil
	})
}

const mortgageFileColumns = `
	id, tenant_id, bank_id, notary_id, borrower_name, credit_amount, currency,
	status, bank_documents, notary_documents, rejection_reason, deed_number,
	version, created_at, updated_at`

// FindByID retrieves a mortgage file with its comments.
func (r *MortgageFileRepo) FindByID(ctx context.Context, tenantID, id string) (model.MortgageFile, error) {
	q := pkgpostgres.Conn(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+mortgageFileColumns+`
		FROM mortgage_files
		WHERE tenant_id = $1 AND id = $2`+lockClause(ctx),
		tenantID, id,
	)
	st, err := scanMortgageFile(row)
	if err != nil {
		return model.MortgageFile{}, notFound(err, "mortgage file", id)
	}

	comments, err := r.loadComments(ctx, q, []string{st.ID})
	if err != nil {
		return model.MortgageFile{}, err
	}
	st.Comments = comments[st.ID]
	return model.ReconstructMortgageFile(st), nil
}

// List returns the files matching filter, newest first.
func (r *MortgageFileRepo) List(ctx context.Context, tenantID string, filter port.MortgageFileFilter) ([]model.MortgageFile, error) {
	q := pkgpostgres.Conn(ctx, r.pool)

	where := []string{"tenant_id = $1"}
	args := []any{tenantID}
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		where = append(where, column+" = $"+strconv.Itoa(len(args)))
	}
	add("bank_id", filter.BankID)
	add("notary_id", filter.NotaryID)
	add("status", filter.Status)

	rows, err := q.Query(ctx, `SELECT `+mortgageFileColumns+`
		FROM mortgage_files
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY created_at DESC, id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query mortgage files: %w", err)
	}
	defer rows.Close()

	var states []model.MortgageFileState
	for rows.Next() {
		st, err := scanMortgageFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mortgage file: %w", err)
		}
		states = append(states, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mortgage files: %w", err)
	}
	rows.Close()

	ids := make([]string, len(states))
	for i, st := range states {
		ids[i] = st.ID
	}
	comments, err := r.loadComments(ctx, q, ids)
	if err != nil {
		return nil, err
	}

	result := make([]model.MortgageFile, len(states))
	for i, st := range states {
		st.Comments = comments[st.ID]
		result[i] = model.ReconstructMortgageFile(st)
	}
	return result, nil
}

func (r *MortgageFileRepo) loadComments(ctx context.Context, q pkgpostgres.Querier, fileIDs []string) (map[string][]model.Comment, error) {
	out := make(map[string][]model.Comment, len(fileIDs))
	if len(fileIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT file_id, action, author_id, text, at
		FROM mortgage_comments
		WHERE file_id = ANY($1)
		ORDER BY file_id, position`,
		fileIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("query mortgage comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			fileID, action string
			c              model.Comment
		)
		if err := rows.Scan(&fileID, &action, &c.AuthorID, &c.Text, &c.At); err != nil {
			return nil, fmt.Errorf("scan mortgage comment: %w", err)
		}
		c.Action = valueobject.MortgageAction(action)
		c.At = c.At.UTC()
		out[fileID] = append(out[fileID], c)
	}
	return out, rows.Err()
}

func scanMortgageFile(s scannable) (model.MortgageFileState, error) {
	var (
		st                   model.MortgageFileState
		currency, statusStr  string
		bankDocs             bankDocumentsRecord
		notaryDocs           notaryDocumentsRecord
		createdAt, updatedAt time.Time
	)
	err := s.Scan(
		&st.ID, &st.TenantID, &st.BankID, &st.NotaryID, &st.BorrowerName,
		&st.CreditAmount, &currency, &statusStr, &bankDocs, &notaryDocs,
		&st.RejectionReason, &st.DeedNumber, &st.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return model.MortgageFileState{}, err
	}

	if st.Currency, err = money.NewCurrency(currency); err != nil {
		return model.MortgageFileState{}, fmt.Errorf("parse currency: %w", err)
	}
	if st.Status, err = valueobject.NewMortgageFileStatus(statusStr); err != nil {
		return model.MortgageFileState{}, fmt.Errorf("parse status: %w", err)
	}
	st.BankDocuments = model.BankDocuments{
		TitleDeed:          fromRecord(&bankDocs.TitleDeed),
		CreditNotification: fromRecord(&bankDocs.CreditNotification),
	}
	st.NotaryDocuments = model.NotaryDocuments{
		CreditConvention: fromRecord(notaryDocs.CreditConvention),
		MortgageDeed:     fromRecord(notaryDocs.MortgageDeed),
	}
	st.CreatedAt = createdAt.UTC()
	st.UpdatedAt = updatedAt.UTC()
	return st, nil
}

func toRecord(d model.Document) documentRecord {
	return documentRecord{URL: d.URL, Filename: d.Filename, RegistrationNumber: d.RegistrationNumber}
}

func fromRecord(d *documentRecord) model.Document {
	if d == nil {
		return model.Document{}
	}
	return model.Document{URL: d.URL, Filename: d.Filename, RegistrationNumber: d.RegistrationNumber}
}

func toBankRecord(d model.BankDocuments) bankDocumentsRecord {
	return bankDocumentsRecord{
		TitleDeed:          toRecord(d.TitleDeed),
		CreditNotification: toRecord(d.CreditNotification),
	}
}

func toNotaryRecord(d model.NotaryDocuments) notaryDocumentsRecord {
	var rec notaryDocumentsRecord
	if d.CreditConvention.Present() {
		doc := toRecord(d.CreditConvention)
		rec.CreditConvention = &doc
	}
	if d.MortgageDeed.Present() {
		doc := toRecord(d.MortgageDeed)
		rec.MortgageDeed = &doc
	}
	return rec
}
