package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/gridbill/grid_billing_app/internal/apperrors"
	"github.com/gridbill/grid_billing_app/internal/core/domain"
	portsrepo "github.com/gridbill/grid_billing_app/internal/core/ports/repositories"
	"github.com/gridbill/grid_billing_app/internal/models"
	"github.com/gridbill/grid_billing_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const invoiceColumns = `invoice_id, account_id, kilowatt_amount, free_kilowatt, price_per_kilo, discount,
	total_amount, previous_reading, new_reading, status, created_at, created_by, last_updated_at, last_updated_by`

// PgxInvoiceRepository implements portsrepo.InvoiceReader using pgx.
type PgxInvoiceRepository struct {
	BaseRepository
}

// NewInvoiceRepository creates a new PostgreSQL invoice reader.
func NewInvoiceRepository(pool *pgxpool.Pool) portsrepo.InvoiceReader {
	return &PgxInvoiceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InvoiceReader = (*PgxInvoiceRepository)(nil)

func scanInvoice(row rowScanner) (domain.Invoice, error) {
	var m models.Invoice
	err := row.Scan(
		&m.InvoiceID,
		&m.AccountID,
		&m.KilowattAmount,
		&m.FreeKilowatt,
		&m.PricePerKilo,
		&m.Discount,
		&m.TotalAmount,
		&m.PreviousReading,
		&m.NewReading,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Invoice{}, err
	}
	return mapping.ToDomainInvoice(m), nil
}

// FindInvoiceByID implements portsrepo.InvoiceReader.
func (r *PgxInvoiceRepository) FindInvoiceByID(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE invoice_id = $1;`
	inv, err := scanInvoice(r.Pool.QueryRow(ctx, query, invoiceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: invoice %s", apperrors.ErrNotFound, invoiceID)
		}
		return nil, fmt.Errorf("failed to find invoice %s: %w", invoiceID, err)
	}
	return &inv, nil
}

// ListInvoicesByAccount implements portsrepo.InvoiceReader.
func (r *PgxInvoiceRepository) ListInvoicesByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE account_id = $1
		ORDER BY created_at DESC, invoice_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices of account %s: %w", accountID, err)
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice row: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice rows: %w", err)
	}
	return invoices, nil
}
