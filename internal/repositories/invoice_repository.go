package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils"
	"github.com/google/uuid"
)

type InvoiceRepository interface {
	CreateInvoice(ctx context.Context, invoice *models.Invoice) error
	GetInvoiceByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListInvoicesByShop(ctx context.Context, shopID uuid.UUID, page, size int) ([]*models.Invoice, int, error)
}

type invoiceRepository struct {
	DB *sql.DB
}

func NewInvoiceRepo(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{DB: db}
}

// CreateInvoice writes the invoice and its lines in one transaction.
func (r *invoiceRepository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	query := `
		INSERT INTO invoices (id, shop_id, register_id, cashier_id, customer_id, subtotal, tax, discount, total,
			payment_method, tendered, change_due, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
		RETURNING created_at`

	err = tx.QueryRowContext(dbCtx, query, invoice.ID, invoice.ShopID, invoice.RegisterID, invoice.CashierID, invoice.CustomerID,
		invoice.Subtotal, invoice.Tax, invoice.Discount, invoice.Total,
		invoice.PaymentMethod, invoice.Tendered, invoice.Change, invoice.Currency).Scan(&invoice.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}

	lineQuery := `
		INSERT INTO invoice_lines (id, invoice_id, product_id, name, sku, unit_price, quantity, discount, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	for _, line := range invoice.Lines {
		_, err := tx.ExecContext(dbCtx, lineQuery, line.ID, invoice.ID, line.ProductID, line.Name, line.SKU,
			line.UnitPrice, line.Quantity, line.Discount, line.LineTotal)
		if err != nil {
			return fmt.Errorf("failed to insert invoice line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invoice: %w", err)
	}

	return nil
}

const invoiceColumns = `id, shop_id, register_id, cashier_id, customer_id, subtotal, tax, discount, total,
		payment_method, tendered, change_due, currency, created_at`

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	inv := &models.Invoice{}
	var customerID uuid.NullUUID

	err := row.Scan(&inv.ID, &inv.ShopID, &inv.RegisterID, &inv.CashierID, &customerID,
		&inv.Subtotal, &inv.Tax, &inv.Discount, &inv.Total,
		&inv.PaymentMethod, &inv.Tendered, &inv.Change, &inv.Currency, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}

	if customerID.Valid {
		inv.CustomerID = &customerID.UUID
	}

	return inv, nil
}

func (r *invoiceRepository) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`

	invoice, err := scanInvoice(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get the invoice: %w", err)
	}

	lineQuery := `
		SELECT id, product_id, name, sku, unit_price, quantity, discount, line_total
		FROM invoice_lines
		WHERE invoice_id = $1`

	rows, err := r.DB.QueryContext(dbCtx, lineQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get the invoice lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		line := models.InvoiceLine{InvoiceID: id}

		err := rows.Scan(&line.ID, &line.ProductID, &line.Name, &line.SKU, &line.UnitPrice, &line.Quantity, &line.Discount, &line.LineTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice line: %w", err)
		}

		invoice.Lines = append(invoice.Lines, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over the invoice lines: %w", err)
	}

	return invoice, nil
}

// ListInvoicesByShop returns one page of invoice headers, newest first, and the total count.
func (r *invoiceRepository) ListInvoicesByShop(ctx context.Context, shopID uuid.UUID, page, size int) ([]*models.Invoice, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM invoices WHERE shop_id = $1`

	if err := r.DB.QueryRowContext(dbCtx, countQuery, shopID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	offset := (page - 1) * size

	query := `SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE shop_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(dbCtx, query, shopID, size, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}
	defer rows.Close()

	invoices := []*models.Invoice{}

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan invoice: %w", err)
		}

		invoices = append(invoices, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating over the invoices: %w", err)
	}

	return invoices, total, nil
}
