package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils"
)

const schema = `
	CREATE TABLE IF NOT EXISTS shops (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name VARCHAR(200) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS staff (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		shop_id UUID REFERENCES shops(id),
		name VARCHAR(100) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL CHECK (role IN ('super_admin', 'vendor_admin', 'cashier')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		shop_id UUID NOT NULL REFERENCES shops(id),
		name VARCHAR(100) NOT NULL,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		shop_id UUID NOT NULL REFERENCES shops(id),
		category_id UUID NOT NULL REFERENCES categories(id),
		name VARCHAR(200) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		sku VARCHAR(50) NOT NULL,
		barcode VARCHAR(64),
		price DECIMAL(12,2) NOT NULL,
		stock_quantity INTEGER NOT NULL DEFAULT 0,
		status VARCHAR(20) NOT NULL DEFAULT 'active', -- active, inactive, discontinued
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (shop_id, sku)
	);

	CREATE TABLE IF NOT EXISTS customers (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		shop_id UUID NOT NULL REFERENCES shops(id),
		name VARCHAR(100) NOT NULL,
		contact VARCHAR(20) NOT NULL,
		email VARCHAR(255) NOT NULL DEFAULT '',
		address VARCHAR(255) NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (shop_id, contact)
	);

	CREATE TABLE IF NOT EXISTS invoices (
		id UUID PRIMARY KEY,
		shop_id UUID NOT NULL REFERENCES shops(id),
		register_id UUID NOT NULL,
		cashier_id UUID NOT NULL REFERENCES staff(id),
		customer_id UUID REFERENCES customers(id),
		subtotal DECIMAL(12,2) NOT NULL,
		tax DECIMAL(12,2) NOT NULL,
		discount DECIMAL(12,2) NOT NULL,
		total DECIMAL(12,2) NOT NULL,
		payment_method VARCHAR(10) NOT NULL,
		tendered DECIMAL(12,2) NOT NULL,
		change_due DECIMAL(12,2) NOT NULL,
		currency CHAR(3) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS invoices_shop_created_idx ON invoices (shop_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS invoice_lines (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		product_id UUID NOT NULL,
		name VARCHAR(200) NOT NULL,
		sku VARCHAR(50) NOT NULL,
		unit_price DECIMAL(12,2) NOT NULL,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		discount DECIMAL(12,2) NOT NULL,
		line_total DECIMAL(12,2) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		invoice_id UUID NOT NULL REFERENCES invoices(id),
		type VARCHAR(20) NOT NULL,
		recipient VARCHAR(255) NOT NULL,
		subject VARCHAR(255),
		content TEXT NOT NULL,
		status VARCHAR(20) NOT NULL,
		error_message TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		sent_at TIMESTAMPTZ
	);
`

// InitSchema creates the tables the repositories use when they are missing.
func InitSchema(ctx context.Context, db *sql.DB) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if _, err := db.ExecContext(dbCtx, schema); err != nil {
		return fmt.Errorf("failed to execute schema creation: %w", err)
	}

	return nil
}
