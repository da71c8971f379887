package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceLine struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Discount  decimal.Decimal `json:"discount"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Invoice struct {
	ID            uuid.UUID       `json:"id"`
	ShopID        uuid.UUID       `json:"shop_id"`
	RegisterID    uuid.UUID       `json:"register_id"`
	CashierID     uuid.UUID       `json:"cashier_id"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	Lines         []InvoiceLine   `json:"lines"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Discount      decimal.Decimal `json:"discount"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	Tendered      decimal.Decimal `json:"tendered"`
	Change        decimal.Decimal `json:"change"`
	Currency      string          `json:"currency"`
	CreatedAt     time.Time       `json:"created_at"`
}

// InvoiceCreatedEvent is published once an invoice is stored.
type InvoiceCreatedEvent struct {
	Event         string          `json:"event"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	ShopID        uuid.UUID       `json:"shop_id"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Timestamp     time.Time       `json:"timestamp"`
}

type ResendReceiptRequest struct {
	Email string `json:"email" validate:"required,email"`
}
