package models

import (
	"time"

	"github.com/google/uuid"
)

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"required,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// DiscountRequest carries a non-negative amount with at most two decimals.
type DiscountRequest struct {
	Amount string `json:"amount" validate:"required,amount"`
}

type OpenRegisterRequest struct {
	ShopID *uuid.UUID `json:"shop_id,omitempty"`
}

type CartLineView struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	SKU       string    `json:"sku"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	Discount  string    `json:"discount"`
	Amount    string    `json:"amount"`
}

type TotalsView struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Discount string `json:"discount"`
	Total    string `json:"total"`
}

type RegisterView struct {
	ID        uuid.UUID      `json:"id"`
	ShopID    uuid.UUID      `json:"shop_id"`
	CashierID uuid.UUID      `json:"cashier_id"`
	Lines     []CartLineView `json:"lines"`
	Totals    TotalsView     `json:"totals"`
	Checkout  CheckoutView   `json:"checkout"`
	OpenedAt  time.Time      `json:"opened_at"`
}
