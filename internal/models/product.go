package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID          uuid.UUID `json:"id"`
	ShopID      uuid.UUID `json:"shop_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Product struct {
	ID            uuid.UUID       `json:"id"`
	ShopID        uuid.UUID       `json:"shop_id"`
	CategoryID    uuid.UUID       `json:"category_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	SKU           string          `json:"sku"`
	Barcode       string          `json:"barcode,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int64           `json:"stock_quantity"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Category      *Category       `json:"category,omitempty"`
}

// CatalogQuery is the search form of the register screen.
type CatalogQuery struct {
	Query    string `json:"q"        validate:"max=100"`
	Category string `json:"category" validate:"omitempty,max=64"`
}

// CatalogSnapshot is what gets cached per shop.
type CatalogSnapshot struct {
	ShopID     uuid.UUID  `json:"shop_id"`
	Products   []Product  `json:"products"`
	Categories []Category `json:"categories"`
}
