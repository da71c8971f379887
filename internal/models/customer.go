package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `json:"id"`
	ShopID    uuid.UUID `json:"shop_id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name"    validate:"required,min=2,max=100"`
	Contact string `json:"contact" validate:"required,min=5,max=20"`
	Email   string `json:"email,omitempty"   validate:"omitempty,email"`
	Address string `json:"address,omitempty" validate:"omitempty,max=255"`
}
