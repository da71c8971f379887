package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleVendorAdmin Role = "vendor_admin"
	RoleCashier     Role = "cashier"
)

type Staff struct {
	ID        uuid.UUID  `json:"id"`
	ShopID    *uuid.UUID `json:"shop_id,omitempty"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"-"`
	Role      Role       `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// for staff onboarding by an admin
type CreateStaffRequest struct {
	Name     string     `json:"name"     validate:"required,min=2,max=100"`
	Email    string     `json:"email"    validate:"required,email"`
	Password string     `json:"password" validate:"required,min=6"`
	Role     Role       `json:"role"     validate:"required,oneof=vendor_admin cashier"`
	ShopID   *uuid.UUID `json:"shop_id,omitempty"`
}

// for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// for login response
type LoginResponse struct {
	Success        bool   `json:"success"`
	Token          string `json:"token,omitempty"`
	ExpiresIn      int    `json:"expires_in,omitempty"`
	RemainingTries int    `json:"remaining_tries,omitempty"`
	RetryAfter     int    `json:"retry_after,omitempty"`
	Message        string `json:"message,omitempty"`
}

// JWT claims structure. ShopID is nil for super admins, who act across shops.
type Claims struct {
	UserID uuid.UUID  `json:"user_id"`
	Email  string     `json:"email"`
	Role   Role       `json:"role"`
	ShopID *uuid.UUID `json:"shop_id,omitempty"`
	jwt.RegisteredClaims
}

// CanAccessShop reports whether the caller may act on the given shop.
func (c *Claims) CanAccessShop(shopID uuid.UUID) bool {
	if c.Role == RoleSuperAdmin {
		return true
	}
	return c.ShopID != nil && *c.ShopID == shopID
}
