package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils"
	"github.com/google/uuid"
)

type CustomerRepository interface {
	CreateCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindCustomerByContact(ctx context.Context, shopID uuid.UUID, contact string) (*models.Customer, error)
}

type customerRepository struct {
	DB *sql.DB
}

func NewCustomerRepo(db *sql.DB) CustomerRepository {
	return &customerRepository{DB: db}
}

func (r *customerRepository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO customers (shop_id, name, contact, email, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	return r.DB.QueryRowContext(dbCtx, query, customer.ShopID, customer.Name, customer.Contact, customer.Email, customer.Address).
		Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
}

func (r *customerRepository) GetCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, shop_id, name, contact, email, address, created_at, updated_at
		FROM customers
		WHERE id = $1`

	c := &models.Customer{}

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&c.ID, &c.ShopID, &c.Name, &c.Contact, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying customer %s: %w", id, err)
	}

	return c, nil
}

func (r *customerRepository) FindCustomerByContact(ctx context.Context, shopID uuid.UUID, contact string) (*models.Customer, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, shop_id, name, contact, email, address, created_at, updated_at
		FROM customers
		WHERE shop_id = $1 AND contact = $2`

	c := &models.Customer{}

	err := r.DB.QueryRowContext(dbCtx, query, shopID, contact).
		Scan(&c.ID, &c.ShopID, &c.Name, &c.Contact, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying customer by contact: %w", err)
	}

	return c, nil
}
