package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils"
	"github.com/google/uuid"
)

type StaffRepository interface {
	CreateStaff(ctx context.Context, staff *models.Staff) error
	GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error)
	GetStaffByID(ctx context.Context, id uuid.UUID) (*models.Staff, error)
}

type staffRepository struct {
	DB *sql.DB
}

func NewStaffRepo(db *sql.DB) StaffRepository {
	return &staffRepository{DB: db}
}

func (r *staffRepository) CreateStaff(ctx context.Context, staff *models.Staff) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO staff(shop_id, name, email, password, role, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	return r.DB.QueryRowContext(dbCtx, query, staff.ShopID, staff.Name, staff.Email, staff.Password, staff.Role).
		Scan(&staff.ID, &staff.CreatedAt, &staff.UpdatedAt)
}

// GetStaffByEmail includes the password hash for login checks.
func (r *staffRepository) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, shop_id, name, email, password, role, created_at, updated_at
		FROM staff
		WHERE email = $1`

	staff := &models.Staff{}
	var shopID uuid.NullUUID

	err := r.DB.QueryRowContext(dbCtx, query, email).
		Scan(&staff.ID, &shopID, &staff.Name, &staff.Email, &staff.Password, &staff.Role, &staff.CreatedAt, &staff.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying staff by email: %w", err)
	}

	if shopID.Valid {
		staff.ShopID = &shopID.UUID
	}

	return staff, nil
}

func (r *staffRepository) GetStaffByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, shop_id, name, email, role, created_at, updated_at
		FROM staff
		WHERE id = $1`

	staff := &models.Staff{}
	var shopID uuid.NullUUID

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&staff.ID, &shopID, &staff.Name, &staff.Email, &staff.Role, &staff.CreatedAt, &staff.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("querying staff %s: %w", id, err)
	}

	if shopID.Valid {
		staff.ShopID = &shopID.UUID
	}

	return staff, nil
}
