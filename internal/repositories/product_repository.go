package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/utils"
	"github.com/google/uuid"
)

type ProductRepository interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProductsByShop(ctx context.Context, shopID uuid.UUID) ([]models.Product, error)
	ListCategoriesByShop(ctx context.Context, shopID uuid.UUID) ([]models.Category, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `p.id, p.shop_id, p.category_id, p.name, p.description, p.sku, COALESCE(p.barcode, ''),
		p.price, p.stock_quantity, p.status, p.created_at, p.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product

	err := row.Scan(&p.ID, &p.ShopID, &p.CategoryID, &p.Name, &p.Description, &p.SKU, &p.Barcode,
		&p.Price, &p.StockQuantity, &p.Status, &p.CreatedAt, &p.UpdatedAt)

	return p, err
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + `
		FROM products p
		WHERE p.id = $1`

	product, err := scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, fmt.Errorf("querying product %s: %w", id, err)
	}

	return &product, nil
}

// ListProductsByShop returns the active products of a shop ordered by name.
func (r *productRepository) ListProductsByShop(ctx context.Context, shopID uuid.UUID) ([]models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + `
		FROM products p
		WHERE p.shop_id = $1 AND p.status = 'active'
		ORDER BY p.name`

	rows, err := r.DB.QueryContext(dbCtx, query, shopID)
	if err != nil {
		return nil, fmt.Errorf("querying products: %w", err)
	}
	defer rows.Close()

	var products []models.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}

		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) ListCategoriesByShop(ctx context.Context, shopID uuid.UUID) ([]models.Category, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, shop_id, name, COALESCE(description, ''), created_at, updated_at
		FROM categories
		WHERE shop_id = $1
		ORDER BY name`

	rows, err := r.DB.QueryContext(dbCtx, query, shopID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category

	for rows.Next() {
		var c models.Category

		if err := rows.Scan(&c.ID, &c.ShopID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}
