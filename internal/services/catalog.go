package service

import (
	"context"
	"log/slog"
	"slices"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/cache"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/catalog"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	repository "github.com/aaravmahajanofficial/pos-admin-platform/internal/repositories"
	"github.com/google/uuid"
)

type CatalogService interface {
	Catalog(ctx context.Context, shopID uuid.UUID) (*catalog.Catalog, error)
	Search(ctx context.Context, shopID uuid.UUID, query *models.CatalogQuery) ([]models.Product, error)
	Categories(ctx context.Context, shopID uuid.UUID) ([]models.Category, error)
	Product(ctx context.Context, shopID, productID uuid.UUID) (models.Product, error)
	Invalidate(ctx context.Context, shopID uuid.UUID) error
}

type catalogService struct {
	repo  repository.ProductRepository
	cache cache.Cache
}

func NewCatalogService(repo repository.ProductRepository, cache cache.Cache) CatalogService {
	return &catalogService{repo: repo, cache: cache}
}

// Catalog returns the shop's catalog, from cache when possible. Cache
// failures fall through to the database.
func (s *catalogService) Catalog(ctx context.Context, shopID uuid.UUID) (*catalog.Catalog, error) {
	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.CatalogKeyPrefix, shopID.String())

	var snapshot models.CatalogSnapshot

	found, err := s.cache.Get(ctx, key, &snapshot)
	if err != nil {
		logger.Warn("Catalog cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	if found {
		return catalog.New(snapshot.Products, snapshot.Categories), nil
	}

	products, err := s.repo.ListProductsByShop(ctx, shopID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load products").WithError(err)
	}

	categories, err := s.repo.ListCategoriesByShop(ctx, shopID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to load categories").WithError(err)
	}

	snapshot = models.CatalogSnapshot{ShopID: shopID, Products: products, Categories: categories}

	if err := s.cache.Set(ctx, key, snapshot, 0); err != nil {
		logger.Warn("Catalog cache write failed", slog.String("key", key), slog.Any("error", err))
	}

	return catalog.New(products, categories), nil
}

func (s *catalogService) Search(ctx context.Context, shopID uuid.UUID, query *models.CatalogQuery) ([]models.Product, error) {
	c, err := s.Catalog(ctx, shopID)
	if err != nil {
		return nil, err
	}

	products := slices.Collect(c.Search(catalog.Filter{Query: query.Query, Category: query.Category}))
	if products == nil {
		products = []models.Product{}
	}

	return products, nil
}

func (s *catalogService) Categories(ctx context.Context, shopID uuid.UUID) ([]models.Category, error) {
	c, err := s.Catalog(ctx, shopID)
	if err != nil {
		return nil, err
	}

	return c.Categories(), nil
}

func (s *catalogService) Product(ctx context.Context, shopID, productID uuid.UUID) (models.Product, error) {
	c, err := s.Catalog(ctx, shopID)
	if err != nil {
		return models.Product{}, err
	}

	product, ok := c.Product(productID)
	if !ok {
		return models.Product{}, errors.NotFoundError("Product not found")
	}

	return product, nil
}

func (s *catalogService) Invalidate(ctx context.Context, shopID uuid.UUID) error {
	if err := s.cache.Delete(ctx, cache.Key(cache.CatalogKeyPrefix, shopID.String())); err != nil {
		return errors.ThirdPartyError("Failed to invalidate catalog cache").WithError(err)
	}

	return nil
}
