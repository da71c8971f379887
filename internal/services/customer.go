package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"strings"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	repository "github.com/aaravmahajanofficial/pos-admin-platform/internal/repositories"
	"github.com/google/uuid"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, shopID uuid.UUID, req *models.CreateCustomerRequest) (*models.Customer, error)
	FindByContact(ctx context.Context, shopID uuid.UUID, contact string) (*models.Customer, error)
	GetCustomer(ctx context.Context, shopID, id uuid.UUID) (*models.Customer, error)
}

type customerService struct {
	repo repository.CustomerRepository
}

func NewCustomerService(repo repository.CustomerRepository) CustomerService {
	return &customerService{repo: repo}
}

// CreateCustomer rejects a second customer with the same contact in a shop.
func (s *customerService) CreateCustomer(ctx context.Context, shopID uuid.UUID, req *models.CreateCustomerRequest) (*models.Customer, error) {
	contact := strings.TrimSpace(req.Contact)

	existing, err := s.repo.FindCustomerByContact(ctx, shopID, contact)
	if err != nil && !stdErrors.Is(err, sql.ErrNoRows) {
		return nil, errors.DatabaseError("Failed to check contact").WithError(err)
	}

	if existing != nil {
		return nil, errors.DuplicateEntryError("A customer with this contact already exists")
	}

	customer := &models.Customer{
		ShopID:  shopID,
		Name:    strings.TrimSpace(req.Name),
		Contact: contact,
		Email:   req.Email,
		Address: req.Address,
	}

	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return nil, errors.DatabaseError("Failed to create customer").WithError(err)
	}

	return customer, nil
}

func (s *customerService) FindByContact(ctx context.Context, shopID uuid.UUID, contact string) (*models.Customer, error) {
	customer, err := s.repo.FindCustomerByContact(ctx, shopID, strings.TrimSpace(contact))
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Customer not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to find customer").WithError(err)
	}

	return customer, nil
}

// GetCustomer only returns customers of the given shop.
func (s *customerService) GetCustomer(ctx context.Context, shopID, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.repo.GetCustomerByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NotFoundError("Customer not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to fetch customer").WithError(err)
	}

	if customer.ShopID != shopID {
		return nil, errors.NotFoundError("Customer not found")
	}

	return customer, nil
}
