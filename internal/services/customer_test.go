package service_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	appErrors "github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/pos-admin-platform/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCustomerService_CreateCustomer(t *testing.T) {
	shopID := uuid.New()

	t.Run("Success Trims Input", func(t *testing.T) {
		repo := new(mocks.CustomerRepository)
		svc := service.NewCustomerService(repo)
		ctx := context.Background()
		req := &models.CreateCustomerRequest{Name: "  Ada Lovelace ", Contact: " 555-0100 ", Email: "ada@example.com"}

		repo.On("FindCustomerByContact", ctx, shopID, "555-0100").Return(nil, sql.ErrNoRows).Once()
		repo.On("CreateCustomer", ctx, mock.MatchedBy(func(c *models.Customer) bool {
			return c.ShopID == shopID && c.Name == "Ada Lovelace" && c.Contact == "555-0100"
		})).Return(nil).Once()

		customer, err := svc.CreateCustomer(ctx, shopID, req)

		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", customer.Email)
		repo.AssertExpectations(t)
	})

	t.Run("Duplicate Contact", func(t *testing.T) {
		repo := new(mocks.CustomerRepository)
		svc := service.NewCustomerService(repo)
		ctx := context.Background()

		repo.On("FindCustomerByContact", ctx, shopID, "555-0100").Return(&models.Customer{ID: uuid.New()}, nil).Once()

		_, err := svc.CreateCustomer(ctx, shopID, &models.CreateCustomerRequest{Name: "Ada", Contact: "555-0100"})

		assertAppError(t, err, appErrors.ErrCodeDuplicateEntry)
		repo.AssertNotCalled(t, "CreateCustomer", mock.Anything, mock.Anything)
	})

	t.Run("Insert Fails", func(t *testing.T) {
		repo := new(mocks.CustomerRepository)
		svc := service.NewCustomerService(repo)
		ctx := context.Background()

		repo.On("FindCustomerByContact", ctx, shopID, "555-0100").Return(nil, sql.ErrNoRows).Once()
		repo.On("CreateCustomer", ctx, mock.Anything).Return(errors.New("constraint")).Once()

		_, err := svc.CreateCustomer(ctx, shopID, &models.CreateCustomerRequest{Name: "Ada", Contact: "555-0100"})

		assertAppError(t, err, appErrors.ErrCodeDatabaseError)
	})
}

func TestCustomerService_FindByContact(t *testing.T) {
	shopID := uuid.New()

	tests := []struct {
		name     string
		customer *models.Customer
		repoErr  error
		wantCode string
	}{
		{name: "Found", customer: &models.Customer{ID: uuid.New(), ShopID: shopID, Contact: "555-0100"}},
		{name: "Not Found", repoErr: sql.ErrNoRows, wantCode: appErrors.ErrCodeNotFound},
		{name: "Database Error", repoErr: errors.New("timeout"), wantCode: appErrors.ErrCodeDatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.CustomerRepository)
			svc := service.NewCustomerService(repo)
			ctx := context.Background()

			repo.On("FindCustomerByContact", ctx, shopID, "555-0100").Return(tt.customer, tt.repoErr).Once()

			got, err := svc.FindByContact(ctx, shopID, "555-0100 ")

			if tt.wantCode != "" {
				assertAppError(t, err, tt.wantCode)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.customer.ID, got.ID)
		})
	}
}

func TestCustomerService_GetCustomer(t *testing.T) {
	shopID := uuid.New()
	id := uuid.New()

	t.Run("Same Shop", func(t *testing.T) {
		repo := new(mocks.CustomerRepository)
		svc := service.NewCustomerService(repo)

		repo.On("GetCustomerByID", mock.Anything, id).Return(&models.Customer{ID: id, ShopID: shopID}, nil).Once()

		got, err := svc.GetCustomer(context.Background(), shopID, id)

		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	})

	t.Run("Other Shop Is Hidden", func(t *testing.T) {
		repo := new(mocks.CustomerRepository)
		svc := service.NewCustomerService(repo)

		repo.On("GetCustomerByID", mock.Anything, id).Return(&models.Customer{ID: id, ShopID: uuid.New()}, nil).Once()

		_, err := svc.GetCustomer(context.Background(), shopID, id)

		assertAppError(t, err, appErrors.ErrCodeNotFound)
	})

	t.Run("Missing", func(t *testing.T) {
		repo := new(mocks.CustomerRepository)
		svc := service.NewCustomerService(repo)

		repo.On("GetCustomerByID", mock.Anything, id).Return(nil, sql.ErrNoRows).Once()

		_, err := svc.GetCustomer(context.Background(), shopID, id)

		assertAppError(t, err, appErrors.ErrCodeNotFound)
	})
}
