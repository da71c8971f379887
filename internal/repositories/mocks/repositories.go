package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *ProductRepository) ListProductsByShop(ctx context.Context, shopID uuid.UUID) ([]models.Product, error) {
	args := m.Called(ctx, shopID)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *ProductRepository) ListCategoriesByShop(ctx context.Context, shopID uuid.UUID) ([]models.Category, error) {
	args := m.Called(ctx, shopID)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

type StaffRepository struct {
	mock.Mock
}

func (m *StaffRepository) CreateStaff(ctx context.Context, staff *models.Staff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *StaffRepository) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	args := m.Called(ctx, email)
	staff, _ := args.Get(0).(*models.Staff)
	return staff, args.Error(1)
}

func (m *StaffRepository) GetStaffByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	args := m.Called(ctx, id)
	staff, _ := args.Get(0).(*models.Staff)
	return staff, args.Error(1)
}

type CustomerRepository struct {
	mock.Mock
}

func (m *CustomerRepository) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *CustomerRepository) GetCustomerByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, id)
	customer, _ := args.Get(0).(*models.Customer)
	return customer, args.Error(1)
}

func (m *CustomerRepository) FindCustomerByContact(ctx context.Context, shopID uuid.UUID, contact string) (*models.Customer, error) {
	args := m.Called(ctx, shopID, contact)
	customer, _ := args.Get(0).(*models.Customer)
	return customer, args.Error(1)
}

type InvoiceRepository struct {
	mock.Mock
}

func (m *InvoiceRepository) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *InvoiceRepository) GetInvoiceByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	invoice, _ := args.Get(0).(*models.Invoice)
	return invoice, args.Error(1)
}

func (m *InvoiceRepository) ListInvoicesByShop(ctx context.Context, shopID uuid.UUID, page, size int) ([]*models.Invoice, int, error) {
	args := m.Called(ctx, shopID, page, size)
	invoices, _ := args.Get(0).([]*models.Invoice)
	return invoices, args.Int(1), args.Error(2)
}

type NotificationRepository struct {
	mock.Mock
}

func (m *NotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return m.Called(ctx, notification).Error(0)
}

func (m *NotificationRepository) UpdateNotificationStatus(ctx context.Context, id uuid.UUID, status models.NotificationStatus, errorMsg string) error {
	return m.Called(ctx, id, status, errorMsg).Error(0)
}

type RateLimitRepository struct {
	mock.Mock
}

func (m *RateLimitRepository) CheckLoginRateLimit(ctx context.Context, email string) (bool, int, int, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}

func (m *RateLimitRepository) ResetLoginAttempts(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
