package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/catalog"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/checkout"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	service "github.com/aaravmahajanofficial/pos-admin-platform/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type StaffService struct {
	mock.Mock
}

func (m *StaffService) CreateStaff(ctx context.Context, actor *models.Claims, req *models.CreateStaffRequest) (*models.Staff, error) {
	args := m.Called(ctx, actor, req)
	staff, _ := args.Get(0).(*models.Staff)
	return staff, args.Error(1)
}

func (m *StaffService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*models.LoginResponse)
	return resp, args.Error(1)
}

func (m *StaffService) GetStaffByID(ctx context.Context, id uuid.UUID) (*models.Staff, error) {
	args := m.Called(ctx, id)
	staff, _ := args.Get(0).(*models.Staff)
	return staff, args.Error(1)
}

type CatalogService struct {
	mock.Mock
}

func (m *CatalogService) Catalog(ctx context.Context, shopID uuid.UUID) (*catalog.Catalog, error) {
	args := m.Called(ctx, shopID)
	c, _ := args.Get(0).(*catalog.Catalog)
	return c, args.Error(1)
}

func (m *CatalogService) Search(ctx context.Context, shopID uuid.UUID, query *models.CatalogQuery) ([]models.Product, error) {
	args := m.Called(ctx, shopID, query)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *CatalogService) Categories(ctx context.Context, shopID uuid.UUID) ([]models.Category, error) {
	args := m.Called(ctx, shopID)
	categories, _ := args.Get(0).([]models.Category)
	return categories, args.Error(1)
}

func (m *CatalogService) Product(ctx context.Context, shopID, productID uuid.UUID) (models.Product, error) {
	args := m.Called(ctx, shopID, productID)
	product, _ := args.Get(0).(models.Product)
	return product, args.Error(1)
}

func (m *CatalogService) Invalidate(ctx context.Context, shopID uuid.UUID) error {
	return m.Called(ctx, shopID).Error(0)
}

type CustomerService struct {
	mock.Mock
}

func (m *CustomerService) CreateCustomer(ctx context.Context, shopID uuid.UUID, req *models.CreateCustomerRequest) (*models.Customer, error) {
	args := m.Called(ctx, shopID, req)
	customer, _ := args.Get(0).(*models.Customer)
	return customer, args.Error(1)
}

func (m *CustomerService) FindByContact(ctx context.Context, shopID uuid.UUID, contact string) (*models.Customer, error) {
	args := m.Called(ctx, shopID, contact)
	customer, _ := args.Get(0).(*models.Customer)
	return customer, args.Error(1)
}

func (m *CustomerService) GetCustomer(ctx context.Context, shopID, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, shopID, id)
	customer, _ := args.Get(0).(*models.Customer)
	return customer, args.Error(1)
}

type ReceiptService struct {
	mock.Mock
}

func (m *ReceiptService) SendReceipt(ctx context.Context, invoice *models.Invoice, to string) (*models.Notification, error) {
	args := m.Called(ctx, invoice, to)
	notification, _ := args.Get(0).(*models.Notification)
	return notification, args.Error(1)
}

type InvoiceService struct {
	mock.Mock
}

func (m *InvoiceService) CreateInvoice(ctx context.Context, sc service.SaleContext, sale checkout.Sale) (*models.Invoice, error) {
	args := m.Called(ctx, sc, sale)
	invoice, _ := args.Get(0).(*models.Invoice)
	return invoice, args.Error(1)
}

func (m *InvoiceService) GetInvoice(ctx context.Context, shopID, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, shopID, id)
	invoice, _ := args.Get(0).(*models.Invoice)
	return invoice, args.Error(1)
}

func (m *InvoiceService) ListInvoices(ctx context.Context, shopID uuid.UUID, page, size int) ([]*models.Invoice, int, error) {
	args := m.Called(ctx, shopID, page, size)
	invoices, _ := args.Get(0).([]*models.Invoice)
	return invoices, args.Int(1), args.Error(2)
}

func (m *InvoiceService) ResendReceipt(ctx context.Context, shopID, id uuid.UUID, to string) (*models.Notification, error) {
	args := m.Called(ctx, shopID, id, to)
	notification, _ := args.Get(0).(*models.Notification)
	return notification, args.Error(1)
}

type RegisterService struct {
	mock.Mock
}

func (m *RegisterService) view(args mock.Arguments) (*models.RegisterView, error) {
	view, _ := args.Get(0).(*models.RegisterView)
	return view, args.Error(1)
}

func (m *RegisterService) OpenRegister(ctx context.Context, claims *models.Claims, req *models.OpenRegisterRequest) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, req))
}

func (m *RegisterService) GetRegister(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id))
}

func (m *RegisterService) CloseRegister(ctx context.Context, claims *models.Claims, id uuid.UUID) error {
	return m.Called(ctx, claims, id).Error(0)
}

func (m *RegisterService) AddItem(ctx context.Context, claims *models.Claims, id uuid.UUID, req *models.AddItemRequest) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id, req))
}

func (m *RegisterService) UpdateQuantity(ctx context.Context, claims *models.Claims, id, productID uuid.UUID, quantity int) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id, productID, quantity))
}

func (m *RegisterService) RemoveItem(ctx context.Context, claims *models.Claims, id, productID uuid.UUID) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id, productID))
}

func (m *RegisterService) ApplyItemDiscount(ctx context.Context, claims *models.Claims, id, productID uuid.UUID, amount decimal.Decimal) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id, productID, amount))
}

func (m *RegisterService) ApplyCartDiscount(ctx context.Context, claims *models.Claims, id uuid.UUID, amount decimal.Decimal) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id, amount))
}

func (m *RegisterService) ClearCart(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id))
}

func (m *RegisterService) OpenCheckout(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id))
}

func (m *RegisterService) SelectMethod(ctx context.Context, claims *models.Claims, id uuid.UUID, method string) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id, method))
}

func (m *RegisterService) EnterTender(ctx context.Context, claims *models.Claims, id uuid.UUID, text string) (*models.TenderResponse, error) {
	args := m.Called(ctx, claims, id, text)
	resp, _ := args.Get(0).(*models.TenderResponse)
	return resp, args.Error(1)
}

func (m *RegisterService) AttachCustomer(ctx context.Context, claims *models.Claims, id, customerID uuid.UUID) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id, customerID))
}

func (m *RegisterService) CompleteCheckout(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.CompleteCheckoutResponse, error) {
	args := m.Called(ctx, claims, id)
	resp, _ := args.Get(0).(*models.CompleteCheckoutResponse)
	return resp, args.Error(1)
}

func (m *RegisterService) CancelCheckout(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error) {
	return m.view(m.Called(ctx, claims, id))
}

func (m *RegisterService) Shutdown() {
	m.Called()
}
