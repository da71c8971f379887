package service

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"log/slog"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/cache"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/checkout"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/metrics"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	repository "github.com/aaravmahajanofficial/pos-admin-platform/internal/repositories"
	"github.com/aaravmahajanofficial/pos-admin-platform/pkg/events"
	"github.com/google/uuid"
)

// SaleContext identifies where a sale was rung up.
type SaleContext struct {
	ShopID     uuid.UUID
	RegisterID uuid.UUID
	CashierID  uuid.UUID
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, sc SaleContext, sale checkout.Sale) (*models.Invoice, error)
	GetInvoice(ctx context.Context, shopID, id uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, shopID uuid.UUID, page, size int) ([]*models.Invoice, int, error)
	ResendReceipt(ctx context.Context, shopID, id uuid.UUID, to string) (*models.Notification, error)
}

type invoiceService struct {
	repo      repository.InvoiceRepository
	customers repository.CustomerRepository
	receipts  ReceiptService
	publisher events.Publisher
	cache     cache.Cache
	currency  string
}

func NewInvoiceService(repo repository.InvoiceRepository, customers repository.CustomerRepository, receipts ReceiptService,
	publisher events.Publisher, cache cache.Cache, currency string,
) InvoiceService {
	return &invoiceService{
		repo:      repo,
		customers: customers,
		receipts:  receipts,
		publisher: publisher,
		cache:     cache,
		currency:  currency,
	}
}

// CreateInvoice persists the sale. Publishing the event and emailing the
// receipt happen afterwards and only log on failure.
func (s *invoiceService) CreateInvoice(ctx context.Context, sc SaleContext, sale checkout.Sale) (*models.Invoice, error) {
	logger := middleware.LoggerFromContext(ctx)

	invoice := &models.Invoice{
		ID:            uuid.New(),
		ShopID:        sc.ShopID,
		RegisterID:    sc.RegisterID,
		CashierID:     sc.CashierID,
		CustomerID:    sale.CustomerID,
		Subtotal:      sale.Totals.Subtotal,
		Tax:           sale.Totals.Tax,
		Discount:      sale.Totals.Discount,
		Total:         sale.Totals.Total,
		PaymentMethod: string(sale.Method),
		Tendered:      sale.Tendered,
		Change:        sale.Change,
		Currency:      s.currency,
	}

	for _, line := range sale.Lines {
		invoice.Lines = append(invoice.Lines, models.InvoiceLine{
			ID:        uuid.New(),
			InvoiceID: invoice.ID,
			ProductID: line.ProductID,
			Name:      line.Name,
			SKU:       line.SKU,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			Discount:  line.Discount,
			LineTotal: line.Amount(),
		})
	}

	if err := s.repo.CreateInvoice(ctx, invoice); err != nil {
		metrics.CheckoutsFailed.WithLabelValues("invoice").Inc()
		logger.Error("Failed to persist invoice", slog.String("registerId", sc.RegisterID.String()), slog.Any("error", err))
		return nil, errors.DatabaseError("Failed to create invoice").WithError(err)
	}

	metrics.CheckoutsCompleted.WithLabelValues(invoice.PaymentMethod).Inc()
	metrics.SalesAmount.WithLabelValues(invoice.Currency).Add(invoice.Total.InexactFloat64())

	logger.Info("Invoice created",
		slog.String("invoiceId", invoice.ID.String()),
		slog.String("total", invoice.Total.StringFixed(2)),
		slog.String("method", invoice.PaymentMethod))

	event := models.InvoiceCreatedEvent{
		Event:         events.InvoiceCreated,
		InvoiceID:     invoice.ID,
		ShopID:        invoice.ShopID,
		Total:         invoice.Total,
		Currency:      invoice.Currency,
		PaymentMethod: invoice.PaymentMethod,
		Timestamp:     invoice.CreatedAt,
	}

	if err := s.publisher.Publish(ctx, invoice.ShopID.String(), events.InvoiceCreated, event); err != nil {
		logger.Warn("Failed to publish invoice event", slog.String("invoiceId", invoice.ID.String()), slog.Any("error", err))
	}

	s.emailReceipt(ctx, invoice)

	return invoice, nil
}

func (s *invoiceService) emailReceipt(ctx context.Context, invoice *models.Invoice) {
	if invoice.CustomerID == nil {
		return
	}

	logger := middleware.LoggerFromContext(ctx)

	customer, err := s.customers.GetCustomerByID(ctx, *invoice.CustomerID)
	if err != nil {
		logger.Warn("Failed to load customer for receipt", slog.Any("error", err))
		return
	}

	if customer.Email == "" {
		return
	}

	if _, err := s.receipts.SendReceipt(ctx, invoice, customer.Email); err != nil {
		logger.Warn("Failed to email receipt", slog.String("invoiceId", invoice.ID.String()), slog.Any("error", err))
	}
}

// GetInvoice reads through the cache; invoices never change once written.
func (s *invoiceService) GetInvoice(ctx context.Context, shopID, id uuid.UUID) (*models.Invoice, error) {
	logger := middleware.LoggerFromContext(ctx)
	key := cache.Key(cache.InvoiceKeyPrefix, id.String())

	invoice := &models.Invoice{}

	found, err := s.cache.Get(ctx, key, invoice)
	if err != nil {
		logger.Warn("Invoice cache read failed", slog.Any("error", err))
	}

	if !found {
		invoice, err = s.repo.GetInvoiceByID(ctx, id)
		if err != nil {
			if stdErrors.Is(err, sql.ErrNoRows) {
				return nil, errors.NotFoundError("Invoice not found").WithError(err)
			}
			return nil, errors.DatabaseError("Failed to fetch invoice").WithError(err)
		}

		if err := s.cache.Set(ctx, key, invoice, 0); err != nil {
			logger.Warn("Invoice cache write failed", slog.Any("error", err))
		}
	}

	if invoice.ShopID != shopID {
		return nil, errors.NotFoundError("Invoice not found")
	}

	return invoice, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, shopID uuid.UUID, page, size int) ([]*models.Invoice, int, error) {
	invoices, total, err := s.repo.ListInvoicesByShop(ctx, shopID, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to fetch invoices").WithError(err)
	}

	return invoices, total, nil
}

func (s *invoiceService) ResendReceipt(ctx context.Context, shopID, id uuid.UUID, to string) (*models.Notification, error) {
	invoice, err := s.GetInvoice(ctx, shopID, id)
	if err != nil {
		return nil, err
	}

	return s.receipts.SendReceipt(ctx, invoice, to)
}
