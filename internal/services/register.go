package service

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/cart"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/checkout"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/errors"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/metrics"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/models"
	"github.com/aaravmahajanofficial/pos-admin-platform/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RegisterService interface {
	OpenRegister(ctx context.Context, claims *models.Claims, req *models.OpenRegisterRequest) (*models.RegisterView, error)
	GetRegister(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error)
	CloseRegister(ctx context.Context, claims *models.Claims, id uuid.UUID) error

	AddItem(ctx context.Context, claims *models.Claims, id uuid.UUID, req *models.AddItemRequest) (*models.RegisterView, error)
	UpdateQuantity(ctx context.Context, claims *models.Claims, id, productID uuid.UUID, quantity int) (*models.RegisterView, error)
	RemoveItem(ctx context.Context, claims *models.Claims, id, productID uuid.UUID) (*models.RegisterView, error)
	ApplyItemDiscount(ctx context.Context, claims *models.Claims, id, productID uuid.UUID, amount decimal.Decimal) (*models.RegisterView, error)
	ApplyCartDiscount(ctx context.Context, claims *models.Claims, id uuid.UUID, amount decimal.Decimal) (*models.RegisterView, error)
	ClearCart(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error)

	OpenCheckout(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error)
	SelectMethod(ctx context.Context, claims *models.Claims, id uuid.UUID, method string) (*models.RegisterView, error)
	EnterTender(ctx context.Context, claims *models.Claims, id uuid.UUID, text string) (*models.TenderResponse, error)
	AttachCustomer(ctx context.Context, claims *models.Claims, id, customerID uuid.UUID) (*models.RegisterView, error)
	CompleteCheckout(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.CompleteCheckoutResponse, error)
	CancelCheckout(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error)

	// Shutdown closes every open register.
	Shutdown()
}

type RegisterConfig struct {
	TaxRate           decimal.Decimal
	CompletionDisplay time.Duration
	// Scheduler overrides the completion display timer. Nil means time.AfterFunc.
	Scheduler checkout.Scheduler
}

// register is one terminal session. mu serializes requests against it.
type register struct {
	mu          sync.Mutex
	id          uuid.UUID
	shopID      uuid.UUID
	cashierID   uuid.UUID
	openedAt    time.Time
	cart        *cart.Cart
	machine     *checkout.Machine
	lastInvoice *models.Invoice
	closed      bool
}

type registerService struct {
	catalog   CatalogService
	customers CustomerService
	invoices  InvoiceService
	cfg       RegisterConfig

	mu        sync.RWMutex
	registers map[uuid.UUID]*register
}

func NewRegisterService(catalog CatalogService, customers CustomerService, invoices InvoiceService, cfg RegisterConfig) RegisterService {
	if cfg.CompletionDisplay <= 0 {
		cfg.CompletionDisplay = checkout.DefaultCompletionDisplay
	}

	return &registerService{
		catalog:   catalog,
		customers: customers,
		invoices:  invoices,
		cfg:       cfg,
		registers: make(map[uuid.UUID]*register),
	}
}

// OpenRegister starts a register for the caller's shop. Super admins have no
// shop of their own and must name one.
func (s *registerService) OpenRegister(ctx context.Context, claims *models.Claims, req *models.OpenRegisterRequest) (*models.RegisterView, error) {
	var shopID uuid.UUID

	switch {
	case claims.Role == models.RoleSuperAdmin:
		if req.ShopID == nil {
			return nil, errors.AddValidationError("shop_id", "required for super admins")
		}
		shopID = *req.ShopID
	case claims.ShopID == nil:
		return nil, errors.ForbiddenError("Staff member is not assigned to a shop")
	default:
		if req.ShopID != nil && *req.ShopID != *claims.ShopID {
			return nil, errors.ForbiddenError("Cannot open a register for another shop")
		}
		shopID = *claims.ShopID
	}

	reg := &register{
		id:        uuid.New(),
		shopID:    shopID,
		cashierID: claims.UserID,
		openedAt:  time.Now().UTC(),
		cart:      cart.New(cart.WithTaxRate(s.cfg.TaxRate)),
	}

	opts := []checkout.Option{
		checkout.WithCompletionDisplay(s.cfg.CompletionDisplay),
		checkout.WithLogger(slog.Default().With(slog.String("registerId", reg.id.String()))),
	}
	if s.cfg.Scheduler != nil {
		opts = append(opts, checkout.WithScheduler(s.cfg.Scheduler))
	}

	reg.machine = checkout.New(reg.cart, s.sink(reg), opts...)

	s.mu.Lock()
	s.registers[reg.id] = reg
	s.mu.Unlock()

	metrics.RegistersOpen.Inc()

	middleware.LoggerFromContext(ctx).Info("Register opened",
		slog.String("registerId", reg.id.String()),
		slog.String("shopId", shopID.String()),
		slog.String("cashierId", claims.UserID.String()))

	return reg.view(), nil
}

// sink persists the sale through the invoice service and keeps the stored
// invoice on the register. It runs inside Complete while reg.mu is held.
func (s *registerService) sink(reg *register) checkout.InvoiceSink {
	return checkout.InvoiceSinkFunc(func(ctx context.Context, sale checkout.Sale) (checkout.Receipt, error) {
		sc := SaleContext{ShopID: reg.shopID, RegisterID: reg.id, CashierID: reg.cashierID}

		invoice, err := s.invoices.CreateInvoice(ctx, sc, sale)
		if err != nil {
			return checkout.Receipt{}, err
		}

		reg.lastInvoice = invoice

		return checkout.Receipt{
			InvoiceID:   invoice.ID,
			Total:       invoice.Total,
			Change:      invoice.Change,
			Method:      sale.Method,
			CompletedAt: invoice.CreatedAt,
		}, nil
	})
}

func (s *registerService) GetRegister(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error) {
	reg, err := s.acquire(claims, id)
	if err != nil {
		return nil, err
	}
	defer reg.mu.Unlock()

	return reg.view(), nil
}

// CloseRegister discards the register together with any unfinished sale.
func (s *registerService) CloseRegister(ctx context.Context, claims *models.Claims, id uuid.UUID) error {
	reg, err := s.acquire(claims, id)
	if err != nil {
		return err
	}
	defer reg.mu.Unlock()

	s.mu.Lock()
	delete(s.registers, id)
	s.mu.Unlock()

	reg.closed = true
	reg.machine.Close()
	metrics.RegistersOpen.Dec()

	middleware.LoggerFromContext(ctx).Info("Register closed",
		slog.String("registerId", id.String()),
		slog.Int("linesDiscarded", reg.cart.Len()))

	return nil
}

func (s *registerService) AddItem(ctx context.Context, claims *models.Claims, id uuid.UUID, req *models.AddItemRequest) (*models.RegisterView, error) {
	return s.editCart(ctx, claims, id, func(reg *register) error {
		product, err := s.catalog.Product(ctx, reg.shopID, req.ProductID)
		if err != nil {
			return err
		}

		if !reg.cart.AddItem(product, req.Quantity) {
			return errors.BadRequestError("Product cannot be added to the cart")
		}

		return nil
	})
}

func (s *registerService) UpdateQuantity(ctx context.Context, claims *models.Claims, id, productID uuid.UUID, quantity int) (*models.RegisterView, error) {
	if quantity < 1 {
		return nil, errors.AddValidationError("quantity", "must be at least 1")
	}

	return s.editCart(ctx, claims, id, func(reg *register) error {
		if !reg.cart.UpdateQuantity(productID, quantity) {
			return errors.NotFoundError("Item not in cart")
		}
		return nil
	})
}

// RemoveItem succeeds whether or not the product is in the cart.
func (s *registerService) RemoveItem(ctx context.Context, claims *models.Claims, id, productID uuid.UUID) (*models.RegisterView, error) {
	return s.editCart(ctx, claims, id, func(reg *register) error {
		reg.cart.RemoveItem(productID)
		return nil
	})
}

func (s *registerService) ApplyItemDiscount(ctx context.Context, claims *models.Claims, id, productID uuid.UUID, amount decimal.Decimal) (*models.RegisterView, error) {
	if amount.IsNegative() {
		return nil, errors.AddValidationError("amount", "must not be negative")
	}

	return s.editCart(ctx, claims, id, func(reg *register) error {
		if !reg.cart.ApplyItemDiscount(productID, amount) {
			return errors.NotFoundError("Item not in cart")
		}
		return nil
	})
}

func (s *registerService) ApplyCartDiscount(ctx context.Context, claims *models.Claims, id uuid.UUID, amount decimal.Decimal) (*models.RegisterView, error) {
	if amount.IsNegative() {
		return nil, errors.AddValidationError("amount", "must not be negative")
	}

	return s.editCart(ctx, claims, id, func(reg *register) error {
		reg.cart.ApplyCartDiscount(amount)
		return nil
	})
}

func (s *registerService) ClearCart(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error) {
	return s.editCart(ctx, claims, id, func(reg *register) error {
		reg.cart.Clear()
		return nil
	})
}

func (s *registerService) OpenCheckout(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error) {
	return s.withRegister(claims, id, func(reg *register) error {
		if reg.machine.State() == checkout.Completed {
			if err := reg.machine.Cancel(); err != nil {
				return checkoutError(err)
			}
		}

		if err := reg.machine.Open(); err != nil {
			return checkoutError(err)
		}

		middleware.LoggerFromContext(ctx).Debug("Checkout opened", slog.String("registerId", id.String()))

		return nil
	})
}

func (s *registerService) SelectMethod(ctx context.Context, claims *models.Claims, id uuid.UUID, method string) (*models.RegisterView, error) {
	m, err := checkout.ParseMethod(method)
	if err != nil {
		return nil, checkoutError(err)
	}

	return s.withRegister(claims, id, func(reg *register) error {
		if err := reg.machine.SelectMethod(m); err != nil {
			return checkoutError(err)
		}
		return nil
	})
}

// EnterTender reports a malformed amount as not accepted rather than failing;
// the register keeps the previous tender.
func (s *registerService) EnterTender(ctx context.Context, claims *models.Claims, id uuid.UUID, text string) (*models.TenderResponse, error) {
	var accepted bool

	view, err := s.withRegister(claims, id, func(reg *register) error {
		ok, err := reg.machine.EnterTender(text)
		if err != nil {
			return checkoutError(err)
		}

		accepted = ok

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.TenderResponse{Accepted: accepted, Register: view}, nil
}

func (s *registerService) AttachCustomer(ctx context.Context, claims *models.Claims, id, customerID uuid.UUID) (*models.RegisterView, error) {
	return s.withRegister(claims, id, func(reg *register) error {
		customer, err := s.customers.GetCustomer(ctx, reg.shopID, customerID)
		if err != nil {
			return err
		}

		if err := reg.machine.AttachCustomer(&customer.ID); err != nil {
			return checkoutError(err)
		}

		return nil
	})
}

func (s *registerService) CompleteCheckout(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.CompleteCheckoutResponse, error) {
	var invoice *models.Invoice

	view, err := s.withRegister(claims, id, func(reg *register) error {
		if _, err := reg.machine.Complete(ctx); err != nil {
			if stdErrors.Is(err, checkout.ErrCompletionBlocked) {
				metrics.CheckoutsFailed.WithLabelValues("blocked").Inc()
			}
			return checkoutError(err)
		}

		invoice = reg.lastInvoice

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &models.CompleteCheckoutResponse{Invoice: invoice, Register: view}, nil
}

func (s *registerService) CancelCheckout(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.RegisterView, error) {
	return s.withRegister(claims, id, func(reg *register) error {
		if err := reg.machine.Cancel(); err != nil {
			return checkoutError(err)
		}
		return nil
	})
}

func (s *registerService) Shutdown() {
	s.mu.Lock()
	open := s.registers
	s.registers = make(map[uuid.UUID]*register)
	s.mu.Unlock()

	// reg.mu is taken after s.mu is released, the same order CloseRegister uses
	for _, reg := range open {
		reg.mu.Lock()
		if !reg.closed {
			reg.closed = true
			reg.machine.Close()
			metrics.RegistersOpen.Dec()
		}
		reg.mu.Unlock()
	}
}

// lookup hides registers of other shops behind the same not found error.
func (s *registerService) lookup(claims *models.Claims, id uuid.UUID) (*register, error) {
	s.mu.RLock()
	reg, ok := s.registers[id]
	s.mu.RUnlock()

	if !ok || !claims.CanAccessShop(reg.shopID) {
		return nil, errors.NotFoundError("Register not found")
	}

	return reg, nil
}

// acquire returns the register locked. A register closed while the caller
// waited for its lock is reported as not found.
func (s *registerService) acquire(claims *models.Claims, id uuid.UUID) (*register, error) {
	reg, err := s.lookup(claims, id)
	if err != nil {
		return nil, err
	}

	reg.mu.Lock()
	if reg.closed {
		reg.mu.Unlock()
		return nil, errors.NotFoundError("Register not found")
	}

	return reg, nil
}

func (s *registerService) withRegister(claims *models.Claims, id uuid.UUID, fn func(reg *register) error) (*models.RegisterView, error) {
	reg, err := s.acquire(claims, id)
	if err != nil {
		return nil, err
	}
	defer reg.mu.Unlock()

	if err := fn(reg); err != nil {
		return nil, err
	}

	return reg.view(), nil
}

// editCart refuses cart changes while a payment is being taken. A completed
// sale still on display is finished first so the edit starts a new sale.
func (s *registerService) editCart(ctx context.Context, claims *models.Claims, id uuid.UUID, fn func(reg *register) error) (*models.RegisterView, error) {
	return s.withRegister(claims, id, func(reg *register) error {
		switch reg.machine.State() {
		case checkout.Idle:
		case checkout.Completed:
			if err := reg.machine.Cancel(); err != nil {
				return checkoutError(err)
			}
		default:
			middleware.LoggerFromContext(ctx).Warn("Cart edit rejected during checkout", slog.String("registerId", id.String()))
			return errors.ConflictError("Checkout is in progress; cancel it before editing the cart")
		}

		return fn(reg)
	})
}

func checkoutError(err error) error {
	if appErr, ok := errors.IsAppError(err); ok {
		return appErr
	}

	switch {
	case stdErrors.Is(err, checkout.ErrEmptyCart):
		return errors.BadRequestError("Cart is empty").WithError(err)
	case stdErrors.Is(err, checkout.ErrCompletionBlocked):
		return errors.CheckoutBlockedError("Tendered amount is below the total").WithError(err)
	case stdErrors.Is(err, checkout.ErrUnknownMethod):
		return errors.AddValidationError("method", "must be one of cash, card, other").WithError(err)
	case stdErrors.Is(err, checkout.ErrInvalidTransition):
		return errors.ConflictError("Not allowed in the current checkout state").WithDetail(err.Error()).WithError(err)
	default:
		return errors.InternalError("Checkout failed").WithError(err)
	}
}

func (r *register) view() *models.RegisterView {
	lines := r.cart.Lines()
	totals := r.cart.Totals()
	st := r.machine.Status()

	v := &models.RegisterView{
		ID:        r.id,
		ShopID:    r.shopID,
		CashierID: r.cashierID,
		Lines:     make([]models.CartLineView, 0, len(lines)),
		Totals: models.TotalsView{
			Subtotal: pricing.Format(totals.Subtotal),
			Tax:      pricing.Format(totals.Tax),
			Discount: pricing.Format(totals.Discount),
			Total:    pricing.Format(totals.Total),
		},
		Checkout: models.CheckoutView{
			State:       st.State.String(),
			CanComplete: st.CanComplete,
			CustomerID:  st.CustomerID,
		},
		OpenedAt: r.openedAt,
	}

	for _, l := range lines {
		v.Lines = append(v.Lines, models.CartLineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			SKU:       l.SKU,
			UnitPrice: pricing.Format(l.UnitPrice),
			Quantity:  l.Quantity,
			Discount:  pricing.Format(l.Discount),
			Amount:    pricing.Format(l.Amount()),
		})
	}

	if st.State != checkout.Idle {
		v.Checkout.Method = string(st.Method)
		v.Checkout.Tender = st.Tender
		v.Checkout.Change = st.DisplayChange
	}

	if st.LastReceipt != nil {
		invoiceID := st.LastReceipt.InvoiceID
		v.Checkout.LastInvoiceID = &invoiceID
	}

	return v
}
